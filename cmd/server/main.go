package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ichi0g0y/spin-the-wheel/internal/config"
	"github.com/ichi0g0y/spin-the-wheel/internal/effects"
	"github.com/ichi0g0y/spin-the-wheel/internal/env"
	"github.com/ichi0g0y/spin-the-wheel/internal/localdb"
	"github.com/ichi0g0y/spin-the-wheel/internal/scheduler"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/telegram"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"github.com/ichi0g0y/spin-the-wheel/internal/version"
	"github.com/ichi0g0y/spin-the-wheel/internal/webserver"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run starts the bot and returns the process exit code. Deferred cleanup
// always runs before main exits.
func run(args []string) int {
	if err := env.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
	}

	opts, err := parseOptions(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}
	if opts.version {
		fmt.Println(version.String())
		return 0
	}

	setupLogging(opts)
	defer logger.Sync()

	cfg, err := config.Load(opts.cfgFile, config.Overrides{
		BotToken: env.Value.BotToken,
		SendDMs:  env.Value.SendDMs,
	})
	if err != nil {
		logger.Error("Failed to load configuration", zap.String("path", opts.cfgFile), zap.Error(err))
		return config.ExitCode(err)
	}

	if _, err := localdb.SetupDB(env.Value.DBPath); err != nil {
		logger.Error("Failed to setup database", zap.Error(err))
		return 1
	}
	defer localdb.Close()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", zap.Error(err))
		return 1
	}
	api.Debug = opts.debug
	logger.Info("Bot authorized", zap.String("account", api.Self.UserName))

	queue := effects.NewQueue(env.Value.EffectQueueSize, effects.DefaultTimeout)
	queue.Start()
	defer queue.Stop()

	sched := scheduler.NewTimerScheduler(env.Value.SchedulerLimit)
	defer sched.Close()
	effector := effects.NewDispatcher(queue, telegram.NewEffector(api))

	manager := wheel.New(wheel.Options{
		Config:      *cfg,
		Settings:    types.NewSettings(cfg.CommandPrefix, cfg.SendDMs),
		Scheduler:   sched,
		Effector:    effector,
		Broadcaster: webserver.WSBroadcaster{},
		Recorder:    effects.NewAsyncRecorder(queue, localdb.HistoryRecorder{}),
	})

	webserver.SetManager(manager)
	if err := webserver.StartWebServer(env.Value.ServerPort); err != nil {
		logger.Error("Failed to start web server", zap.Error(err))
		return 1
	}
	defer webserver.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	bot := telegram.NewBot(api, manager, effector, api.Self.UserName)
	logger.Info("Spin the wheel started",
		zap.Bool("spin_enabled", manager.SpinEnabled()),
		zap.Bool("button_enabled", manager.ButtonEnabled()),
		zap.Int("prizes", len(manager.Prizes())),
		zap.Int("port", env.Value.ServerPort))

	bot.Run(ctx, updates)

	logger.Info("Shutting down...")
	return 0
}
