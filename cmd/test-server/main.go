package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ichi0g0y/spin-the-wheel/internal/config"
	"github.com/ichi0g0y/spin-the-wheel/internal/effects"
	"github.com/ichi0g0y/spin-the-wheel/internal/env"
	"github.com/ichi0g0y/spin-the-wheel/internal/localdb"
	"github.com/ichi0g0y/spin-the-wheel/internal/scheduler"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"github.com/ichi0g0y/spin-the-wheel/internal/webserver"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
	"go.uber.org/zap"
)

const localChannel = int64(1)

func main() {
	if err := env.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
	}

	cfgFile := flag.String("c", env.Value.CfgFile, "The configuration YAML file")
	debug := flag.Bool("d", true, "Turns debug level logging on")
	flag.Parse()

	logger.Init(*debug)
	defer logger.Sync()

	logger.Info("Starting test server...")

	token := env.Value.BotToken
	if token == "" {
		token = "local"
	}
	cfg, err := config.Load(*cfgFile, config.Overrides{BotToken: token, SendDMs: env.Value.SendDMs})
	if err != nil {
		logger.Error("Failed to load configuration", zap.String("path", *cfgFile), zap.Error(err))
		logger.Sync()
		os.Exit(config.ExitCode(err))
	}

	if _, err := localdb.SetupDB(env.Value.DBPath); err != nil {
		logger.Fatal("Failed to setup database", zap.Error(err))
	}
	defer localdb.Close()

	queue := effects.NewQueue(env.Value.EffectQueueSize, effects.DefaultTimeout)
	queue.Start()
	sched := scheduler.NewTimerScheduler(env.Value.SchedulerLimit)

	manager := wheel.New(wheel.Options{
		Config:      *cfg,
		Settings:    types.NewSettings(cfg.CommandPrefix, cfg.SendDMs),
		Scheduler:   sched,
		Effector:    effects.NewDispatcher(queue, effects.LogEffector{}),
		Broadcaster: webserver.WSBroadcaster{},
		Recorder:    effects.NewAsyncRecorder(queue, localdb.HistoryRecorder{}),
	})

	webserver.SetManager(manager)
	if err := webserver.StartWebServer(env.Value.ServerPort); err != nil {
		logger.Fatal("Failed to start web server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Test server started on port %d\n", env.Value.ServerPort)
	fmt.Println("Commands: spin <id> <name> | show <id> | press <id> <name> | grant <id> <prize> | prizes | quit")

	lines := make(chan string)
	go readLines(os.Stdin, lines)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if !runLine(ctx, manager, line) {
				break loop
			}
		}
	}

	fmt.Println("\nShutting down...")
	webserver.Shutdown()
	sched.Close()
	queue.Stop()
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

// runLine executes one simulator command. It returns false on quit.
func runLine(ctx context.Context, m *wheel.Manager, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit", "exit":
		return false
	case "prizes":
		fmt.Println(m.PrizeList())
	case "spin", "show", "press", "grant":
		if len(fields) < 2 {
			fmt.Println("missing user id")
			return true
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Printf("invalid user id %q\n", fields[1])
			return true
		}
		name := fmt.Sprintf("user%d", id)
		if len(fields) > 2 && fields[0] != "grant" {
			name = fields[2]
		}
		t := types.Target{UserID: id, Username: name, Mention: "@" + name, GuildID: localChannel, ChannelID: localChannel}

		switch fields[0] {
		case "spin":
			out := m.Spin(ctx, t)
			fmt.Printf("spin: %s (count %d)\n", out.Status, out.SpinCount)
		case "show":
			fmt.Printf("button activated: %v\n", m.ShowButton(ctx, t))
		case "press":
			fmt.Printf("button pressed: %v\n", m.PressButton(ctx, t))
		case "grant":
			if len(fields) < 3 {
				fmt.Println("missing prize name")
				return true
			}
			out := m.GrantPrize(ctx, t, strings.Join(fields[2:], " "))
			fmt.Printf("grant: %s\n", out.Status)
		}
	default:
		fmt.Printf("unknown command %q\n", fields[0])
	}
	return true
}
