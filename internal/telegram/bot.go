// Package telegram connects the wheel to a Telegram group chat.
package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
	"go.uber.org/zap"
)

// Bot turns chat commands into wheel operations.
type Bot struct {
	api      Sender
	manager  *wheel.Manager
	effector wheel.Effector
	username string
}

// NewBot wires a bot. Replies go through effector so they stay ordered with
// the messages the wheel sends.
func NewBot(api Sender, manager *wheel.Manager, effector wheel.Effector, username string) *Bot {
	return &Bot{
		api:      api,
		manager:  manager,
		effector: effector,
		username: username,
	}
}

// Run handles updates until ctx is done or the channel closes. Each update
// runs on its own goroutine.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes one update. Non-command messages are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	name, args, ok := parseCommand(msg.Text, b.manager.Settings().Prefix(), b.username)
	if !ok {
		return
	}

	c := &commandContext{
		msg:    msg,
		target: targetFor(msg.From, msg.Chat),
		args:   args,
	}
	logger.Debug("Command detected",
		zap.String("user", c.target.Username),
		zap.Int64("chat_id", c.target.ChannelID),
		zap.String("text", msg.Text))

	cmd := findCommand(name)
	if cmd == nil {
		b.reply(ctx, c, fmt.Sprintf("Unknown command %s", msg.Text))
		logger.Debug("Invalid command", zap.String("user", c.target.Username), zap.String("text", msg.Text))
		return
	}

	if reason := b.unmet(cmd, c); reason != "" {
		logger.Warn("Failed to execute command",
			zap.String("command", cmd.name),
			zap.String("user", c.target.Username),
			zap.String("reason", reason))
		b.reply(ctx, c, reason)
		return
	}

	cmd.run(b, ctx, c)
	logger.Info(fmt.Sprintf("%s performed command %s in %d", c.target.Username, cmd.name, c.target.ChannelID))
}

// isAdmin asks the chat once per command whether the author is an
// administrator or the creator.
func (b *Bot) isAdmin(c *commandContext) bool {
	if c.adminChecked {
		return c.admin
	}
	c.adminChecked = true

	if c.msg.Chat == nil {
		return false
	}
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: c.msg.Chat.ID, UserID: c.msg.From.ID},
	})
	if err != nil {
		logger.Warn("Failed to get chat member", zap.Int64("user_id", c.msg.From.ID), zap.Error(err))
		return false
	}
	c.admin = member.IsAdministrator() || member.IsCreator()
	return c.admin
}

func (b *Bot) reply(ctx context.Context, c *commandContext, text string) {
	if err := b.effector.SendMessage(ctx, c.msg.Chat.ID, text); err != nil {
		logger.Warn("Failed to send reply", zap.Int64("chat_id", c.msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) logCommandError(name string, c *commandContext, err error) {
	logger.Warn("Command failed",
		zap.String("command", name),
		zap.String("user", c.target.Username),
		zap.Error(err))
}
