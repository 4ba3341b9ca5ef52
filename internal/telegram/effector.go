package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
	"go.uber.org/zap"
)

// Sender is the part of the bot API the transport uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Effector performs wheel side effects through the bot API. Telegram has no
// assignable roles, so role changes are only logged.
type Effector struct {
	api Sender
}

func NewEffector(api Sender) *Effector {
	return &Effector{api: api}
}

func (e *Effector) SendMessage(_ context.Context, channelID int64, text string) error {
	if _, err := e.api.Send(tgbotapi.NewMessage(channelID, text)); err != nil {
		return fmt.Errorf("send message to %d: %w", channelID, err)
	}
	return nil
}

func (e *Effector) SendFile(_ context.Context, channelID int64, path string) error {
	if _, err := e.api.Send(tgbotapi.NewPhoto(channelID, tgbotapi.FilePath(path))); err != nil {
		return fmt.Errorf("send photo %s to %d: %w", path, channelID, err)
	}
	return nil
}

func (e *Effector) GrantRole(_ context.Context, guildID, userID, roleID int64) error {
	logger.Info("Role granted",
		zap.Int64("chat_id", guildID),
		zap.Int64("user_id", userID),
		zap.Int64("role_id", roleID))
	return nil
}

func (e *Effector) RevokeRole(_ context.Context, guildID, userID, roleID int64) error {
	logger.Info("Role revoked",
		zap.Int64("chat_id", guildID),
		zap.Int64("user_id", userID),
		zap.Int64("role_id", roleID))
	return nil
}

// Silence removes every send permission from the member.
func (e *Effector) Silence(_ context.Context, guildID, userID int64) error {
	return e.restrict(guildID, userID, &tgbotapi.ChatPermissions{})
}

// Unsilence restores send permissions. There are no voice channels to move
// the user back to.
func (e *Effector) Unsilence(_ context.Context, guildID, userID int64, moveBack bool) error {
	if moveBack {
		logger.Debug("Move back requested, nothing to move", zap.Int64("user_id", userID))
	}
	return e.restrict(guildID, userID, &tgbotapi.ChatPermissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
	})
}

func (e *Effector) restrict(chatID, userID int64, perms *tgbotapi.ChatPermissions) error {
	cfg := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		Permissions: perms,
	}
	if _, err := e.api.Request(cfg); err != nil {
		return fmt.Errorf("restrict member %d in %d: %w", userID, chatID, err)
	}
	return nil
}

// SendDirect messages the user in their private chat. Users who never
// started the bot or blocked it yield wheel.ErrDirectBlocked.
func (e *Effector) SendDirect(_ context.Context, userID int64, text string) error {
	if _, err := e.api.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		if isForbidden(err) {
			return fmt.Errorf("%w: %v", wheel.ErrDirectBlocked, err)
		}
		return fmt.Errorf("send direct message to %d: %w", userID, err)
	}
	return nil
}

func isForbidden(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusForbidden
	}
	return false
}
