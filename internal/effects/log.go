package effects

import (
	"context"

	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"go.uber.org/zap"
)

// LogEffector writes every effect to the log instead of a chat service.
type LogEffector struct{}

func (LogEffector) SendMessage(_ context.Context, channelID int64, text string) error {
	logger.Info("[chat] message", zap.Int64("channel_id", channelID), zap.String("text", text))
	return nil
}

func (LogEffector) SendFile(_ context.Context, channelID int64, path string) error {
	logger.Info("[chat] file", zap.Int64("channel_id", channelID), zap.String("path", path))
	return nil
}

func (LogEffector) GrantRole(_ context.Context, guildID, userID, roleID int64) error {
	logger.Info("[chat] grant role",
		zap.Int64("guild_id", guildID),
		zap.Int64("user_id", userID),
		zap.Int64("role_id", roleID))
	return nil
}

func (LogEffector) RevokeRole(_ context.Context, guildID, userID, roleID int64) error {
	logger.Info("[chat] revoke role",
		zap.Int64("guild_id", guildID),
		zap.Int64("user_id", userID),
		zap.Int64("role_id", roleID))
	return nil
}

func (LogEffector) Silence(_ context.Context, guildID, userID int64) error {
	logger.Info("[chat] silence", zap.Int64("guild_id", guildID), zap.Int64("user_id", userID))
	return nil
}

func (LogEffector) Unsilence(_ context.Context, guildID, userID int64, moveBack bool) error {
	logger.Info("[chat] unsilence",
		zap.Int64("guild_id", guildID),
		zap.Int64("user_id", userID),
		zap.Bool("move_back", moveBack))
	return nil
}

func (LogEffector) SendDirect(_ context.Context, userID int64, text string) error {
	logger.Info("[chat] direct message", zap.Int64("user_id", userID), zap.String("text", text))
	return nil
}
