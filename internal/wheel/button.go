package wheel

import (
	"context"
	"fmt"

	"github.com/ichi0g0y/spin-the-wheel/internal/button"
	"github.com/ichi0g0y/spin-the-wheel/internal/metrics"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

// ButtonStatus is a read-only view of the button for the overlay API.
type ButtonStatus struct {
	State      string  `json:"state"`
	Holders    []int64 `json:"holders"`
	ActiveTime int64   `json:"active_time_ms"`
	RoleTime   int64   `json:"role_time_ms"`
}

func (m *Manager) ButtonEnabled() bool {
	return m.gate.Enabled()
}

func (m *Manager) ButtonActive() bool {
	return m.gate.Active()
}

func (m *Manager) ButtonState() button.State {
	return m.gate.State()
}

func (m *Manager) ButtonStatus() ButtonStatus {
	return ButtonStatus{
		State:      m.gate.State().String(),
		Holders:    m.gate.Holders(),
		ActiveTime: m.cfg.Button.ActiveTime.Milliseconds(),
		RoleTime:   m.cfg.Button.RoleTime.Milliseconds(),
	}
}

// ShowButton activates the button and schedules its deactivation. It does
// nothing unless the button is enabled and inactive.
func (m *Manager) ShowButton(ctx context.Context, t types.Target) bool {
	if !m.gate.Activate() {
		logger.Debug("Big red button not activated",
			zap.String("user", t.Username),
			zap.Stringer("state", m.gate.State()))
		return false
	}

	channelID := t.ChannelID
	if _, err := m.sched.Schedule("button-deactivate", m.cfg.Button.ActiveTime, func() {
		m.deactivateButton(context.Background(), channelID)
	}); err != nil {
		metrics.RecordSchedulingFailure()
		logger.Warn("Failed to schedule button deactivation", zap.Error(err))
		m.gate.Deactivate()
		m.send(ctx, channelID, msgSomethingWrong)
		return false
	}

	logger.Info(fmt.Sprintf("%s has enabled the big red button.", t.Username))
	metrics.SetButtonActive(true)

	m.send(ctx, channelID, msgButtonEnabled(t.Addressed(), m.cfg.Button.ActiveTime))
	m.send(ctx, channelID, m.cfg.Button.Message)
	m.send(ctx, channelID, msgButtonHowTo(m.settings.Prefix()))
	if path := m.cfg.Button.ImagePath; path != "" {
		if err := m.effector.SendFile(ctx, channelID, path); err != nil {
			logger.Warn("Failed to send button image", zap.String("path", path), zap.Error(err))
		}
	}

	m.broadcaster.Broadcast(EventButtonActivated, map[string]any{
		"user_id":        t.UserID,
		"username":       t.Username,
		"active_time_ms": m.cfg.Button.ActiveTime.Milliseconds(),
	})
	return true
}

func (m *Manager) deactivateButton(ctx context.Context, channelID int64) {
	if !m.gate.Deactivate() {
		return
	}
	logger.Info("The big red button has been deactivated.")
	metrics.SetButtonActive(false)
	m.send(ctx, channelID, msgButtonDeactivated)
	m.broadcaster.Broadcast(EventButtonDeactivated, map[string]any{"channel_id": channelID})
}

// PressButton grants the button role when the button is active. Pressing
// while inactive does nothing.
func (m *Manager) PressButton(ctx context.Context, t types.Target) bool {
	if !m.gate.Active() {
		logger.Debug("Big red button pressed while inactive", zap.String("user", t.Username))
		return false
	}
	return m.GrantButtonRole(ctx, t)
}

// GrantButtonRole gives the button role whether or not the button is active.
// A user already holding the role is left alone.
func (m *Manager) GrantButtonRole(ctx context.Context, t types.Target) bool {
	if !m.gate.Enabled() {
		return false
	}
	logger.Info(fmt.Sprintf("%s has pressed the button.", t.Username))

	if !m.gate.AddHolder(t.UserID) {
		logger.Warn(fmt.Sprintf("%s already has a button role.", t.Username))
		return false
	}

	cfg := m.cfg.Button
	logger.Debug("Granting button role",
		zap.String("user", t.Username),
		zap.Int64("role_id", cfg.RoleID),
		zap.Duration("role_time", cfg.RoleTime))

	if err := m.effector.GrantRole(ctx, t.GuildID, t.UserID, cfg.RoleID); err != nil {
		logger.Error("Failed to grant button role", zap.Int64("role_id", cfg.RoleID), zap.Error(err))
		m.gate.RemoveHolder(t.UserID)
		return false
	}
	if cfg.IsSilencing {
		if err := m.effector.Silence(ctx, t.GuildID, t.UserID); err != nil {
			logger.Warn("Failed to silence user", zap.String("user", t.Username), zap.Error(err))
		}
	}

	if cfg.RoleTime > 0 {
		if _, err := m.sched.Schedule("button-role-remove", cfg.RoleTime, func() {
			m.removeButtonRole(context.Background(), t)
		}); err != nil {
			metrics.RecordSchedulingFailure()
			logger.Warn("Rolling back button role", zap.String("user", t.Username), zap.Error(err))
			m.rollbackButtonRole(ctx, t)
			return false
		}
	}

	if path := cfg.PressedImagePath; path != "" {
		if err := m.effector.SendFile(ctx, t.ChannelID, path); err != nil {
			logger.Warn("Failed to send pressed image", zap.String("path", path), zap.Error(err))
		}
	}
	m.send(ctx, t.ChannelID, msgButtonPressed(t.Addressed()))
	if cfg.RoleTime > 0 {
		m.send(ctx, t.ChannelID, msgButtonHold(cfg.RoleTime))
	}

	metrics.RecordButtonPress()
	if err := m.recorder.RecordButtonPress(types.ButtonPressRecord{
		UserID:    t.UserID,
		Username:  t.Username,
		PressedAt: m.now(),
	}); err != nil {
		logger.Warn("Failed to record button press", zap.String("user", t.Username), zap.Error(err))
	}
	m.broadcaster.Broadcast(EventButtonPressed, map[string]any{
		"user_id":      t.UserID,
		"username":     t.Username,
		"role_time_ms": cfg.RoleTime.Milliseconds(),
	})
	return true
}

func (m *Manager) rollbackButtonRole(ctx context.Context, t types.Target) {
	if err := m.effector.RevokeRole(ctx, t.GuildID, t.UserID, m.cfg.Button.RoleID); err != nil {
		logger.Error("Failed to revoke button role during rollback", zap.Error(err))
	}
	if m.cfg.Button.IsSilencing {
		if err := m.effector.Unsilence(ctx, t.GuildID, t.UserID, m.cfg.Button.MoveBackAfterSilence); err != nil {
			logger.Warn("Failed to unsilence user during rollback", zap.String("user", t.Username), zap.Error(err))
		}
	}
	m.gate.RemoveHolder(t.UserID)
	m.send(ctx, t.ChannelID, msgSomethingWrong)
}

func (m *Manager) removeButtonRole(ctx context.Context, t types.Target) {
	logger.Info(fmt.Sprintf("Removing %s's button role.", t.Username))

	if err := m.effector.RevokeRole(ctx, t.GuildID, t.UserID, m.cfg.Button.RoleID); err != nil {
		logger.Error("Failed to revoke button role", zap.Int64("role_id", m.cfg.Button.RoleID), zap.Error(err))
	}
	if m.cfg.Button.IsSilencing {
		if err := m.effector.Unsilence(ctx, t.GuildID, t.UserID, m.cfg.Button.MoveBackAfterSilence); err != nil {
			logger.Warn("Failed to unsilence user", zap.String("user", t.Username), zap.Error(err))
		}
	}
	m.gate.RemoveHolder(t.UserID)
	m.sendDirect(ctx, t, msgButtonRoleLifted)

	metrics.RecordRevocation("button")
	m.broadcaster.Broadcast(EventButtonRoleRemoved, map[string]any{
		"user_id":  t.UserID,
		"username": t.Username,
	})
}
