// Package wheel runs spins and the big red button on top of the prize
// catalog, the reward ledger, the penalty tracker and the scheduler.
package wheel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/button"
	"github.com/ichi0g0y/spin-the-wheel/internal/ledger"
	"github.com/ichi0g0y/spin-the-wheel/internal/lottery"
	"github.com/ichi0g0y/spin-the-wheel/internal/metrics"
	"github.com/ichi0g0y/spin-the-wheel/internal/penalty"
	"github.com/ichi0g0y/spin-the-wheel/internal/scheduler"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

// Status describes what a spin or a grant did.
type Status int

const (
	StatusDisabled Status = iota
	StatusNoPrize
	StatusGranted
	StatusAlreadyHeld
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusNoPrize:
		return "no_prize"
	case StatusGranted:
		return "granted"
	case StatusAlreadyHeld:
		return "already_held"
	case StatusNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Outcome is the result of a spin or a direct prize grant.
type Outcome struct {
	Status      Status         `json:"status"`
	Prize       *types.Prize   `json:"prize,omitempty"`
	Consolation bool           `json:"consolation"`
	Hold        time.Duration  `json:"hold"`
	Multiplier  int            `json:"multiplier"`
	SpinCount   uint32         `json:"spin_count"`
	Rolls       []lottery.Roll `json:"rolls,omitempty"`
}

// Options wires a Manager. Only Config is required.
type Options struct {
	Config      types.Config
	Settings    *types.Settings
	Scheduler   scheduler.Scheduler
	Effector    Effector
	Broadcaster Broadcaster
	Recorder    Recorder
}

// Manager owns all in-memory prize and event state.
type Manager struct {
	cfg         types.Config
	settings    *types.Settings
	catalog     *lottery.Catalog
	ledger      *ledger.Ledger
	tracker     *penalty.Tracker
	gate        *button.Gate
	sched       scheduler.Scheduler
	effector    Effector
	broadcaster Broadcaster
	recorder    Recorder
	now         func() time.Time
}

func New(opts Options) *Manager {
	m := &Manager{
		cfg:         opts.Config,
		settings:    opts.Settings,
		sched:       opts.Scheduler,
		effector:    opts.Effector,
		broadcaster: opts.Broadcaster,
		recorder:    opts.Recorder,
		now:         time.Now,
	}
	if m.settings == nil {
		m.settings = types.NewSettings(opts.Config.CommandPrefix, opts.Config.SendDMs)
	}
	if m.sched == nil {
		m.sched = scheduler.NewTimerScheduler(0)
	}
	if m.effector == nil {
		m.effector = nopEffector{}
	}
	if m.broadcaster == nil {
		m.broadcaster = nopBroadcaster{}
	}
	if m.recorder == nil {
		m.recorder = nopRecorder{}
	}

	var consolation *types.Prize
	if opts.Config.Spin.ConsolationEnabled {
		c := opts.Config.Spin.Consolation
		consolation = &c
	}
	m.catalog = lottery.NewCatalog(opts.Config.Spin.Prizes, consolation)
	m.ledger = ledger.New(m.catalog.Names()...)
	m.tracker = penalty.NewTracker(opts.Config.Spin.Penalty, m.sched)
	m.gate = button.NewGate(opts.Config.Button.Enabled)
	return m
}

func (m *Manager) Settings() *types.Settings {
	return m.settings
}

func (m *Manager) SpinEnabled() bool {
	return m.cfg.Spin.Enabled
}

// LookupPrize finds a prize by name, checking the consolation prize first.
func (m *Manager) LookupPrize(name string) (types.Prize, bool) {
	return m.catalog.Lookup(name)
}

// Prizes returns the drawable prizes in evaluation order.
func (m *Manager) Prizes() []types.Prize {
	return m.catalog.Prizes()
}

func (m *Manager) Consolation() (types.Prize, bool) {
	return m.catalog.Consolation()
}

// PrizeList renders the prize list message.
func (m *Manager) PrizeList() string {
	var consolation *types.Prize
	if c, ok := m.catalog.Consolation(); ok {
		consolation = &c
	}
	return FormatPrizeList(m.catalog.Prizes(), consolation)
}

func (m *Manager) ShowPrizeList(ctx context.Context, channelID int64) {
	logger.Debug("Attempting to show prize list")
	m.send(ctx, channelID, m.PrizeList())
}

// Holdings returns the current holders of every prize.
func (m *Manager) Holdings() map[string][]int64 {
	return m.ledger.Snapshot()
}

// SpinCount returns the user's consecutive spin count.
func (m *Manager) SpinCount(userID int64) uint32 {
	return m.tracker.Count(userID)
}

// Spin draws once for the user. The penalty tracker sees every spin, won or
// not.
func (m *Manager) Spin(ctx context.Context, t types.Target) Outcome {
	if !m.cfg.Spin.Enabled {
		return Outcome{Status: StatusDisabled}
	}

	count := m.tracker.Record(t.UserID, t.Username)

	result, err := lottery.Draw(m.catalog, t.Username)
	if err != nil {
		logger.Error("Failed to draw", zap.String("user", t.Username), zap.Error(err))
		m.send(ctx, t.ChannelID, msgSomethingWrong)
		out := Outcome{Status: StatusFailed, SpinCount: count}
		m.finishSpin(t, out)
		return out
	}

	if !result.Won() {
		logger.Info("Spin won nothing", zap.String("user", t.Username))
		out := Outcome{Status: StatusNoPrize, SpinCount: count, Rolls: result.Rolls, Multiplier: 1}
		m.finishSpin(t, out)
		return out
	}

	if result.Consolation {
		logger.Info(fmt.Sprintf("%s has gotten a consolation prize.", t.Username))
	} else {
		logger.Info(fmt.Sprintf("%s has won %s!", t.Username, result.Prize.Name))
	}

	out := m.grantPrize(ctx, t, *result.Prize, count)
	out.SpinCount = count
	out.Rolls = result.Rolls
	m.finishSpin(t, out)
	return out
}

// GrantPrize gives the named prize to the user without drawing.
func (m *Manager) GrantPrize(ctx context.Context, t types.Target, prizeName string) Outcome {
	if !m.cfg.Spin.Enabled {
		return Outcome{Status: StatusDisabled}
	}

	p, ok := m.catalog.Lookup(prizeName)
	if !ok {
		logger.Warn("Prize not found", zap.String("prize", prizeName), zap.String("user", t.Username))
		return Outcome{Status: StatusNotFound}
	}
	return m.grantPrize(ctx, t, p, m.tracker.Count(t.UserID))
}

// grantPrize hands p to the user. count is the spin count the consolation
// penalty is worked out from.
func (m *Manager) grantPrize(ctx context.Context, t types.Target, p types.Prize, count uint32) Outcome {
	logger.Info("Giving prize", zap.String("user", t.Username), zap.String("prize", p.Name))
	out := Outcome{Prize: &p, Consolation: p.IsConsolation(), Multiplier: 1}

	if !m.ledger.Grant(p.Name, t.UserID) {
		logger.Info("User already has that prize", zap.String("user", t.Username), zap.String("prize", p.Name))
		metrics.RecordDuplicateGrant(p.Name)
		m.send(ctx, t.ChannelID, msgAlreadyHeld(t.Addressed(), p.Name))
		out.Status = StatusAlreadyHeld
		return out
	}

	if p.Type != types.PrizeTypeRole {
		logger.Error("Prize has no grantable type", zap.String("prize", p.Name), zap.Stringer("type", p.Type))
		m.ledger.Revoke(p.Name, t.UserID)
		m.send(ctx, t.ChannelID, msgSomethingWrong)
		out.Status = StatusFailed
		return out
	}

	if err := m.effector.GrantRole(ctx, t.GuildID, t.UserID, p.RoleID); err != nil {
		logger.Error("Failed to grant prize role",
			zap.String("prize", p.Name),
			zap.Int64("role_id", p.RoleID),
			zap.Error(err))
		m.ledger.Revoke(p.Name, t.UserID)
		m.send(ctx, t.ChannelID, msgSomethingWrong)
		out.Status = StatusFailed
		return out
	}

	if p.IsSilencing {
		logger.Debug("User will be silenced", zap.String("user", t.Username))
		if err := m.effector.Silence(ctx, t.GuildID, t.UserID); err != nil {
			logger.Warn("Failed to silence user", zap.String("user", t.Username), zap.Error(err))
		}
	}

	if p.ImagePath != "" {
		if err := m.effector.SendFile(ctx, t.ChannelID, p.ImagePath); err != nil {
			logger.Warn("Failed to send prize image", zap.String("path", p.ImagePath), zap.Error(err))
		}
	}
	m.send(ctx, t.ChannelID, p.Message)

	if p.IsTimed() {
		hold, mult, err := m.scheduleRevocation(ctx, t, p, count)
		if err != nil {
			logger.Warn("Rolling back prize grant",
				zap.String("user", t.Username),
				zap.String("prize", p.Name),
				zap.Error(err))
			m.rollbackPrize(ctx, t, p)
			out.Status = StatusFailed
			return out
		}
		out.Hold = hold
		out.Multiplier = mult
		m.send(ctx, t.ChannelID, msgHold(hold))
	}

	out.Status = StatusGranted
	metrics.RecordPrizeGranted(p.Name)
	m.broadcaster.Broadcast(EventPrizeGranted, map[string]any{
		"user_id":     t.UserID,
		"username":    t.Username,
		"prize":       p.Name,
		"consolation": out.Consolation,
		"hold_ms":     out.Hold.Milliseconds(),
		"multiplier":  out.Multiplier,
	})
	return out
}

// scheduleRevocation works out the hold and arms the removal task. The
// consolation penalty only extends the user's reset window once the removal
// is in place.
func (m *Manager) scheduleRevocation(ctx context.Context, t types.Target, p types.Prize, count uint32) (time.Duration, int, error) {
	hold, err := lottery.CalculateHoldDuration(p.RoleTime, p.RoleTimeVariation)
	if err != nil {
		return 0, 0, err
	}

	mult := 1
	if p.IsConsolation() && m.tracker.Enabled() {
		hold, mult = m.tracker.Penalize(count, hold)
	}

	if _, err := m.sched.Schedule("revoke-prize", hold, func() {
		m.revokePrize(context.Background(), t, p)
	}); err != nil {
		metrics.RecordSchedulingFailure()
		return 0, 0, fmt.Errorf("failed to schedule revocation: %w", err)
	}

	if mult > 1 {
		m.tracker.Extend(t.UserID, hold)
		m.send(ctx, t.ChannelID, msgPenalty(m.tracker.Window()))
	}
	return hold, mult, nil
}

// rollbackPrize undoes a grant whose removal could not be scheduled.
func (m *Manager) rollbackPrize(ctx context.Context, t types.Target, p types.Prize) {
	if err := m.effector.RevokeRole(ctx, t.GuildID, t.UserID, p.RoleID); err != nil {
		logger.Error("Failed to revoke role during rollback", zap.String("prize", p.Name), zap.Error(err))
	}
	if p.IsSilencing {
		if err := m.effector.Unsilence(ctx, t.GuildID, t.UserID, p.MoveBackAfterSilence); err != nil {
			logger.Warn("Failed to unsilence user during rollback", zap.String("user", t.Username), zap.Error(err))
		}
	}
	m.ledger.Revoke(p.Name, t.UserID)
	m.send(ctx, t.ChannelID, msgSomethingWrong)
}

func (m *Manager) revokePrize(ctx context.Context, t types.Target, p types.Prize) {
	logger.Info("Removing prize role", zap.String("user", t.Username), zap.String("prize", p.Name))

	if err := m.effector.RevokeRole(ctx, t.GuildID, t.UserID, p.RoleID); err != nil {
		logger.Error("Failed to revoke prize role",
			zap.String("prize", p.Name),
			zap.Int64("role_id", p.RoleID),
			zap.Error(err))
		m.send(ctx, t.ChannelID, msgSomethingWrong)
	}
	m.ledger.Revoke(p.Name, t.UserID)

	if p.IsSilencing {
		logger.Debug("Unsilencing user", zap.String("user", t.Username))
		if err := m.effector.Unsilence(ctx, t.GuildID, t.UserID, p.MoveBackAfterSilence); err != nil {
			logger.Warn("Failed to unsilence user", zap.String("user", t.Username), zap.Error(err))
		}
	}

	m.sendDirect(ctx, t, msgPrizeRemoved(p.Name))

	if p.IsConsolation() {
		m.tracker.Restart(t.UserID)
	}

	metrics.RecordRevocation("prize")
	m.broadcaster.Broadcast(EventPrizeRevoked, map[string]any{
		"user_id":  t.UserID,
		"username": t.Username,
		"prize":    p.Name,
	})
}

func (m *Manager) finishSpin(t types.Target, out Outcome) {
	metrics.RecordSpin(out.Status.String())

	rec := types.SpinRecord{
		UserID:     t.UserID,
		Username:   t.Username,
		Granted:    out.Status == StatusGranted,
		SpinCount:  out.SpinCount,
		Multiplier: out.Multiplier,
		HoldMillis: out.Hold.Milliseconds(),
		SpunAt:     m.now(),
	}
	if out.Prize != nil {
		rec.PrizeName = out.Prize.Name
		rec.IsConsolation = out.Consolation
	}
	if err := m.recorder.RecordSpin(rec); err != nil {
		logger.Warn("Failed to record spin", zap.String("user", t.Username), zap.Error(err))
	}

	m.broadcaster.Broadcast(EventSpinResult, map[string]any{
		"user_id":     t.UserID,
		"username":    t.Username,
		"status":      out.Status.String(),
		"prize":       rec.PrizeName,
		"consolation": rec.IsConsolation,
		"spin_count":  out.SpinCount,
		"rolls":       out.Rolls,
	})
}

func (m *Manager) send(ctx context.Context, channelID int64, text string) {
	if text == "" {
		return
	}
	if err := m.effector.SendMessage(ctx, channelID, text); err != nil {
		logger.Warn("Failed to send message", zap.Int64("channel_id", channelID), zap.Error(err))
	}
}

// sendDirect messages the user privately when DMs are switched on.
func (m *Manager) sendDirect(ctx context.Context, t types.Target, text string) {
	if !m.settings.SendDMs() {
		return
	}
	if err := m.effector.SendDirect(ctx, t.UserID, text); err != nil {
		if errors.Is(err, ErrDirectBlocked) {
			logger.Info(fmt.Sprintf("%s has DMs off, message will not be sent to them", t.Username))
			return
		}
		logger.Warn("Failed to send direct message", zap.String("user", t.Username), zap.Error(err))
	}
}

// ErrDirectBlocked is returned by effectors when the user does not accept
// direct messages.
var ErrDirectBlocked = errors.New("direct messages blocked by user")
