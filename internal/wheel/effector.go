package wheel

import (
	"context"

	"github.com/ichi0g0y/spin-the-wheel/internal/types"
)

// Effector performs chat side effects. Calls are fire-and-forget: an error
// means the effect could not be started, it is logged and never retried.
type Effector interface {
	SendMessage(ctx context.Context, channelID int64, text string) error
	SendFile(ctx context.Context, channelID int64, path string) error
	GrantRole(ctx context.Context, guildID, userID, roleID int64) error
	RevokeRole(ctx context.Context, guildID, userID, roleID int64) error
	Silence(ctx context.Context, guildID, userID int64) error
	Unsilence(ctx context.Context, guildID, userID int64, moveBack bool) error
	SendDirect(ctx context.Context, userID int64, text string) error
}

// Broadcaster publishes core events to overlay clients.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// Recorder keeps an audit trail of spins and button presses.
type Recorder interface {
	RecordSpin(rec types.SpinRecord) error
	RecordButtonPress(rec types.ButtonPressRecord) error
}

// Event types sent through the Broadcaster.
const (
	EventSpinResult        = "spin_result"
	EventPrizeGranted      = "prize_granted"
	EventPrizeRevoked      = "prize_revoked"
	EventButtonActivated   = "button_activated"
	EventButtonDeactivated = "button_deactivated"
	EventButtonPressed     = "button_pressed"
	EventButtonRoleRemoved = "button_role_removed"
)

type nopEffector struct{}

func (nopEffector) SendMessage(context.Context, int64, string) error { return nil }
func (nopEffector) SendFile(context.Context, int64, string) error { return nil }
func (nopEffector) GrantRole(context.Context, int64, int64, int64) error { return nil }
func (nopEffector) RevokeRole(context.Context, int64, int64, int64) error { return nil }
func (nopEffector) Silence(context.Context, int64, int64) error { return nil }
func (nopEffector) Unsilence(context.Context, int64, int64, bool) error { return nil }
func (nopEffector) SendDirect(context.Context, int64, string) error { return nil }

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, any) {}

type nopRecorder struct{}

func (nopRecorder) RecordSpin(types.SpinRecord) error { return nil }
func (nopRecorder) RecordButtonPress(types.ButtonPressRecord) error { return nil }
