package effects

import (
	"context"

	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"github.com/ichi0g0y/spin-the-wheel/internal/wheel"
)

// Dispatcher is a wheel.Effector that hands every call to the queue. The
// only error it returns is ErrQueueFull.
type Dispatcher struct {
	queue  *Queue
	target wheel.Effector
}

func NewDispatcher(queue *Queue, target wheel.Effector) *Dispatcher {
	return &Dispatcher{queue: queue, target: target}
}

func (d *Dispatcher) enqueue(name string, fn func(ctx context.Context) error) error {
	if !d.queue.Enqueue(name, fn) {
		return ErrQueueFull
	}
	return nil
}

func (d *Dispatcher) SendMessage(_ context.Context, channelID int64, text string) error {
	return d.enqueue("send_message", func(ctx context.Context) error {
		return d.target.SendMessage(ctx, channelID, text)
	})
}

func (d *Dispatcher) SendFile(_ context.Context, channelID int64, path string) error {
	return d.enqueue("send_file", func(ctx context.Context) error {
		return d.target.SendFile(ctx, channelID, path)
	})
}

func (d *Dispatcher) GrantRole(_ context.Context, guildID, userID, roleID int64) error {
	return d.enqueue("grant_role", func(ctx context.Context) error {
		return d.target.GrantRole(ctx, guildID, userID, roleID)
	})
}

func (d *Dispatcher) RevokeRole(_ context.Context, guildID, userID, roleID int64) error {
	return d.enqueue("revoke_role", func(ctx context.Context) error {
		return d.target.RevokeRole(ctx, guildID, userID, roleID)
	})
}

func (d *Dispatcher) Silence(_ context.Context, guildID, userID int64) error {
	return d.enqueue("silence", func(ctx context.Context) error {
		return d.target.Silence(ctx, guildID, userID)
	})
}

func (d *Dispatcher) Unsilence(_ context.Context, guildID, userID int64, moveBack bool) error {
	return d.enqueue("unsilence", func(ctx context.Context) error {
		return d.target.Unsilence(ctx, guildID, userID, moveBack)
	})
}

func (d *Dispatcher) SendDirect(_ context.Context, userID int64, text string) error {
	return d.enqueue("send_direct", func(ctx context.Context) error {
		return d.target.SendDirect(ctx, userID, text)
	})
}

// AsyncRecorder writes history records on the effect queue.
type AsyncRecorder struct {
	queue  *Queue
	target wheel.Recorder
}

func NewAsyncRecorder(queue *Queue, target wheel.Recorder) *AsyncRecorder {
	return &AsyncRecorder{queue: queue, target: target}
}

func (r *AsyncRecorder) RecordSpin(rec types.SpinRecord) error {
	if !r.queue.Enqueue("record_spin", func(context.Context) error {
		return r.target.RecordSpin(rec)
	}) {
		return ErrQueueFull
	}
	return nil
}

func (r *AsyncRecorder) RecordButtonPress(rec types.ButtonPressRecord) error {
	if !r.queue.Enqueue("record_button_press", func(context.Context) error {
		return r.target.RecordButtonPress(rec)
	}) {
		return ErrQueueFull
	}
	return nil
}
