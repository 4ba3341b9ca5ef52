package wheel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/scheduler"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
)

const neverOdds = math.MaxUint32

type fakeEffector struct {
	mu        sync.Mutex
	calls     []string
	messages  []string
	directs   []string
	grantErr  error
	directErr error
}

func (f *fakeEffector) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeEffector) SendMessage(_ context.Context, channelID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("message:%d", channelID)
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeEffector) SendFile(_ context.Context, channelID int64, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("file:%d:%s", channelID, path)
	return nil
}

func (f *fakeEffector) GrantRole(_ context.Context, guildID, userID, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("grant:%d:%d:%d", guildID, userID, roleID)
	return f.grantErr
}

func (f *fakeEffector) RevokeRole(_ context.Context, guildID, userID, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("revoke:%d:%d:%d", guildID, userID, roleID)
	return nil
}

func (f *fakeEffector) Silence(_ context.Context, guildID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("silence:%d:%d", guildID, userID)
	return nil
}

func (f *fakeEffector) Unsilence(_ context.Context, guildID, userID int64, moveBack bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("unsilence:%d:%d:%t", guildID, userID, moveBack)
	return nil
}

func (f *fakeEffector) SendDirect(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("direct:%d", userID)
	f.directs = append(f.directs, text)
	return f.directErr
}

func (f *fakeEffector) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeEffector) has(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeEffector) sawMessage(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m == text {
			return true
		}
	}
	return false
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *fakeBroadcaster) Broadcast(eventType string, _ any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
}

func (b *fakeBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == eventType {
			n++
		}
	}
	return n
}

type fakeRecorder struct {
	mu      sync.Mutex
	spins   []types.SpinRecord
	presses []types.ButtonPressRecord
}

func (r *fakeRecorder) RecordSpin(rec types.SpinRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spins = append(r.spins, rec)
	return nil
}

func (r *fakeRecorder) RecordButtonPress(rec types.ButtonPressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presses = append(r.presses, rec)
	return nil
}

// failingTask wraps a scheduler and refuses tasks with one name.
type failingTask struct {
	*scheduler.Manual
	name string
}

func (f failingTask) Schedule(name string, delay time.Duration, fn func()) (scheduler.Task, error) {
	if name == f.name {
		return nil, errors.New("timers exhausted")
	}
	return f.Manual.Schedule(name, delay, fn)
}

type harness struct {
	manager     *Manager
	sched       *scheduler.Manual
	effector    *fakeEffector
	broadcaster *fakeBroadcaster
	recorder    *fakeRecorder
}

func newHarness(cfg types.Config) *harness {
	return newHarnessFailing(cfg, "")
}

// newHarnessFailing builds a harness whose scheduler rejects every task
// named failName.
func newHarnessFailing(cfg types.Config, failName string) *harness {
	h := &harness{
		sched:       scheduler.NewManual(),
		effector:    &fakeEffector{},
		broadcaster: &fakeBroadcaster{},
		recorder:    &fakeRecorder{},
	}
	h.manager = New(Options{
		Config:      cfg,
		Settings:    types.NewSettings("!", true),
		Scheduler:   failingTask{Manual: h.sched, name: failName},
		Effector:    h.effector,
		Broadcaster: h.broadcaster,
		Recorder:    h.recorder,
	})
	return h
}

func rolePrize(name string, odds uint32, roleTime time.Duration) types.Prize {
	return types.Prize{
		Name:        name,
		Description: name + " description",
		Type:        types.PrizeTypeRole,
		RoleID:      int64(len(name)) * 100,
		RoleTime:    roleTime,
		Message:     "You won " + name,
		Odds:        odds,
	}
}

func consolationPrize(roleTime time.Duration) types.Prize {
	p := rolePrize(types.ConsolationPrizeName, 1, roleTime)
	p.RoleID = 9
	return p
}

func spinConfig(prizes ...types.Prize) types.Config {
	return types.Config{
		CommandPrefix: "!",
		SendDMs:       true,
		Spin: types.SpinConfig{
			Enabled: true,
			Prizes:  prizes,
		},
	}
}

func target(userID int64) types.Target {
	return types.Target{
		UserID:    userID,
		Username:  fmt.Sprintf("user%d", userID),
		Mention:   fmt.Sprintf("@user%d", userID),
		GuildID:   -100,
		ChannelID: -100,
	}
}
