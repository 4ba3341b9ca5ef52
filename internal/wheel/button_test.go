package wheel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/button"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
)

func buttonConfig() types.Config {
	return types.Config{
		CommandPrefix: "!",
		SendDMs:       true,
		Button: types.ButtonConfig{
			Enabled:              true,
			RoleID:               77,
			ActiveTime:           2 * time.Minute,
			RoleTime:             30 * time.Second,
			Message:              "Do not press it.",
			IsSilencing:          true,
			MoveBackAfterSilence: true,
			ImagePath:            types.DefaultButtonImagePath,
			PressedImagePath:     types.DefaultPressedImagePath,
		},
	}
}

func TestButton_Disabled(t *testing.T) {
	h := newHarness(spinConfig())

	if h.manager.ShowButton(context.Background(), target(1)) {
		t.Fatalf("disabled button activated")
	}
	if h.manager.ButtonState() != button.StateDisabled {
		t.Fatalf("unexpected state: %v", h.manager.ButtonState())
	}
	if h.manager.GrantButtonRole(context.Background(), target(1)) {
		t.Fatalf("disabled button granted a role")
	}
}

func TestButton_PressWhileInactive(t *testing.T) {
	h := newHarness(buttonConfig())

	if h.manager.PressButton(context.Background(), target(1)) {
		t.Fatalf("press while inactive should be a no-op")
	}
	if got := h.effector.count("grant"); got != 0 {
		t.Fatalf("role granted while inactive: %d", got)
	}
}

func TestButton_ShowAndAutoDeactivate(t *testing.T) {
	h := newHarness(buttonConfig())

	if !h.manager.ShowButton(context.Background(), target(1)) {
		t.Fatalf("button should activate")
	}
	if h.manager.ShowButton(context.Background(), target(2)) {
		t.Fatalf("active button should not activate again")
	}
	if !h.manager.ButtonActive() {
		t.Fatalf("button should be active")
	}
	for _, msg := range []string{
		"@user1 has enabled the Big Red Button! The button will be active for 2 minutes!",
		"Do not press it.",
		"Use !SMASH to press it!",
	} {
		if !h.effector.sawMessage(msg) {
			t.Fatalf("missing message %q: %v", msg, h.effector.messages)
		}
	}
	if !h.effector.has("file:-100:" + types.DefaultButtonImagePath) {
		t.Fatalf("button image not sent")
	}

	h.manager.PressButton(context.Background(), target(3))
	h.sched.Advance(2 * time.Minute)

	if h.manager.ButtonState() != button.StateInactive {
		t.Fatalf("button should be inactive after the active time: %v", h.manager.ButtonState())
	}
	if !h.effector.sawMessage(msgButtonDeactivated) {
		t.Fatalf("missing deactivation message")
	}
	if h.broadcaster.count(EventButtonDeactivated) != 1 {
		t.Fatalf("deactivation not broadcast")
	}
}

func TestButton_PressTwiceGrantsOnce(t *testing.T) {
	h := newHarness(buttonConfig())
	h.manager.ShowButton(context.Background(), target(1))

	if !h.manager.PressButton(context.Background(), target(5)) {
		t.Fatalf("first press should grant")
	}
	if h.manager.PressButton(context.Background(), target(5)) {
		t.Fatalf("second press should be ignored")
	}
	if got := h.effector.count("grant:-100:5:77"); got != 1 {
		t.Fatalf("unexpected grant count: got=%d want=1", got)
	}
	if !h.effector.has("silence:-100:5") {
		t.Fatalf("silencing button role did not silence")
	}
	if !h.effector.sawMessage("@user5 has pressed the Big Red Button!") || !h.effector.sawMessage("They will have the role for 30 seconds!") {
		t.Fatalf("missing press messages: %v", h.effector.messages)
	}
	if len(h.recorder.presses) != 1 {
		t.Fatalf("unexpected press records: %d", len(h.recorder.presses))
	}
}

func TestButton_RoleRemovedAfterRoleTime(t *testing.T) {
	h := newHarness(buttonConfig())
	h.manager.ShowButton(context.Background(), target(1))
	h.manager.PressButton(context.Background(), target(5))

	h.sched.Advance(30 * time.Second)

	if len(h.manager.ButtonStatus().Holders) != 0 {
		t.Fatalf("holder not removed: %v", h.manager.ButtonStatus().Holders)
	}
	if !h.effector.has("revoke:-100:5:77") || !h.effector.has("unsilence:-100:5:true") {
		t.Fatalf("role removal effects missing: %v", h.effector.calls)
	}
	if len(h.effector.directs) != 1 || h.effector.directs[0] != msgButtonRoleLifted {
		t.Fatalf("unexpected direct messages: %v", h.effector.directs)
	}
	if !h.manager.PressButton(context.Background(), target(5)) {
		t.Fatalf("user should be able to press again after the role is lifted")
	}
}

func TestButton_StaysPutWithoutMoveBack(t *testing.T) {
	cfg := buttonConfig()
	cfg.Button.MoveBackAfterSilence = false
	h := newHarness(cfg)
	h.manager.ShowButton(context.Background(), target(1))
	h.manager.PressButton(context.Background(), target(5))

	h.sched.Advance(30 * time.Second)

	if !h.effector.has("unsilence:-100:5:false") {
		t.Fatalf("unexpected unsilence call: %v", h.effector.calls)
	}
}

func TestButton_GrantBypassesActiveGate(t *testing.T) {
	h := newHarness(buttonConfig())

	if !h.manager.GrantButtonRole(context.Background(), target(8)) {
		t.Fatalf("direct grant should work while inactive")
	}
	if h.manager.ButtonActive() {
		t.Fatalf("direct grant should not activate the button")
	}
}

func TestButton_ScheduleFailureRollsBack(t *testing.T) {
	h := newHarness(buttonConfig())
	h.manager.ShowButton(context.Background(), target(1))
	h.sched.SetFailure(errors.New("timers exhausted"))

	if h.manager.PressButton(context.Background(), target(6)) {
		t.Fatalf("press should fail when removal cannot be scheduled")
	}
	if len(h.manager.ButtonStatus().Holders) != 0 {
		t.Fatalf("holder left behind")
	}
	if !h.effector.has("revoke:-100:6:77") {
		t.Fatalf("role not revoked during rollback")
	}
}

func TestButton_ShowScheduleFailureStaysInactive(t *testing.T) {
	h := newHarness(buttonConfig())
	h.sched.SetFailure(errors.New("timers exhausted"))

	if h.manager.ShowButton(context.Background(), target(1)) {
		t.Fatalf("show should fail when deactivation cannot be scheduled")
	}
	if h.manager.ButtonState() != button.StateInactive {
		t.Fatalf("button left active without a deactivation timer")
	}
}
