package types

import "time"

const (
	DefaultCommandPrefix    = "!"
	DefaultButtonImagePath  = "Resources/big-red-button.jpg"
	DefaultPressedImagePath = "Resources/pressed.png"
)

// ButtonConfig configures the big red button event.
type ButtonConfig struct {
	Enabled              bool
	RoleID               int64
	ActiveTime           time.Duration // how long the button stays pressable
	RoleTime             time.Duration // how long a presser keeps the role
	Message              string
	IsSilencing          bool
	MoveBackAfterSilence bool
	ImagePath            string
	PressedImagePath     string
}

// PenaltyConfig configures the consecutive spin penalty. Enabled is only
// true when both thresholds were parsed.
type PenaltyConfig struct {
	Enabled            bool
	ResetTime          time.Duration
	SpinsBeforePenalty uint32
}

// SpinConfig configures the wheel.
type SpinConfig struct {
	Enabled            bool
	Prizes             []Prize // configured order is evaluation order
	ConsolationEnabled bool
	Consolation        Prize
	Penalty            PenaltyConfig
}

// Config is the validated startup configuration. Read-only after load.
type Config struct {
	BotToken      string
	CommandPrefix string
	SendDMs       bool
	Button        ButtonConfig
	Spin          SpinConfig
}
