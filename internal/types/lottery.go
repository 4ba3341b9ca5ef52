package types

import "time"

// Target identifies who triggered an action and where to answer.
type Target struct {
	UserID    int64  `json:"user_id" db:"user_id"`
	Username  string `json:"username" db:"username"`
	Mention   string `json:"mention"`    // how to address the user in chat
	GuildID   int64  `json:"guild_id"`   // server / group the roles live in
	ChannelID int64  `json:"channel_id"` // where replies go
}

// Addressed returns the mention, falling back to the username.
func (t Target) Addressed() string {
	if t.Mention != "" {
		return t.Mention
	}
	return t.Username
}

// SpinRecord is one spin as written to the history table.
type SpinRecord struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	Username      string    `json:"username" db:"username"`
	PrizeName     string    `json:"prize_name" db:"prize_name"` // empty when nothing was won
	IsConsolation bool      `json:"is_consolation" db:"is_consolation"`
	Granted       bool      `json:"granted" db:"granted"` // false when the user already held it
	SpinCount     uint32    `json:"spin_count" db:"spin_count"`
	Multiplier    int       `json:"multiplier" db:"multiplier"`
	HoldMillis    int64     `json:"hold_ms" db:"hold_ms"`
	SpunAt        time.Time `json:"spun_at" db:"spun_at"`
}

// ButtonPressRecord is one button press as written to the history table.
type ButtonPressRecord struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	PressedAt time.Time `json:"pressed_at" db:"pressed_at"`
}
