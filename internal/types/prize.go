package types

import (
	"strings"
	"time"
)

// ConsolationPrizeName is reserved for the consolation prize.
const ConsolationPrizeName = "Consolation Prize"

// PrizeType is the kind of reward a prize grants.
type PrizeType int

const (
	PrizeTypeRole PrizeType = iota
	PrizeTypeUnknown
)

func (t PrizeType) String() string {
	switch t {
	case PrizeTypeRole:
		return "role"
	default:
		return "unknown"
	}
}

// ParsePrizeType maps a config value to a PrizeType.
func ParsePrizeType(s string) PrizeType {
	if strings.EqualFold(strings.TrimSpace(s), "role") {
		return PrizeTypeRole
	}
	return PrizeTypeUnknown
}

// Prize is one entry of the prize catalog. Immutable after config load.
type Prize struct {
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	Type                 PrizeType     `json:"-"`
	RoleID               int64         `json:"role_id"`
	RoleTime             time.Duration `json:"-"` // zero: role is never removed
	RoleTimeVariation    time.Duration `json:"-"`
	IsSilencing          bool          `json:"is_silencing"`
	MoveBackAfterSilence bool          `json:"move_back_after_silence"`
	ImagePath            string        `json:"image_path,omitempty"`
	Message              string        `json:"message"`
	Odds                 uint32        `json:"odds"` // 1 in Odds chance
}

// IsConsolation reports whether p is the consolation prize.
func (p Prize) IsConsolation() bool {
	return p.Name == ConsolationPrizeName
}

// IsTimed reports whether the reward is revoked after a delay.
func (p Prize) IsTimed() bool {
	return p.RoleTime > 0
}
