package lottery

import (
	"fmt"
	"time"
)

// CalculateHoldDuration returns how long a timed reward is held. The result
// is drawn uniformly in whole milliseconds from [base-variation, base+variation)
// and clamped at zero. Without variation the base is returned unchanged.
func CalculateHoldDuration(base, variation time.Duration) (time.Duration, error) {
	if base <= 0 {
		return 0, nil
	}
	if variation <= 0 {
		return base, nil
	}

	lo := (base - variation).Milliseconds()
	span := (2 * variation).Milliseconds()
	if span <= 0 {
		return base, nil
	}

	n, err := drawRandomInt(int(span))
	if err != nil {
		return 0, fmt.Errorf("failed to pick hold duration: %w", err)
	}

	ms := lo + int64(n)
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond, nil
}
