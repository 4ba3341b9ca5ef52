package lottery

import (
	"fmt"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/types"
)

// GeneratePrizes builds n role prizes with deterministic names and odds.
func GeneratePrizes(n int) []types.Prize {
	if n <= 0 {
		return []types.Prize{}
	}

	prizes := make([]types.Prize, n)
	for i := 0; i < n; i++ {
		prizes[i] = GeneratePrize(i)
	}
	return prizes
}

// GeneratePrize builds one deterministic role prize.
func GeneratePrize(index int) types.Prize {
	if index < 0 {
		index = 0
	}

	return types.Prize{
		Name:        fmt.Sprintf("Prize %03d", index+1),
		Description: fmt.Sprintf("description %d", index+1),
		Type:        types.PrizeTypeRole,
		RoleID:      int64(1000 + index),
		RoleTime:    time.Duration(index+1) * time.Second,
		Message:     "congrats",
		Odds:        uint32((index % 5) + 2),
	}
}

// stubRandom replays values in order, failing the test when they run out.
func stubRandom(values ...int) (func(int) (int, error), *[]int) {
	seen := []int{}
	return func(max int) (int, error) {
		seen = append(seen, max)
		if len(values) == 0 {
			return 0, fmt.Errorf("no more stub values")
		}
		v := values[0]
		values = values[1:]
		return v, nil
	}, &seen
}
