package lottery

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

var (
	ErrNilCatalog   = errors.New("nil catalog")
	errInvalidRange = errors.New("invalid random range")
)

// Roll is one prize evaluation made during a draw.
type Roll struct {
	Prize string `json:"prize"`
	Odds  uint32 `json:"odds"`
	Value int    `json:"value"`
}

// DrawResult is the outcome of a single draw.
type DrawResult struct {
	Prize       *types.Prize // nil when nothing was won
	Consolation bool
	Rolls       []Roll
}

// Won reports whether any prize (consolation included) was selected.
func (r *DrawResult) Won() bool {
	return r != nil && r.Prize != nil
}

var drawRandomInt = secureRandomInt

// Draw walks the catalog in order. Every prize draws an integer in
// [0, odds) and the first zero wins. When nothing hits, the consolation
// prize is returned if one is configured.
func Draw(c *Catalog, username string) (*DrawResult, error) {
	if c == nil {
		return nil, ErrNilCatalog
	}

	result := &DrawResult{Rolls: make([]Roll, 0, len(c.prizes))}
	for i := range c.prizes {
		p := c.prizes[i]
		n, err := drawRandomInt(int(p.Odds))
		if err != nil {
			return nil, fmt.Errorf("failed to roll for %q: %w", p.Name, err)
		}
		result.Rolls = append(result.Rolls, Roll{Prize: p.Name, Odds: p.Odds, Value: n})
		logger.Debug(fmt.Sprintf("%s has spun a %d for %s. Needed a 0.", username, n, p.Name))
		if n == 0 {
			result.Prize = &p
			return result, nil
		}
	}

	if cons, ok := c.Consolation(); ok {
		result.Prize = &cons
		result.Consolation = true
		logger.Debug("No prize hit, using consolation", zap.String("user", username))
	}
	return result, nil
}

func secureRandomInt(max int) (int, error) {
	if max <= 0 {
		return 0, errInvalidRange
	}

	n, err := crand.Int(crand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
