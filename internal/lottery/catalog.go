package lottery

import (
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
)

// Catalog is the ordered list of drawable prizes plus the optional
// consolation prize. It is never modified after construction.
type Catalog struct {
	prizes      []types.Prize
	consolation *types.Prize
}

// NewCatalog copies prizes so later changes to the slice do not leak in.
// consolation may be nil.
func NewCatalog(prizes []types.Prize, consolation *types.Prize) *Catalog {
	c := &Catalog{prizes: make([]types.Prize, len(prizes))}
	copy(c.prizes, prizes)
	if consolation != nil {
		cp := *consolation
		c.consolation = &cp
	}
	return c
}

// Prizes returns the drawable prizes in evaluation order.
func (c *Catalog) Prizes() []types.Prize {
	out := make([]types.Prize, len(c.prizes))
	copy(out, c.prizes)
	return out
}

func (c *Catalog) Len() int {
	return len(c.prizes)
}

func (c *Catalog) Consolation() (types.Prize, bool) {
	if c.consolation == nil {
		return types.Prize{}, false
	}
	return *c.consolation, true
}

// Names lists every prize name including the consolation prize.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.prizes)+1)
	for _, p := range c.prizes {
		names = append(names, p.Name)
	}
	if c.consolation != nil {
		names = append(names, c.consolation.Name)
	}
	return names
}

// Lookup finds a prize by exact name. The consolation prize is checked first.
func (c *Catalog) Lookup(name string) (types.Prize, bool) {
	if c.consolation != nil && c.consolation.Name == name {
		return *c.consolation, true
	}
	for _, p := range c.prizes {
		logger.Debug("Checking prize", zap.String("candidate", p.Name), zap.String("wanted", name))
		if p.Name == name {
			return p, true
		}
	}
	logger.Debug("Prize not found", zap.String("name", name))
	return types.Prize{}, false
}
