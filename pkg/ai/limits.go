package ai

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Search limits of the minimax strategies
type Limits struct {
	Depth    int  `json:"maxDepth"`
	Ordering bool `json:"ordering"`
}

const (
	DefaultDepthLimit int = 3
)

func (l Limits) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(l)
	return builder.String()
}

func DefaultLimits() *Limits {
	return &Limits{
		Depth:    DefaultDepthLimit,
		Ordering: true,
	}
}

// Set the maximum depth of the search, in plies
func (l *Limits) SetDepth(depth int) *Limits {
	l.Depth = depth
	return l
}

// Enable the heuristic move ordering of the alpha-beta search
func (l *Limits) SetOrdering(ordering bool) *Limits {
	l.Ordering = ordering
	return l
}

func (l Limits) Validate() error {
	if l.Depth <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "maxDepth must be positive, got %d", l.Depth)
	}
	return nil
}
