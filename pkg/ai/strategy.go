// Package ai implements the move choosing strategies: a randomized heuristic,
// a depth-limited minimax and minimax with alpha-beta pruning.
//
// Strategies keep per-search statistics and are not safe for concurrent use,
// give every game its own instance when playing in parallel.
package ai

import (
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/uttt"
	"github.com/pkg/errors"
)

var (
	// Strategy was asked for a move in a terminated position
	ErrNoLegalMove = errors.New("no legal move")
	// Invalid limits or strategy configuration string
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Anything that is able to pick a move in a position
type Strategy interface {
	// Canonical configuration string, New(Name()) builds an equivalent strategy
	Name() string
	// Choose a move for the side to move, the move is always legal
	ChooseMove(pos *uttt.Position) (uttt.Move, error)
}

// Statistics of the last ChooseMove call
type SearchStats struct {
	Nodes    uint64        `json:"nodes"`
	Cutoffs  uint64        `json:"cutoffs"`
	Score    int           `json:"score"` // value of the chosen move for the mover
	Depth    int           `json:"depth"` // effective depth, after clamping
	Duration time.Duration `json:"duration"`
}

// Implemented by strategies exposing their search statistics
type StatsReporter interface {
	LastSearch() SearchStats
}

// Implemented by the depth-limited searches
type Limited interface {
	Limits() Limits
}

func noLegalMove(pos *uttt.Position) error {
	return errors.Wrapf(ErrNoLegalMove, "position %q is terminated (%s)", pos.Notation(), pos.Termination())
}

// Search depth can't exceed the number of moves left in the game
func clampDepth(depth int, pos *uttt.Position) int {
	return max(1, min(depth, pos.EmptyCells()))
}
