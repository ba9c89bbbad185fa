package ai

import (
	"fmt"
	"math"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/eval"
	"github.com/IlikeChooros/go-uttt/pkg/uttt"
)

// Depth-limited minimax without pruning. On equal scores the first move
// in generation order is kept, so the choice is deterministic.
type Minimax struct {
	limits    Limits
	evaluator eval.Evaluator
	stats     SearchStats
}

// Create a minimax searcher, nil limits and evaluator fall back to the defaults
func NewMinimax(limits *Limits, evaluator eval.Evaluator) (*Minimax, error) {
	if limits == nil {
		limits = DefaultLimits()
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if evaluator == nil {
		evaluator = eval.Default()
	}
	return &Minimax{limits: *limits, evaluator: evaluator}, nil
}

func (m *Minimax) Name() string {
	return fmt.Sprintf("minimax:maxDepth=%d", m.limits.Depth)
}

func (m *Minimax) Limits() Limits {
	return m.limits
}

func (m *Minimax) LastSearch() SearchStats {
	return m.stats
}

func (m *Minimax) ChooseMove(pos *uttt.Position) (uttt.Move, error) {
	start := time.Now()
	moves := pos.GenerateMoves()
	if moves.Size() == 0 {
		return uttt.MoveIllegal, noLegalMove(pos)
	}

	mover := pos.Turn()
	depth := clampDepth(m.limits.Depth, pos)
	m.stats = SearchStats{Depth: depth}

	best, bestScore := uttt.MoveIllegal, math.MinInt
	for _, move := range moves.Slice() {
		child := pos.Child(move)
		score := m.minimax(&child, depth-1, mover)
		if score > bestScore {
			best, bestScore = move, score
		}
	}

	m.stats.Score = bestScore
	m.stats.Duration = time.Since(start)
	return best, nil
}

// Value of the position for the 'mover', maximizing on his plies
func (m *Minimax) minimax(pos *uttt.Position, depth int, mover uttt.TurnType) int {
	m.stats.Nodes++
	if depth <= 0 || pos.IsTerminated() {
		return m.evaluator.Score(pos, mover)
	}

	moves := pos.GenerateMoves()
	if pos.Turn() == mover {
		value := math.MinInt
		for _, move := range moves.Slice() {
			child := pos.Child(move)
			value = max(value, m.minimax(&child, depth-1, mover))
		}
		return value
	}

	value := math.MaxInt
	for _, move := range moves.Slice() {
		child := pos.Child(move)
		value = min(value, m.minimax(&child, depth-1, mover))
	}
	return value
}
