package ai

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/eval"
	"github.com/IlikeChooros/go-uttt/pkg/uttt"
)

// Bounds of the search window, outside of any evaluator score
const (
	_inf = math.MaxInt32
)

// Minimax with alpha-beta pruning. Chooses a move of the same minimax value
// as Minimax at equal depth, on ties it may pick a different move, since
// pruning skips equally scored siblings.
type AlphaBeta struct {
	limits    Limits
	evaluator eval.Evaluator
	stats     SearchStats
}

// Create an alpha-beta searcher, nil limits and evaluator fall back to the defaults
func NewAlphaBeta(limits *Limits, evaluator eval.Evaluator) (*AlphaBeta, error) {
	if limits == nil {
		limits = DefaultLimits()
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if evaluator == nil {
		evaluator = eval.Default()
	}
	return &AlphaBeta{limits: *limits, evaluator: evaluator}, nil
}

func (a *AlphaBeta) Name() string {
	if !a.limits.Ordering {
		return fmt.Sprintf("alphabeta:maxDepth=%d,ordering=false", a.limits.Depth)
	}
	return fmt.Sprintf("alphabeta:maxDepth=%d", a.limits.Depth)
}

func (a *AlphaBeta) Limits() Limits {
	return a.limits
}

func (a *AlphaBeta) LastSearch() SearchStats {
	return a.stats
}

func (a *AlphaBeta) ChooseMove(pos *uttt.Position) (uttt.Move, error) {
	start := time.Now()
	moves := pos.GenerateMoves()
	if moves.Size() == 0 {
		return uttt.MoveIllegal, noLegalMove(pos)
	}

	mover := pos.Turn()
	depth := clampDepth(a.limits.Depth, pos)
	a.stats = SearchStats{Depth: depth}

	// Root children share the improving alpha, a child failing low returns
	// at most alpha and can't replace the current best
	alpha := -_inf
	best, bestScore := uttt.MoveIllegal, math.MinInt
	for _, move := range a.order(pos, &moves) {
		child := pos.Child(move)
		score := a.alphaBeta(&child, depth-1, alpha, _inf, mover)
		if score > bestScore {
			best, bestScore = move, score
		}
		alpha = max(alpha, bestScore)
	}

	a.stats.Score = bestScore
	a.stats.Duration = time.Since(start)
	return best, nil
}

// Fail-soft alpha-beta, value of the position for the 'mover'
func (a *AlphaBeta) alphaBeta(pos *uttt.Position, depth, alpha, beta int, mover uttt.TurnType) int {
	a.stats.Nodes++
	if depth <= 0 || pos.IsTerminated() {
		return a.evaluator.Score(pos, mover)
	}

	moves := pos.GenerateMoves()
	if pos.Turn() == mover {
		value := math.MinInt
		for _, move := range a.order(pos, &moves) {
			child := pos.Child(move)
			value = max(value, a.alphaBeta(&child, depth-1, alpha, beta, mover))
			alpha = max(alpha, value)
			if alpha >= beta {
				a.stats.Cutoffs++
				break
			}
		}
		return value
	}

	value := math.MaxInt
	for _, move := range a.order(pos, &moves) {
		child := pos.Child(move)
		value = min(value, a.alphaBeta(&child, depth-1, alpha, beta, mover))
		beta = min(beta, value)
		if alpha >= beta {
			a.stats.Cutoffs++
			break
		}
	}
	return value
}

// Stable ordering: game winning moves, then sub-board winning moves, then the rest.
// Only changes the search speed, never the value.
func (a *AlphaBeta) order(pos *uttt.Position, moves *uttt.MoveList) []uttt.Move {
	slice := moves.Slice()
	if !a.limits.Ordering {
		return slice
	}
	return OrderMoves(pos, slice)
}

// Sort the moves in place, by the priority of their immediate effect
func OrderMoves(pos *uttt.Position, moves []uttt.Move) []uttt.Move {
	priority := func(m uttt.Move) int {
		switch {
		case pos.WinsGame(m):
			return 0
		case pos.WinsSubBoard(m):
			return 1
		}
		return 2
	}
	sort.SliceStable(moves, func(i, j int) bool {
		return priority(moves[i]) < priority(moves[j])
	})
	return moves
}
