// Package eval implements the static evaluation used by the depth-limited searchers.
//
// Every term is computed from cross's point of view and negated for circle,
// so Score(p, x) == -Score(p, o) holds for any position.
package eval

import (
	"math/bits"

	"github.com/IlikeChooros/go-uttt/pkg/uttt"
)

// Value of a won game, dominates every other term
const WinScore = 10000

// Positional weight of each sub-board on the meta board: center 3, corners 2, edges 1
var SubBoardWeights = [9]int{
	2, 1, 2,
	1, 3, 1,
	2, 1, 2,
}

// Weights of the heuristic terms, highest first
type Weights struct {
	SubBoardWin int // per won sub-board, times its positional weight
	MetaThreat  int // two won sub-boards in a line, the third still open
	Fork        int // two or more threats inside one sub-board
	Threat      int // two in a row inside a sub-board, the third cell empty
	CenterCell  int // center cell of an unresolved sub-board
}

func DefaultWeights() Weights {
	return Weights{
		SubBoardWin: 100,
		MetaThreat:  150,
		Fork:        25,
		Threat:      10,
		CenterCell:  5,
	}
}

// Maps a position to a score from the perspective of given side
type Evaluator interface {
	Score(pos *uttt.Position, perspective uttt.TurnType) int
}

type Heuristic struct {
	Weights Weights
}

func NewHeuristic(w Weights) *Heuristic {
	return &Heuristic{Weights: w}
}

var _default = NewHeuristic(DefaultWeights())

// Default evaluator, using DefaultWeights
func Default() Evaluator {
	return _default
}

// Score with the default weights
func Score(pos *uttt.Position, perspective uttt.TurnType) int {
	return _default.Score(pos, perspective)
}

func (h *Heuristic) Score(pos *uttt.Position, perspective uttt.TurnType) int {
	score := h.crossScore(pos)
	if perspective == uttt.CircleTurn {
		return -score
	}
	return score
}

func (h *Heuristic) crossScore(pos *uttt.Position) int {
	switch pos.Termination() {
	case uttt.TerminationCrossWon:
		return WinScore
	case uttt.TerminationCircleWon:
		return -WinScore
	case uttt.TerminationDraw:
		return 0
	}

	w := h.Weights
	meta := pos.BigPositionState()
	score := 0

	for i, state := range meta {
		switch state {
		case uttt.PositionCrossWon:
			score += w.SubBoardWin * SubBoardWeights[i]
		case uttt.PositionCircleWon:
			score -= w.SubBoardWin * SubBoardWeights[i]
		case uttt.PositionUnResolved:
			score += h.subBoardScore(pos, i)
		}
	}

	for _, line := range uttt.Lines() {
		score += w.MetaThreat * metaThreat(meta, line)
	}
	return score
}

// +1 if cross holds two sub-boards of the line and the third is open, -1 for circle
func metaThreat(meta [9]uttt.PositionState, line [3]int) int {
	var cross, circle, open int
	for _, i := range line {
		switch meta[i] {
		case uttt.PositionCrossWon:
			cross++
		case uttt.PositionCircleWon:
			circle++
		case uttt.PositionUnResolved:
			open++
		}
	}
	switch {
	case cross == 2 && open == 1:
		return 1
	case circle == 2 && open == 1:
		return -1
	}
	return 0
}

// Single board heuristic of an unresolved sub-board
func (h *Heuristic) subBoardScore(pos *uttt.Position, bigIndex int) int {
	w := h.Weights
	crossbb := pos.Bitboard(uttt.CrossTurn, bigIndex)
	circlebb := pos.Bitboard(uttt.CircleTurn, bigIndex)

	crossThreats := Threats(crossbb, circlebb)
	circleThreats := Threats(circlebb, crossbb)
	score := w.Threat * (crossThreats - circleThreats)
	if crossThreats >= 2 {
		score += w.Fork
	}
	if circleThreats >= 2 {
		score -= w.Fork
	}

	switch pos.Cell(bigIndex, 4) {
	case uttt.PieceCross:
		score += w.CenterCell
	case uttt.PieceCircle:
		score -= w.CenterCell
	}
	return score
}

// Number of win-lines with two of 'our' cells and the third one empty
func Threats(our, enemy uint16) int {
	n := 0
	for _, pattern := range uttt.WinningPatterns {
		if enemy&pattern == 0 && bits.OnesCount16(our&pattern) == 2 {
			n++
		}
	}
	return n
}
