package uttt

import (
	"math/bits"

	"github.com/pkg/errors"
)

type Termination int

const (
	TerminationNone      Termination = 0
	TerminationCircleWon Termination = 1
	TerminationCrossWon  Termination = 2
	TerminationDraw      Termination = 4
)

func (t Termination) String() string {
	switch t {
	case TerminationCircleWon:
		return "o"
	case TerminationCrossWon:
		return "x"
	case TerminationDraw:
		return "draw"
	default:
		return "none"
	}
}

const _fullBitboard uint16 = 0b111111111

// horizontal, vertical and diagonal patterns as bitboards
var WinningPatterns = [8]uint16{
	0b111000000, 0b000111000, 0b000000111,
	0b100100100, 0b010010010, 0b001001001,
	0b100010001, 0b001010100,
}

var _patterns = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Index triples of the 8 win-lines of a 3x3 board
func Lines() [8][3]int {
	return _patterns
}

// Get the termination reason, TerminationNone while the game is in progress
func (p *Position) Termination() Termination {
	return p.termination
}

// Check if the whole board is terminated
func (p *Position) IsTerminated() bool {
	return p.termination != TerminationNone
}

// Winner of the game, ok is false for a draw or a game in progress
func (p *Position) Winner() (winner TurnType, ok bool) {
	switch p.termination {
	case TerminationCrossWon:
		return CrossTurn, true
	case TerminationCircleWon:
		return CircleTurn, true
	}
	return CrossTurn, false
}

// Check if given 'small' square is terminated
func _checkSquareTermination(crossbb, circlebb uint16) PositionState {
	for i := 0; i < 8; i++ {
		if crossbb&WinningPatterns[i] == WinningPatterns[i] {
			return PositionCrossWon
		}
		if circlebb&WinningPatterns[i] == WinningPatterns[i] {
			return PositionCircleWon
		}
	}

	// Fully filled, without a line
	if (crossbb | circlebb) == _fullBitboard {
		return PositionDraw
	}
	return PositionUnResolved
}

// Evaluate the meta board, assuming 'bigPositionState' is up to date
func (p *Position) checkTerminationPattern() {
	for i := 0; i < 8; i++ {
		// Draws never count toward a line
		if v := p.bigPositionState[_patterns[i][0]]; v == p.bigPositionState[_patterns[i][1]] &&
			p.bigPositionState[_patterns[i][1]] == p.bigPositionState[_patterns[i][2]] &&
			v != PositionUnResolved && v != PositionDraw {

			if v == PositionCircleWon {
				p.termination = TerminationCircleWon
			} else {
				p.termination = TerminationCrossWon
			}
			return
		}
	}

	// No line and nothing left to play in
	if _isFilled(p.bigPositionState[:], PositionUnResolved) {
		p.termination = TerminationDraw
	} else {
		p.termination = TerminationNone
	}
}

// Check if given slice is filled with items other than 'none'
func _isFilled[T comparable](arr []T, none T) bool {
	for _, v := range arr {
		if v == none {
			return false
		}
	}
	return true
}

// Number of empty cells in the sub-boards that still accept moves,
// an upper bound on the plies left in the game
func (p *Position) EmptyCells() int {
	if p.IsTerminated() {
		return 0
	}
	n := 0
	for i := range 9 {
		if p.bigPositionState[i] == PositionUnResolved {
			n += 9 - bits.OnesCount16(p.bitboards[0][i]|p.bitboards[1][i])
		}
	}
	return n
}

func (t Termination) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Termination) UnmarshalText(text []byte) error {
	switch string(text) {
	case "o":
		*t = TerminationCircleWon
	case "x":
		*t = TerminationCrossWon
	case "draw":
		*t = TerminationDraw
	case "none":
		*t = TerminationNone
	default:
		return errors.Wrapf(ErrInvalidNotation, "termination %q", text)
	}
	return nil
}
