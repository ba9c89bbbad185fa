package uttt

// Type defines for the position
type Piece int8
type TurnType bool
type BoardType [9][9]Piece
type PositionState uint8

// Enum for the piece type
const (
	PieceNone Piece = iota
	PieceCircle
	PieceCross
)

// Enum for the sub-board state
const (
	PositionUnResolved PositionState = iota
	PositionDraw
	PositionCircleWon
	PositionCrossWon
)

// Enum for the turns
const (
	CircleTurn TurnType = false
	CrossTurn  TurnType = true
)

// Get the other side
func (t TurnType) Opponent() TurnType {
	return !t
}

// Piece placed by this side
func (t TurnType) Piece() Piece {
	if t == CrossTurn {
		return PieceCross
	}
	return PieceCircle
}

// Sub-board state meaning 'won by this side'
func (t TurnType) WonState() PositionState {
	if t == CrossTurn {
		return PositionCrossWon
	}
	return PositionCircleWon
}

func (t TurnType) String() string {
	return string(turnToChar(t))
}

func turnToChar(turn TurnType) rune {
	if turn == CircleTurn {
		return 'o'
	}
	return 'x'
}

// Create piece from a rune
func PieceFromRune(square rune) Piece {
	switch square {
	case 'x':
		return PieceCross
	case 'o':
		return PieceCircle
	default:
		return PieceNone
	}
}

func (p Piece) String() string {
	switch p {
	case PieceCross:
		return "x"
	case PieceCircle:
		return "o"
	default:
		return "."
	}
}

// Whether the sub-board can still accept moves
func (s PositionState) Resolved() bool {
	return s != PositionUnResolved
}

func (s PositionState) String() string {
	switch s {
	case PositionDraw:
		return "draw"
	case PositionCircleWon:
		return "o"
	case PositionCrossWon:
		return "x"
	default:
		return "-"
	}
}
