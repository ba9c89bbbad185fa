package uttt

import (
	"strings"

	"github.com/pkg/errors"
)

// Move packs the sub-board (big) index in the high nibble and the cell (small) index in the low one
type Move uint8

const (
	_moveBigIndexMask   = 0b11110000
	_moveSmallIndexMask = 0b1111
)

// Enum for the moves
const (
	MoveIllegal Move = 255
	IndexNone   int  = 15 // same as big/small index mask
)

type MoveList struct {
	moves [9 * 9]Move
	size  uint8
}

func ToMoveList(moves []Move) MoveList {
	mv := MoveList{}
	copy(mv.moves[:], moves)
	mv.size = uint8(len(moves))
	return mv
}

// Create a move, based on big and small indexes
func NewMove(bigIndex, smallIndex int) Move {
	return Move((smallIndex & _moveSmallIndexMask) | ((bigIndex << 4) & _moveBigIndexMask))
}

// Reset the movelist, simply sets the size to 0
func (ml *MoveList) Clear() {
	ml.size = 0
}

// Get the actual slice of valid moves
func (ml *MoveList) Slice() []Move {
	return ml.moves[0:ml.size]
}

func (ml *MoveList) Size() int {
	return int(ml.size)
}

// Appends a new move to the list of moves
func (ml *MoveList) Append(bigIndex, smallIndex int) {
	ml.moves[ml.size] = Move((smallIndex & _moveSmallIndexMask) | ((bigIndex << 4) & _moveBigIndexMask))
	ml.size++
}

func (ml *MoveList) Contains(move Move) bool {
	for _, m := range ml.Slice() {
		if m == move {
			return true
		}
	}
	return false
}

// Convert movelist into a string, uses move notation with space seperation
func (ml *MoveList) String() string {
	if ml.size == 0 {
		return "empty"
	}

	strMoves := make([]string, ml.size)
	for i, m := range ml.Slice() {
		strMoves[i] = m.String()
	}
	return strings.Join(strMoves, " ")
}

// Get the sub-board index of a move
func (m Move) BigIndex() int {
	return int(m&_moveBigIndexMask) >> 4
}

// Get the cell index inside the sub-board
func (m Move) SmallIndex() int {
	return int(m & _moveSmallIndexMask)
}

// Both indexes are in 0..8
func (m Move) Valid() bool {
	return m.BigIndex() < 9 && m.SmallIndex() < 9
}

// Get string representation of the move, will contain
// a/b/c 1/2/3 as coordinates, upper case for the sub-board,
// lower case for the cell, for example big index = 7,
// small index = 2 -> B1c3
//
//	    A   B   C
//	  0 | 1 | 2   3
//	 -----------
//	  3 | 4 | 5   2
//	 -----------
//	  6 | 7 | 8   1
func (m Move) String() string {
	if !m.Valid() {
		return "(none)"
	}
	si, bi := m.SmallIndex(), m.BigIndex()

	builder := strings.Builder{}
	builder.WriteByte('A' + byte(bi%3))
	builder.WriteByte('3' - byte(bi/3))
	builder.WriteByte('a' + byte(si%3))
	builder.WriteByte('3' - byte(si/3))
	return builder.String()
}

// Convert given move notation (should be done with Move.String()) to Move
func MoveFromString(str string) Move {
	if str == "(none)" || len(str) != 4 {
		return MoveIllegal
	}

	_cmp := func(i int, letter byte) bool {
		return (str[i] >= letter && str[i] <= letter+2) &&
			(str[i+1] >= '1' && str[i+1] <= '3')
	}

	if _cmp(0, 'A') && _cmp(2, 'a') {
		return NewMove(
			int((str[0]-'A')+('3'-str[1])*3),
			int((str[2]-'a')+('3'-str[3])*3))
	}

	return MoveIllegal
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	*m = MoveFromString(string(text))
	if !m.Valid() {
		return errors.Wrapf(ErrInvalidNotation, "move %q", text)
	}
	return nil
}
