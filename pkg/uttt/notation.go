package uttt

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// string notation for the ultimate tic tac toe position,
// much like the FEN representation of a chessboard:
//
//	X/X/X/X/X/X/X/X/X <turn> <big index>
//
// where `X` is one sub-board, its 9 cells written in order, 'x' and 'o'
// for the pieces and a digit for a run of empty cells. For example
//
//	o | x | x
//	---------
//	x | o |
//	---------
//	o |   |
//
// is written as oxxxo1o2
//
// <turn> - either 'o' or 'x'
//
// <big index> - the sub-board the side to move must play in, a digit 0-8,
// or - if the player can move anywhere
//
// Examples:
//
//	9/9/9/9/9/9/9/9/9 x -
//	9/9/9/7x1/4xo3/8x/9/4o4/o8 x 0
func (p *Position) Notation() string {
	builder := strings.Builder{}

	for rowIndex, row := range p.position {
		counter := 0
		for _, piece := range row {
			if piece == PieceNone {
				counter++
				continue
			}
			if counter > 0 {
				builder.WriteString(strconv.Itoa(counter))
				counter = 0
			}
			builder.WriteString(piece.String())
		}

		if counter > 0 {
			builder.WriteString(strconv.Itoa(counter))
		}
		if rowIndex != 8 {
			builder.WriteByte('/')
		}
	}

	builder.WriteByte(' ')
	builder.WriteRune(turnToChar(p.turn))

	builder.WriteByte(' ')
	if p.nextBigIndex == IndexNone {
		builder.WriteByte('-')
	} else {
		builder.WriteByte('0' + byte(p.nextBigIndex))
	}

	return builder.String()
}

// Create the position from given notation string, sub-board states and the game
// result are recomputed from the pieces. "startpos" is accepted as an alias
// of the starting position.
func FromNotation(notation string) (Position, error) {
	if notation == "startpos" {
		notation = StartingPosition
	}

	pos := NewPosition()
	fields := strings.Fields(notation)
	if len(fields) != 3 {
		return Position{}, errors.Wrapf(ErrInvalidNotation,
			"expected 3 space separated fields, got %d in %q", len(fields), notation)
	}

	squares := strings.Split(fields[0], "/")
	if len(squares) != 9 {
		return Position{}, errors.Wrapf(ErrInvalidNotation,
			"expected 9 sub-boards, got %d in %q", len(squares), notation)
	}

	pieces := 0
	for bigIndex, square := range squares {
		smallIndex := 0
		for i, v := range square {
			switch {
			case v == 'x' || v == 'o':
				if smallIndex >= 9 {
					return Position{}, errors.Wrapf(ErrInvalidNotation,
						"too many cells in sub-board %d", bigIndex)
				}
				pos.position[bigIndex][smallIndex] = PieceFromRune(v)
				smallIndex++
				pieces++
			case '1' <= v && v <= '9':
				smallIndex += int(v - '0')
			default:
				return Position{}, errors.Wrapf(ErrInvalidNotation,
					"unexpected token %q at index %d of sub-board %d", v, i, bigIndex)
			}
		}
		if smallIndex != 9 {
			return Position{}, errors.Wrapf(ErrInvalidNotation,
				"sub-board %d describes %d cells, expected 9", bigIndex, smallIndex)
		}
	}

	switch fields[1] {
	case "x":
		pos.turn = CrossTurn
	case "o":
		pos.turn = CircleTurn
	default:
		return Position{}, errors.Wrapf(ErrInvalidNotation, "invalid side %q", fields[1])
	}

	switch v := fields[2]; {
	case v == "-":
		pos.nextBigIndex = IndexNone
	case len(v) == 1 && v[0] >= '0' && v[0] <= '8':
		pos.nextBigIndex = int(v[0] - '0')
	default:
		return Position{}, errors.Wrapf(ErrInvalidNotation, "invalid big index %q, expected a digit 0-8 or -", v)
	}

	pos.ply = pieces
	pos.setupBoardState()
	return pos, nil
}
