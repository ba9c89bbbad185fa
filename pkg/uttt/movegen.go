package uttt

import (
	"math/bits"
)

// Generate all legal moves in given position, ordered by sub-board index,
// then by cell index. Empty iff the game is over.
func (p *Position) GenerateMoves() MoveList {
	movelist := MoveList{}
	if p.termination != TerminationNone {
		return movelist
	}

	if p.nextBigIndex == IndexNone {
		for bigIndex := 0; bigIndex < 9; bigIndex++ {
			p.appendSubBoard(&movelist, bigIndex)
		}
	} else {
		p.appendSubBoard(&movelist, p.nextBigIndex)
	}

	return movelist
}

// Legal moves as a slice, see GenerateMoves for the order
func LegalMoves(p *Position) []Move {
	moves := p.GenerateMoves()
	return append([]Move(nil), moves.Slice()...)
}

func (p *Position) appendSubBoard(movelist *MoveList, bigIndex int) {
	if p.bigPositionState[bigIndex] != PositionUnResolved {
		return
	}

	// Valid, because these 2 bitboards are mutually exclusive
	free := _fullBitboard ^ (p.bitboards[0][bigIndex] | p.bitboards[1][bigIndex])
	for free != 0 {
		movelist.Append(bigIndex, bits.TrailingZeros16(free))
		free &= free - 1
	}
}
