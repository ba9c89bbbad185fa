package uttt

import (
	"github.com/pkg/errors"
)

const (
	StartingPosition string = "9/9/9/9/9/9/9/9/9 x -"
)

// Main position struct. It holds no pointers, so a plain assignment
// produces a fully independent copy of the game state.
type Position struct {
	position         BoardType        // 2d array of the pieces [bigIndex][smallIndex]
	bitboards        [2][9]uint16     // [side][bigIndex], side index 1 is cross
	bigPositionState [9]PositionState // state of each sub-board, the meta board
	turn             TurnType
	nextBigIndex     int // active sub-board, IndexNone if the player can choose
	termination      Termination
	ply              int
	lastMove         Move
}

// Create an empty position, cross to move, no active sub-board
func NewPosition() Position {
	return Position{
		turn:         CrossTurn,
		nextBigIndex: IndexNone,
		lastMove:     MoveIllegal,
	}
}

func sideIndex(t TurnType) int {
	if t == CrossTurn {
		return 1
	}
	return 0
}

// Getters
func (p *Position) Position() BoardType {
	return p.position
}

func (p *Position) Turn() TurnType {
	return p.turn
}

// Active sub-board, IndexNone if the side to move may choose any undecided one
func (p *Position) BigIndex() int {
	return p.nextBigIndex
}

// The sub-board the next move must land in, if the player is constrained
func (p *Position) ActiveSubBoard() (int, bool) {
	if p.nextBigIndex == IndexNone {
		return 0, false
	}
	return p.nextBigIndex, true
}

// Get the 'big position state', the outcome of every sub-board
func (p *Position) BigPositionState() [9]PositionState {
	return p.bigPositionState
}

func (p *Position) SubBoardState(bigIndex int) PositionState {
	return p.bigPositionState[bigIndex]
}

func (p *Position) Cell(bigIndex, smallIndex int) Piece {
	return p.position[bigIndex][smallIndex]
}

// Cells of the sub-board occupied by given side, as a 9-bit bitboard
func (p *Position) Bitboard(side TurnType, bigIndex int) uint16 {
	return p.bitboards[sideIndex(side)][bigIndex]
}

// Number of moves played so far
func (p *Position) Ply() int {
	return p.ply
}

// Last move played, MoveIllegal at the start of the game
func (p *Position) LastMove() Move {
	return p.lastMove
}

// Check if given move is legal
func (p *Position) IsLegal(move Move) bool {
	if !move.Valid() || p.termination != TerminationNone {
		return false
	}

	bi, si := move.BigIndex(), move.SmallIndex()
	if p.nextBigIndex != IndexNone && bi != p.nextBigIndex {
		return false
	}

	// Non-empty square or tic tac toe board is decided
	return p.position[bi][si] == PieceNone &&
		p.bigPositionState[bi] == PositionUnResolved
}

// Verifies legality of given move, then returns the position after it.
// The receiver is left untouched, on error the zero Position is returned.
func (p Position) Apply(move Move) (Position, error) {
	if !p.IsLegal(move) {
		moves := p.GenerateMoves()
		return Position{}, errors.Wrapf(ErrIllegalMove, "move %s in %q, possible moves=[%s]",
			move.String(), p.Notation(), moves.String())
	}
	p.makeMove(move)
	return p, nil
}

// Package level form of Position.Apply
func ApplyMove(p Position, move Move) (Position, error) {
	return p.Apply(move)
}

// Same as Apply, but the move must come from GenerateMoves, used by the searchers
// where legality is guaranteed by construction
func (p Position) Child(move Move) Position {
	p.makeMove(move)
	return p
}

// Put current piece on the position [bigIndex][smallIndex], update the sub-board,
// the meta board, the active sub-board and the side to move
func (p *Position) makeMove(move Move) {
	bigIndex, smallIndex := move.BigIndex(), move.SmallIndex()
	index := sideIndex(p.turn)

	p.position[bigIndex][smallIndex] = p.turn.Piece()
	p.bitboards[index][bigIndex] |= 1 << smallIndex

	// Update Big board state, by checking if the smaller board is now decided
	p.bigPositionState[bigIndex] = _checkSquareTermination(
		p.bitboards[1][bigIndex], p.bitboards[0][bigIndex],
	)

	// If opponent's move would be on a decided board, allow every board
	p.nextBigIndex = smallIndex
	if p.bigPositionState[smallIndex] != PositionUnResolved {
		p.nextBigIndex = IndexNone
	}

	p.ply++
	p.lastMove = move
	p.checkTerminationPattern()
	if p.termination == TerminationNone {
		p.turn = !p.turn
	}
}

// Would this (legal) move decide its sub-board in favour of the side to move
func (p *Position) WinsSubBoard(move Move) bool {
	bb := p.bitboards[sideIndex(p.turn)][move.BigIndex()] | 1<<move.SmallIndex()
	for _, pattern := range WinningPatterns {
		if bb&pattern == pattern {
			return true
		}
	}
	return false
}

// Would this move win the whole game for the side to move
func (p *Position) WinsGame(move Move) bool {
	if !p.WinsSubBoard(move) {
		return false
	}
	won := p.turn.WonState()
	meta := p.bigPositionState
	meta[move.BigIndex()] = won
	for _, line := range _patterns {
		if meta[line[0]] == won && meta[line[1]] == won && meta[line[2]] == won {
			return true
		}
	}
	return false
}

// Recompute bitboards, sub-board states and the termination from the raw board,
// used after loading a position
func (p *Position) setupBoardState() {
	for i, square := range p.position {
		p.bitboards[1][i], p.bitboards[0][i] = toBitboards(square)
		p.bigPositionState[i] = _checkSquareTermination(p.bitboards[1][i], p.bitboards[0][i])
	}

	// Don't allow playing on a decided board
	if p.nextBigIndex != IndexNone && p.bigPositionState[p.nextBigIndex] != PositionUnResolved {
		p.nextBigIndex = IndexNone
	}

	p.checkTerminationPattern()
}

// Convert given 'small square' into (cross bitboard, circle bitboard)
func toBitboards(square [9]Piece) (crossbb, circlebb uint16) {
	for i, v := range square {
		switch v {
		case PieceCross:
			crossbb |= 1 << i
		case PieceCircle:
			circlebb |= 1 << i
		}
	}
	return crossbb, circlebb
}
