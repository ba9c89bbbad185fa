package ai

import (
	"math/rand"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/eval"
	"github.com/IlikeChooros/go-uttt/pkg/uttt"
)

// Picks a winning move when there is one, otherwise any legal move at random.
// Game winning moves take precedence over sub-board winning ones.
type RandomHeuristic struct {
	rand  *rand.Rand
	stats SearchStats
}

// Create a random strategy using given generator, if nil a new one is
// seeded with SeedGeneratorFn
func NewRandomHeuristic(r *rand.Rand) *RandomHeuristic {
	if r == nil {
		r = rand.New(rand.NewSource(SeedGeneratorFn()))
	}
	return &RandomHeuristic{rand: r}
}

func (h *RandomHeuristic) Name() string {
	return "random"
}

func (h *RandomHeuristic) LastSearch() SearchStats {
	return h.stats
}

func (h *RandomHeuristic) ChooseMove(pos *uttt.Position) (uttt.Move, error) {
	start := time.Now()
	moves := pos.GenerateMoves()
	if moves.Size() == 0 {
		return uttt.MoveIllegal, noLegalMove(pos)
	}

	var gameWins, boardWins []uttt.Move
	for _, m := range moves.Slice() {
		if pos.WinsGame(m) {
			gameWins = append(gameWins, m)
		} else if pos.WinsSubBoard(m) {
			boardWins = append(boardWins, m)
		}
	}

	candidates := moves.Slice()
	switch {
	case len(gameWins) > 0:
		candidates = gameWins
	case len(boardWins) > 0:
		candidates = boardWins
	}

	move := candidates[h.rand.Intn(len(candidates))]
	child := pos.Child(move)
	h.stats = SearchStats{
		Nodes:    uint64(moves.Size()),
		Score:    eval.Score(&child, pos.Turn()),
		Depth:    1,
		Duration: time.Since(start),
	}
	return move, nil
}
