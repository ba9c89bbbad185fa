// Package bench plays series of games between move choosing strategies
// and aggregates the results, as a single match or as a round robin.
package bench

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/ai"
	"github.com/IlikeChooros/go-uttt/pkg/uttt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Plays the games one after another, on the calling goroutine.
// The strategies are not used concurrently, so a Runner must not be
// shared between goroutines running matches with the same strategy instances.
type Runner struct {
	ctx      context.Context
	listener ListenerLike
	logger   *slog.Logger
	position uttt.Position
}

func NewRunner() *Runner {
	return &Runner{
		ctx:      context.Background(),
		listener: DefaultListener{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		position: uttt.NewPosition(),
	}
}

// Cancelling the context stops the match before the next move
func (r *Runner) WithContext(ctx context.Context) *Runner {
	r.ctx = ctx
	return r
}

// Set the listeners of the match events, replacing the previous ones
func (r *Runner) WithListener(listeners ...ListenerLike) *Runner {
	switch len(listeners) {
	case 0:
		r.listener = DefaultListener{}
	case 1:
		r.listener = listeners[0]
	default:
		r.listener = NewArenaListener(listeners...)
	}
	if r.listener == nil {
		r.listener = DefaultListener{}
	}
	return r
}

func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Start every game from given position instead of the empty board
func (r *Runner) WithPosition(pos uttt.Position) *Runner {
	r.position = pos
	return r
}

// Play nGames between the strategies, A plays cross in even-indexed games and
// circle in odd-indexed ones. On error the games finished so far are returned
// along with it.
func (r *Runner) RunMatch(a, b ai.Strategy, nGames int) (MatchResult, error) {
	if nGames <= 0 {
		return MatchResult{}, errors.Wrapf(ai.ErrInvalidConfiguration, "number of games must be positive, got %d", nGames)
	}
	if a == nil || b == nil {
		return MatchResult{}, errors.Wrap(ai.ErrInvalidConfiguration, "missing strategy")
	}
	if r.position.IsTerminated() {
		return MatchResult{}, errors.Wrapf(ai.ErrInvalidConfiguration, "starting position %q is terminated", r.position.Notation())
	}

	result := MatchResult{
		NameA: a.Name(),
		NameB: b.Name(),
		Games: make([]GameRecord, 0, nGames),
	}
	logger := r.logger.With("a", result.NameA, "b", result.NameB)
	logger.Info("match started", "games", nGames)
	start := time.Now()

	for i := range nGames {
		record, stats, err := r.playGame(a, b, i, nGames, &result)
		if err != nil {
			logger.Warn("match stopped", "game", i, "error", err)
			return result, err
		}
		result.add(record, stats)

		logger.Debug("game finished",
			"game", i,
			"id", record.ID,
			"result", record.Result,
			"termination", record.Termination,
			"moves", len(record.Moves),
		)
		r.listener.OnFinishedGame(ListenerStats{
			GameID:        record.ID,
			GameIndex:     i,
			NGames:        nGames,
			FinishedGames: result.Total(),
			NameA:         result.NameA,
			NameB:         result.NameB,
			AIsCross:      record.AIsCross,
			Moves:         record.Moves,
			Termination:   record.Termination,
			Result:        record.Result,
			WinsA:         result.WinsA,
			WinsB:         result.WinsB,
			Draws:         result.Draws,
		})
	}

	logger.Info("match finished",
		"wins_a", result.WinsA,
		"wins_b", result.WinsB,
		"draws", result.Draws,
		"avg_score_a", result.AvgScoreA,
		"avg_score_b", result.AvgScoreB,
		"dur", time.Since(start).Round(time.Millisecond),
	)
	r.listener.OnFinishedMatch(result)
	return result, nil
}

func (r *Runner) playGame(a, b ai.Strategy, index, nGames int, tally *MatchResult) (GameRecord, [2]sideStats, error) {
	var stats [2]sideStats
	pos := r.position
	record := GameRecord{
		ID:       uuid.New(),
		Index:    index,
		AIsCross: index%2 == 0,
		Moves:    make([]uttt.Move, 0, pos.EmptyCells()),
	}
	record.AFirst = (pos.Turn() == uttt.CrossTurn) == record.AIsCross
	gameStart := time.Now()

	snapshot := func() ListenerStats {
		return ListenerStats{
			GameID:        record.ID,
			GameIndex:     index,
			NGames:        nGames,
			FinishedGames: tally.Total(),
			NameA:         tally.NameA,
			NameB:         tally.NameB,
			AIsCross:      record.AIsCross,
			Moves:         record.Moves,
			Notation:      pos.Notation(),
			Termination:   pos.Termination(),
			WinsA:         tally.WinsA,
			WinsB:         tally.WinsB,
			Draws:         tally.Draws,
		}
	}
	r.listener.OnGameStart(snapshot())

	for !pos.IsTerminated() {
		if err := r.ctx.Err(); err != nil {
			return record, stats, err
		}

		side, player := 0, a
		if (pos.Turn() == uttt.CrossTurn) != record.AIsCross {
			side, player = 1, b
		}

		start := time.Now()
		move, err := player.ChooseMove(&pos)
		elapsed := time.Since(start)
		if err != nil {
			return record, stats, errors.WithMessagef(err, "game %d, %s to move", index, player.Name())
		}
		next, err := pos.Apply(move)
		if err != nil {
			return record, stats, errors.WithMessagef(err, "game %d, %s chose an illegal move", index, player.Name())
		}
		pos = next

		stats[side].moves++
		stats[side].time += elapsed
		if reporter, ok := player.(ai.StatsReporter); ok {
			search := reporter.LastSearch()
			stats[side].nodes += search.Nodes
			stats[side].score += search.Score
		}
		record.Moves = append(record.Moves, move)
		r.listener.OnMoveMade(snapshot())
	}

	record.Termination = pos.Termination()
	record.Result = toAgentResult(record.Termination, record.AIsCross)
	record.Duration = time.Since(gameStart)
	return record, stats, nil
}

// Play every pair of strategies against each other, nGames per pair.
// Rows are sorted by wins, then by fewest losses, ties keep the input order.
func (r *Runner) RoundRobin(strategies []ai.Strategy, nGames int) (Standings, error) {
	if len(strategies) < 2 {
		return Standings{}, errors.Wrapf(ai.ErrInvalidConfiguration, "round robin needs at least 2 strategies, got %d", len(strategies))
	}

	standings := Standings{Rows: make([]StandingsRow, len(strategies))}
	for i, s := range strategies {
		if s == nil {
			return Standings{}, errors.Wrapf(ai.ErrInvalidConfiguration, "missing strategy %d", i)
		}
		standings.Rows[i].Name = s.Name()
	}

	for i := 0; i < len(strategies); i++ {
		for j := i + 1; j < len(strategies); j++ {
			result, err := r.RunMatch(strategies[i], strategies[j], nGames)
			if err != nil {
				return standings, errors.WithMessagef(err, "match %s vs %s", standings.Rows[i].Name, standings.Rows[j].Name)
			}
			standings.Matches = append(standings.Matches, result)

			a, b := &standings.Rows[i], &standings.Rows[j]
			a.Wins += result.WinsA
			a.Losses += result.WinsB
			b.Wins += result.WinsB
			b.Losses += result.WinsA
			a.Draws += result.Draws
			b.Draws += result.Draws
			a.Moves += result.MovesA
			b.Moves += result.MovesB
			a.time += result.timeA
			b.time += result.timeB
		}
	}

	for i := range standings.Rows {
		row := &standings.Rows[i]
		row.AvgDecisionTime = average(row.time, row.Moves)
	}
	sort.SliceStable(standings.Rows, func(i, j int) bool {
		x, y := standings.Rows[i], standings.Rows[j]
		if x.Wins != y.Wins {
			return x.Wins > y.Wins
		}
		return x.Losses < y.Losses
	})
	return standings, nil
}

// Play a match with the default runner
func RunMatch(a, b ai.Strategy, nGames int) (MatchResult, error) {
	return NewRunner().RunMatch(a, b, nGames)
}

// Play a round robin with the default runner
func RoundRobin(strategies []ai.Strategy, nGames int) (Standings, error) {
	return NewRunner().RoundRobin(strategies, nGames)
}

// The three strategies of increasing strength: the random heuristic seeded
// with given seed, minimax and alpha-beta with the default limits
func DefaultContenders(seed int64) []ai.Strategy {
	return []ai.Strategy{
		ai.NewRandomHeuristic(rand.New(rand.NewSource(seed))),
		must(ai.NewMinimax(ai.DefaultLimits(), nil)),
		must(ai.NewAlphaBeta(ai.DefaultLimits(), nil)),
	}
}

// Panics on err, for constructors that can't fail with valid arguments
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
