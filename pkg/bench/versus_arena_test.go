package bench

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/ai"
	"github.com/IlikeChooros/go-uttt/pkg/eval"
	"github.com/IlikeChooros/go-uttt/pkg/uttt"
	"github.com/muesli/termenv"
)

// Counts the events and checks their consistency
type recordingListener struct {
	starts, moves, finished, matches int
	lastStats                        ListenerStats
	lastResult                       MatchResult
}

func (l *recordingListener) OnGameStart(stats ListenerStats) {
	l.starts++
	l.lastStats = stats
}

func (l *recordingListener) OnMoveMade(stats ListenerStats) {
	l.moves++
	l.lastStats = stats
}

func (l *recordingListener) OnFinishedGame(stats ListenerStats) {
	l.finished++
	l.lastStats = stats
}

func (l *recordingListener) OnFinishedMatch(result MatchResult) {
	l.matches++
	l.lastResult = result
}

// Remembers the side it was asked to play for in every game
type sideRecorder struct {
	ai.Strategy
	turns []uttt.TurnType
}

func (s *sideRecorder) ChooseMove(pos *uttt.Position) (uttt.Move, error) {
	s.turns = append(s.turns, pos.Turn())
	return s.Strategy.ChooseMove(pos)
}

// Fails on the n-th call
type failingStrategy struct {
	ai.Strategy
	calls, failAt int
	err           error
	move          uttt.Move
}

func (f *failingStrategy) ChooseMove(pos *uttt.Position) (uttt.Move, error) {
	f.calls++
	if f.calls == f.failAt {
		if f.err != nil {
			return uttt.MoveIllegal, f.err
		}
		return f.move, nil
	}
	return f.Strategy.ChooseMove(pos)
}

// Reports a constant search score for every move
type scoredStrategy struct {
	ai.Strategy
	score int
}

func (s scoredStrategy) LastSearch() ai.SearchStats {
	return ai.SearchStats{Nodes: 1, Score: s.score}
}

func newRandom(seed int64) ai.Strategy {
	return ai.NewRandomHeuristic(rand.New(rand.NewSource(seed)))
}

func mustNew(t *testing.T, config string) ai.Strategy {
	t.Helper()
	s, err := ai.New(config, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunMatchIdenticalRandom(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := NewRunner().WithLogger(logger).RunMatch(newRandom(7), newRandom(7), 10)
	if err != nil {
		t.Fatal(err)
	}

	if result.WinsA+result.WinsB+result.Draws != 10 || result.Total() != 10 {
		t.Errorf("Expected 10 games, got %d+%d+%d", result.WinsA, result.WinsB, result.Draws)
	}
	if len(result.Games) != 10 {
		t.Fatalf("Expected 10 game records, got %d", len(result.Games))
	}
	if result.FirstToMoveWins+result.SecondToMoveWins != result.WinsA+result.WinsB {
		t.Errorf("Decisive games %d don't match first/second to move wins %d/%d",
			result.WinsA+result.WinsB, result.FirstToMoveWins, result.SecondToMoveWins)
	}

	moves := 0
	for i, game := range result.Games {
		if game.AIsCross != (i%2 == 0) {
			t.Errorf("Game %d: expected A to play cross=%v", i, i%2 == 0)
		}
		if game.Termination == uttt.TerminationNone {
			t.Errorf("Game %d was not finished", i)
		}
		if i > 0 && game.ID == result.Games[i-1].ID {
			t.Errorf("Game %d reuses the id %s", i, game.ID)
		}
		moves += len(game.Moves)
	}
	if result.MovesA+result.MovesB != moves {
		t.Errorf("Expected %d moves in total, got %d+%d", moves, result.MovesA, result.MovesB)
	}
	if result.NameA != "random" || result.NameB != "random" {
		t.Errorf("Unexpected names %q, %q", result.NameA, result.NameB)
	}

	for _, msg := range []string{"match started", "game finished", "match finished"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("Expected %q in the logs:\n%s", msg, logs.String())
		}
	}
}

func TestRunMatchReplaysGames(t *testing.T) {
	for _, game := range mustRunMatch(t, newRandom(3), newRandom(4), 4).Games {
		pos := uttt.NewPosition()
		for _, m := range game.Moves {
			next, err := pos.Apply(m)
			if err != nil {
				t.Fatalf("Game %s: %v", game.ID, err)
			}
			pos = next
		}
		if pos.Termination() != game.Termination {
			t.Errorf("Game %s: expected %s, replay gives %s", game.ID, game.Termination, pos.Termination())
		}
	}
}

func mustRunMatch(t *testing.T, a, b ai.Strategy, n int) MatchResult {
	t.Helper()
	result, err := RunMatch(a, b, n)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestRunMatchAlternatesSides(t *testing.T) {
	a := &sideRecorder{Strategy: newRandom(1)}
	b := &sideRecorder{Strategy: newRandom(2)}
	runner := NewRunner()

	for game := 0; game < 4; game++ {
		a.turns, b.turns = nil, nil
		record, _, err := runner.playGame(a, b, game, 4, &MatchResult{})
		if err != nil {
			t.Fatal(err)
		}
		aSide := uttt.CrossTurn
		if game%2 == 1 {
			aSide = uttt.CircleTurn
		}
		for _, turn := range a.turns {
			if turn != aSide {
				t.Fatalf("Game %d: A asked to play %s", game, turn)
			}
		}
		for _, turn := range b.turns {
			if turn != aSide.Opponent() {
				t.Fatalf("Game %d: B asked to play %s", game, turn)
			}
		}
		if len(a.turns)+len(b.turns) != len(record.Moves) {
			t.Errorf("Game %d: expected %d decisions, got %d", game, len(record.Moves), len(a.turns)+len(b.turns))
		}
	}
}

func TestRunMatchFromPosition(t *testing.T) {
	// cross wins with its first move
	pos, err := uttt.FromNotation("xxxoo4/xxxoo4/xx7/9/9/9/9/9/9 x 2")
	if err != nil {
		t.Fatal(err)
	}
	a, b := mustNew(t, "alphabeta:maxDepth=1"), mustNew(t, "minimax:maxDepth=1")

	result, err := NewRunner().WithPosition(pos).RunMatch(a, b, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result.WinsA != 1 || result.WinsB != 1 || result.Draws != 0 {
		t.Errorf("Expected 1-1-0, got %d-%d-%d", result.WinsA, result.WinsB, result.Draws)
	}
	if result.FirstToMoveWins != 2 {
		t.Errorf("Expected both games won by the first to move, got %d", result.FirstToMoveWins)
	}
	if result.MovesA != 1 || result.MovesB != 1 {
		t.Errorf("Expected one move each, got %d and %d", result.MovesA, result.MovesB)
	}
	if result.NodesA == 0 || result.NodesB == 0 {
		t.Error("Expected the search nodes to be counted")
	}
	for _, game := range result.Games {
		if len(game.Moves) != 1 || game.Moves[0] != uttt.NewMove(2, 2) {
			t.Errorf("Expected the single winning move, got %v", game.Moves)
		}
	}
	if result.ScoreA != eval.WinScore || result.ScoreB != eval.WinScore {
		t.Errorf("Expected the win score for both, got %d and %d", result.ScoreA, result.ScoreB)
	}
	if result.AvgScoreA != eval.WinScore || result.AvgScoreB != eval.WinScore {
		t.Errorf("Expected average %d, got %v and %v", eval.WinScore, result.AvgScoreA, result.AvgScoreB)
	}
}

func TestRunMatchScoresAndDurations(t *testing.T) {
	a := scoredStrategy{Strategy: newRandom(3), score: 7}
	b := scoredStrategy{Strategy: newRandom(4), score: -3}
	result := mustRunMatch(t, a, b, 3)

	if result.ScoreA != 7*result.MovesA || result.ScoreB != -3*result.MovesB {
		t.Errorf("Expected scores %d and %d, got %d and %d",
			7*result.MovesA, -3*result.MovesB, result.ScoreA, result.ScoreB)
	}
	if result.AvgScoreA != 7 || result.AvgScoreB != -3 {
		t.Errorf("Expected averages 7 and -3, got %v and %v", result.AvgScoreA, result.AvgScoreB)
	}
	if result.NodesA != uint64(result.MovesA) || result.NodesB != uint64(result.MovesB) {
		t.Errorf("Expected a node per move, got %d and %d", result.NodesA, result.NodesB)
	}

	var total time.Duration
	for _, game := range result.Games {
		if game.Duration < 0 {
			t.Errorf("Game %d: negative duration %v", game.Index, game.Duration)
		}
		total += game.Duration
	}
	if result.Duration != total {
		t.Errorf("Expected match duration %v, got %v", total, result.Duration)
	}
	if result.AvgGameDuration != total/3 {
		t.Errorf("Expected %v per game, got %v", total/3, result.AvgGameDuration)
	}
}

func TestRunMatchInvalid(t *testing.T) {
	a, b := newRandom(1), newRandom(2)
	terminated, err := uttt.FromNotation("xxxoo4/xxxoo4/xxxoo4/9/9/9/9/9/9 o -")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		runner *Runner
		a, b   ai.Strategy
		games  int
	}{
		{"zero-games", NewRunner(), a, b, 0},
		{"negative-games", NewRunner(), a, b, -3},
		{"missing-strategy", NewRunner(), a, nil, 2},
		{"terminated-start", NewRunner().WithPosition(terminated), a, b, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.runner.RunMatch(tt.a, tt.b, tt.games); !errors.Is(err, ai.ErrInvalidConfiguration) {
				t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestRunMatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listener := &recordingListener{}
	result, err := NewRunner().WithContext(ctx).WithListener(listener).RunMatch(newRandom(1), newRandom(2), 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if result.Total() != 0 || listener.moves != 0 || listener.matches != 0 {
		t.Errorf("Expected nothing played, got %d games and %d moves", result.Total(), listener.moves)
	}
}

func TestRunMatchStrategyErrors(t *testing.T) {
	errBroken := errors.New("broken")

	t.Run("error", func(t *testing.T) {
		a := &failingStrategy{Strategy: newRandom(1), failAt: 3, err: errBroken}
		_, err := RunMatch(a, newRandom(2), 2)
		if !errors.Is(err, errBroken) {
			t.Errorf("Expected the strategy error, got %v", err)
		}
	})

	t.Run("illegal-move", func(t *testing.T) {
		// cross opens in the center, circle answers outside of sub-board 4
		a := &failingStrategy{Strategy: newRandom(1), failAt: 1, move: uttt.NewMove(4, 4)}
		b := &failingStrategy{Strategy: newRandom(2), failAt: 1, move: uttt.NewMove(0, 0)}
		_, err := RunMatch(a, b, 1)
		if !errors.Is(err, uttt.ErrIllegalMove) {
			t.Errorf("Expected ErrIllegalMove, got %v", err)
		}
	})
}

func TestListenerEvents(t *testing.T) {
	first, second := &recordingListener{}, &recordingListener{}
	result, err := NewRunner().WithListener(first, second).RunMatch(newRandom(5), newRandom(6), 3)
	if err != nil {
		t.Fatal(err)
	}

	moves := 0
	for _, game := range result.Games {
		moves += len(game.Moves)
	}

	for _, l := range []*recordingListener{first, second} {
		if l.starts != 3 || l.finished != 3 || l.matches != 1 {
			t.Errorf("Expected 3 starts, 3 finished games and 1 match, got %d, %d, %d", l.starts, l.finished, l.matches)
		}
		if l.moves != moves {
			t.Errorf("Expected %d move events, got %d", moves, l.moves)
		}
		if l.lastStats.FinishedGames != 3 || l.lastStats.GameIndex != 2 {
			t.Errorf("Unexpected last stats %+v", l.lastStats)
		}
		if l.lastResult.Total() != 3 {
			t.Errorf("Expected the match result, got %d games", l.lastResult.Total())
		}
	}
}

func TestRoundRobin(t *testing.T) {
	strategies := []ai.Strategy{
		newRandom(11),
		mustNew(t, "minimax:maxDepth=1"),
		mustNew(t, "alphabeta:maxDepth=2"),
	}

	standings, err := RoundRobin(strategies, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(standings.Matches) != 3 || len(standings.Rows) != 3 {
		t.Fatalf("Expected 3 matches and 3 rows, got %d and %d", len(standings.Matches), len(standings.Rows))
	}

	var wins, losses int
	names := make(map[string]bool)
	for i, row := range standings.Rows {
		names[row.Name] = true
		if row.Games() != 4 {
			t.Errorf("%s: expected 4 games, got %d", row.Name, row.Games())
		}
		if row.Moves > 0 && row.AvgDecisionTime < 0 {
			t.Errorf("%s: negative average time", row.Name)
		}
		if i > 0 && row.Wins > standings.Rows[i-1].Wins {
			t.Errorf("Rows not sorted by wins: %+v", standings.Rows)
		}
		wins += row.Wins
		losses += row.Losses
	}
	if wins != losses {
		t.Errorf("Expected wins == losses, got %d and %d", wins, losses)
	}
	for _, s := range strategies {
		if !names[s.Name()] {
			t.Errorf("Missing row for %s", s.Name())
		}
	}
}

func TestRoundRobinInvalid(t *testing.T) {
	if _, err := RoundRobin([]ai.Strategy{newRandom(1)}, 2); !errors.Is(err, ai.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := RoundRobin([]ai.Strategy{newRandom(1), newRandom(2)}, 0); !errors.Is(err, ai.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestDefaultContenders(t *testing.T) {
	contenders := DefaultContenders(1)
	want := []string{"random", "minimax:maxDepth=3", "alphabeta:maxDepth=3"}
	if len(contenders) != len(want) {
		t.Fatalf("Expected %d contenders, got %d", len(want), len(contenders))
	}
	for i, s := range contenders {
		if s.Name() != want[i] {
			t.Errorf("Expected %q, got %q", want[i], s.Name())
		}
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected a panic")
		}
	}()
	must(ai.NewMinimax(ai.DefaultLimits().SetDepth(0), nil))
}

func TestTermListener(t *testing.T) {
	var out bytes.Buffer
	term := NewTermListener(&out, termenv.WithProfile(termenv.Ascii))
	term.Moves = true

	runner := NewRunner().WithListener(term)
	standings, err := runner.RoundRobin([]ai.Strategy{newRandom(1), mustNew(t, "minimax:maxDepth=1")}, 2)
	if err != nil {
		t.Fatal(err)
	}
	term.PrintStandings(standings)

	text := out.String()
	for _, want := range []string{
		"game 1/2: random (x) vs minimax:maxDepth=1 (o)",
		"game 2/2: minimax:maxDepth=1 (x) vs random (o)",
		": 2 games",
		"/move)",
		"per game",
		"strategy",
		"  1. ",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in the output:\n%s", want, text)
		}
	}
}
