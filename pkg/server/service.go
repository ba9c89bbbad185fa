package server

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"sync"

	"github.com/IlikeChooros/go-uttt/pkg/ai"
	"github.com/IlikeChooros/go-uttt/pkg/bench"
	"github.com/IlikeChooros/go-uttt/pkg/eval"
	"github.com/IlikeChooros/go-uttt/pkg/uttt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("match not found")
)

const (
	DefaultMaxGames = 100
	// Deepest search the server runs, minimax at depth 5 already visits
	// millions of nodes from the empty board
	DefaultMaxDepth = 5
)

// Parameters of a new match
type MatchRequest struct {
	A     string `json:"a"`     // strategy config of the first player
	B     string `json:"b"`     // strategy config of the second player
	Games int    `json:"games"` // number of games, sides alternate
	Seed  int64  `json:"seed"`  // seed of the randomized strategies, 0 picks one
}

// Result of the position analysis
type Analysis struct {
	Notation    string           `json:"notation"`
	Turn        string           `json:"turn"`
	Termination uttt.Termination `json:"termination"`
	Legal       []uttt.Move      `json:"legal"`
	Eval        int              `json:"eval"` // static evaluation for the side to move
	Strategy    string           `json:"strategy,omitempty"`
	Move        *uttt.Move       `json:"move,omitempty"`
	Stats       *ai.SearchStats  `json:"stats,omitempty"`
}

// Registry of the matches, each one played on its own goroutine
type Service struct {
	mu       sync.Mutex
	matches  map[string]*Match
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	maxGames int
	maxDepth int
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		matches:  make(map[string]*Match),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		maxGames: DefaultMaxGames,
		maxDepth: DefaultMaxDepth,
	}
}

// Upper bound on the games of a single match
func (s *Service) SetMaxGames(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxGames = n
}

// Upper bound on the search depth of the requested strategies
func (s *Service) SetMaxDepth(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxDepth = depth
}

// Build the strategy, rejecting searches deeper than the server allows
func (s *Service) newStrategy(config string, r *rand.Rand) (ai.Strategy, error) {
	st, err := ai.New(config, r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	maxDepth := s.maxDepth
	s.mu.Unlock()
	if limited, ok := st.(ai.Limited); ok && limited.Limits().Depth > maxDepth {
		return nil, errors.Wrapf(ai.ErrInvalidConfiguration,
			"maxDepth of %q exceeds the limit of %d", st.Name(), maxDepth)
	}
	return st, nil
}

// Validate the request, register the match and start playing it in the background
func (s *Service) StartMatch(req MatchRequest) (*Match, error) {
	s.mu.Lock()
	maxGames := s.maxGames
	s.mu.Unlock()

	if req.Games <= 0 || req.Games > maxGames {
		return nil, errors.Wrapf(ai.ErrInvalidConfiguration, "games must be in [1, %d], got %d", maxGames, req.Games)
	}
	if req.Seed == 0 {
		req.Seed = ai.SeedGeneratorFn()
	}

	a, err := s.newStrategy(req.A, rand.New(rand.NewSource(req.Seed)))
	if err != nil {
		return nil, errors.WithMessage(err, "player a")
	}
	b, err := s.newStrategy(req.B, rand.New(rand.NewSource(req.Seed+1)))
	if err != nil {
		return nil, errors.WithMessage(err, "player b")
	}

	m := newMatch(uuid.NewString(), a.Name(), b.Name(), req.Games, req.Seed)
	ctx, cancel := context.WithCancel(s.ctx)
	m.cancel = cancel

	s.mu.Lock()
	s.matches[m.id] = m
	s.mu.Unlock()

	logger := s.logger.With("match", m.id)
	runner := bench.NewRunner().
		WithContext(ctx).
		WithLogger(logger).
		WithListener(matchListener{m: m})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		result, err := runner.RunMatch(a, b, req.Games)
		switch {
		case err == nil:
			m.finish(StatusFinished, &result, nil)
		case errors.Is(err, context.Canceled):
			m.finish(StatusCancelled, &result, nil)
		default:
			logger.Error("match failed", "error", err)
			m.finish(StatusFailed, &result, err)
		}
	}()
	return m, nil
}

func (s *Service) Get(id string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return m, nil
}

// Snapshots of all the matches, oldest first
func (s *Service) List() []MatchSnapshot {
	s.mu.Lock()
	matches := make([]*Match, 0, len(s.matches))
	for _, m := range s.matches {
		matches = append(matches, m)
	}
	s.mu.Unlock()

	snapshots := make([]MatchSnapshot, 0, len(matches))
	for _, m := range matches {
		snapshots = append(snapshots, m.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Created.Before(snapshots[j].Created)
	})
	return snapshots
}

// Stop a running match before its next move, no-op if it has already ended
func (s *Service) Cancel(id string) error {
	m, err := s.Get(id)
	if err != nil {
		return err
	}
	m.cancel()
	return nil
}

// Wait for all started matches to end
func (s *Service) Wait() {
	s.wg.Wait()
}

// Cancel every running match and wait for them
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// Evaluate the position and let the strategy choose a move, if the game isn't over
func (s *Service) Analyze(notation, strategy string) (Analysis, error) {
	pos, err := uttt.FromNotation(notation)
	if err != nil {
		return Analysis{}, err
	}
	analysis := Analysis{
		Notation:    pos.Notation(),
		Turn:        pos.Turn().String(),
		Termination: pos.Termination(),
		Legal:       uttt.LegalMoves(&pos),
		Eval:        eval.Score(&pos, pos.Turn()),
	}

	st, err := s.newStrategy(strategy, nil)
	if err != nil {
		return Analysis{}, err
	}
	analysis.Strategy = st.Name()
	if pos.IsTerminated() {
		return analysis, nil
	}

	move, err := st.ChooseMove(&pos)
	if err != nil {
		return Analysis{}, err
	}
	analysis.Move = &move
	if reporter, ok := st.(ai.StatsReporter); ok {
		stats := reporter.LastSearch()
		analysis.Stats = &stats
	}
	return analysis, nil
}
