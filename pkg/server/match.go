package server

import (
	"sync"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/bench"
)

type MatchStatus string

const (
	StatusRunning   MatchStatus = "running"
	StatusFinished  MatchStatus = "finished"
	StatusFailed    MatchStatus = "failed"
	StatusCancelled MatchStatus = "cancelled"
)

// Event types of the match stream
const (
	EventGameStart = "game_start"
	EventMove      = "move"
	EventGameEnd   = "game_end"
	EventMatchEnd  = "match_end"
)

// Single entry of the match event stream
type Event struct {
	Type        string `json:"type"`
	Seq         int    `json:"seq"`
	Game        int    `json:"game"`
	GameID      string `json:"game_id,omitempty"`
	Cross       string `json:"cross,omitempty"`
	Circle      string `json:"circle,omitempty"`
	Move        string `json:"move,omitempty"`
	Ply         int    `json:"ply,omitempty"`
	Notation    string `json:"notation,omitempty"`
	Outcome     string `json:"outcome,omitempty"` // A, B or draw
	Termination string `json:"termination,omitempty"`
	WinsA       int    `json:"wins_a"`
	WinsB       int    `json:"wins_b"`
	Draws       int    `json:"draws"`
	Status      string `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
}

// State of a match, as returned by the API
type MatchSnapshot struct {
	ID      string             `json:"id"`
	A       string             `json:"a"`
	B       string             `json:"b"`
	Games   int                `json:"games"`
	Seed    int64              `json:"seed"`
	Status  MatchStatus        `json:"status"`
	Played  int                `json:"played"`
	Created time.Time          `json:"created"`
	Result  *bench.MatchResult `json:"result,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// A match played in the background, keeps the log of all its events
// so late subscribers can replay them
type Match struct {
	mu      sync.Mutex
	id      string
	a, b    string
	games   int
	seed    int64
	created time.Time
	status  MatchStatus
	played  int
	result  *bench.MatchResult
	err     string
	events  []Event
	changed chan struct{} // closed and replaced on every new event
	cancel  func()
}

func newMatch(id, a, b string, games int, seed int64) *Match {
	return &Match{
		id:      id,
		a:       a,
		b:       b,
		games:   games,
		seed:    seed,
		created: time.Now(),
		status:  StatusRunning,
		changed: make(chan struct{}),
		cancel:  func() {},
	}
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Snapshot() MatchSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MatchSnapshot{
		ID:      m.id,
		A:       m.a,
		B:       m.b,
		Games:   m.games,
		Seed:    m.seed,
		Status:  m.status,
		Played:  m.played,
		Created: m.created,
		Result:  m.result,
		Error:   m.err,
	}
}

// Events after the first 'from' ones, a channel closed on the next event and
// whether the log is complete
func (m *Match) EventsSince(from int) ([]Event, <-chan struct{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []Event
	if from < len(m.events) {
		events = append(events, m.events[from:]...)
	}
	return events, m.changed, m.status != StatusRunning
}

// Caller must hold the lock
func (m *Match) appendLocked(ev Event) {
	ev.Seq = len(m.events)
	m.events = append(m.events, ev)
	close(m.changed)
	m.changed = make(chan struct{})
}

func (m *Match) append(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(ev)
}

// Set the final state and close the event log
func (m *Match) finish(status MatchStatus, result *bench.MatchResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.result = result
	if result != nil {
		m.played = result.Total()
	}
	ev := Event{Type: EventMatchEnd, Status: string(status)}
	if err != nil {
		m.err = err.Error()
		ev.Error = m.err
	}
	if result != nil {
		ev.WinsA, ev.WinsB, ev.Draws = result.WinsA, result.WinsB, result.Draws
	}
	m.appendLocked(ev)
}

// Translates the runner callbacks into events
type matchListener struct {
	m *Match
}

func (l matchListener) OnGameStart(stats bench.ListenerStats) {
	cross, circle := stats.NameA, stats.NameB
	if !stats.AIsCross {
		cross, circle = circle, cross
	}
	l.m.append(Event{
		Type:     EventGameStart,
		Game:     stats.GameIndex,
		GameID:   stats.GameID.String(),
		Cross:    cross,
		Circle:   circle,
		Notation: stats.Notation,
		WinsA:    stats.WinsA,
		WinsB:    stats.WinsB,
		Draws:    stats.Draws,
	})
}

func (l matchListener) OnMoveMade(stats bench.ListenerStats) {
	l.m.append(Event{
		Type:     EventMove,
		Game:     stats.GameIndex,
		GameID:   stats.GameID.String(),
		Move:     stats.Moves[len(stats.Moves)-1].String(),
		Ply:      len(stats.Moves),
		Notation: stats.Notation,
		WinsA:    stats.WinsA,
		WinsB:    stats.WinsB,
		Draws:    stats.Draws,
	})
}

func (l matchListener) OnFinishedGame(stats bench.ListenerStats) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	l.m.played = stats.FinishedGames
	l.m.appendLocked(Event{
		Type:        EventGameEnd,
		Game:        stats.GameIndex,
		GameID:      stats.GameID.String(),
		Ply:         len(stats.Moves),
		Outcome:     stats.Result.String(),
		Termination: stats.Termination.String(),
		WinsA:       stats.WinsA,
		WinsB:       stats.WinsB,
		Draws:       stats.Draws,
	})
}

// match_end is emitted by finish, also when the match fails
func (l matchListener) OnFinishedMatch(bench.MatchResult) {}
