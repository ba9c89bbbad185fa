package bench

import (
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/uttt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Result of a single game, from the A player's perspective
type VersusMatchResult int

const (
	VersusAWin VersusMatchResult = 1
	VersusBWin VersusMatchResult = -1
	VersusDraw VersusMatchResult = 0
)

func (r VersusMatchResult) String() string {
	switch r {
	case VersusAWin:
		return "A"
	case VersusBWin:
		return "B"
	}
	return "draw"
}

func (r VersusMatchResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *VersusMatchResult) UnmarshalText(text []byte) error {
	switch string(text) {
	case "A":
		*r = VersusAWin
	case "B":
		*r = VersusBWin
	case "draw":
		*r = VersusDraw
	default:
		return errors.Errorf("unknown game result %q", text)
	}
	return nil
}

// Record of a finished game
type GameRecord struct {
	ID          uuid.UUID         `json:"id"`
	Index       int               `json:"index"`
	AIsCross    bool              `json:"a_is_cross"`
	AFirst      bool              `json:"a_first"` // A made the first move
	Moves       []uttt.Move       `json:"moves"`
	Termination uttt.Termination  `json:"termination"`
	Result      VersusMatchResult `json:"result"`
	Duration    time.Duration     `json:"duration"`
}

// Aggregated statistics of a match between two strategies
type MatchResult struct {
	NameA            string        `json:"a"`
	NameB            string        `json:"b"`
	WinsA            int           `json:"wins_a"`
	WinsB            int           `json:"wins_b"`
	Draws            int           `json:"draws"`
	FirstToMoveWins  int           `json:"first_to_move_wins"`
	SecondToMoveWins int           `json:"second_to_move_wins"`
	MovesA           int           `json:"moves_a"`
	MovesB           int           `json:"moves_b"`
	NodesA           uint64        `json:"nodes_a"`
	NodesB           uint64        `json:"nodes_b"`
	AvgDecisionTimeA time.Duration `json:"avg_decision_time_a"`
	AvgDecisionTimeB time.Duration `json:"avg_decision_time_b"`
	ScoreA           int           `json:"score_a"` // sum of the chosen moves' scores
	ScoreB           int           `json:"score_b"`
	AvgScoreA        float64       `json:"avg_score_a"` // per move
	AvgScoreB        float64       `json:"avg_score_b"`
	Duration         time.Duration `json:"duration"` // of all the finished games
	AvgGameDuration  time.Duration `json:"avg_game_duration"`
	Games            []GameRecord  `json:"games"`

	timeA, timeB time.Duration
}

func (mr *MatchResult) Total() int {
	return mr.WinsA + mr.WinsB + mr.Draws
}

// Tally a finished game, updating the win counters
func (mr *MatchResult) add(record GameRecord, stats [2]sideStats) {
	switch record.Result {
	case VersusAWin:
		mr.WinsA++
	case VersusBWin:
		mr.WinsB++
	default:
		mr.Draws++
	}

	if record.Result != VersusDraw {
		if (record.Result == VersusAWin) == record.AFirst {
			mr.FirstToMoveWins++
		} else {
			mr.SecondToMoveWins++
		}
	}

	a, b := stats[0], stats[1]
	mr.MovesA += a.moves
	mr.MovesB += b.moves
	mr.NodesA += a.nodes
	mr.NodesB += b.nodes
	mr.timeA += a.time
	mr.timeB += b.time
	mr.AvgDecisionTimeA = average(mr.timeA, mr.MovesA)
	mr.AvgDecisionTimeB = average(mr.timeB, mr.MovesB)
	mr.ScoreA += a.score
	mr.ScoreB += b.score
	mr.AvgScoreA = averageScore(mr.ScoreA, mr.MovesA)
	mr.AvgScoreB = averageScore(mr.ScoreB, mr.MovesB)
	mr.Duration += record.Duration
	mr.Games = append(mr.Games, record)
	mr.AvgGameDuration = average(mr.Duration, len(mr.Games))
}

// Time and search effort of one side in a game
type sideStats struct {
	moves int
	nodes uint64
	score int // as reported by the strategy, from its own perspective
	time  time.Duration
}

func average(total time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

func averageScore(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// Maps the game outcome to the player that won, given the side assignment
func toAgentResult(termination uttt.Termination, aIsCross bool) VersusMatchResult {
	switch termination {
	case uttt.TerminationCrossWon:
		if aIsCross {
			return VersusAWin
		}
		return VersusBWin
	case uttt.TerminationCircleWon:
		if aIsCross {
			return VersusBWin
		}
		return VersusAWin
	}
	return VersusDraw
}

// Single row of the round robin table
type StandingsRow struct {
	Name            string        `json:"name"`
	Wins            int           `json:"wins"`
	Losses          int           `json:"losses"`
	Draws           int           `json:"draws"`
	Moves           int           `json:"moves"`
	AvgDecisionTime time.Duration `json:"avg_decision_time"`

	time time.Duration
}

func (r *StandingsRow) Games() int {
	return r.Wins + r.Losses + r.Draws
}

// Aggregate of all the pairwise matches of a round robin
type Standings struct {
	Rows    []StandingsRow `json:"rows"`
	Matches []MatchResult  `json:"matches"`
}
