package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/IlikeChooros/go-uttt/pkg/uttt"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

// Snapshot of the match passed to the listeners
type ListenerStats struct {
	GameID        uuid.UUID
	GameIndex     int
	NGames        int
	FinishedGames int
	NameA         string
	NameB         string
	AIsCross      bool
	Moves         []uttt.Move // moves of the current game so far
	Notation      string      // position after the last move
	Termination   uttt.Termination
	Result        VersusMatchResult // set in OnFinishedGame
	WinsA         int
	WinsB         int
	Draws         int
}

// Receives the progress of a match, called synchronously from the match loop
type ListenerLike interface {
	OnGameStart(stats ListenerStats)
	OnMoveMade(stats ListenerStats)
	OnFinishedGame(stats ListenerStats)
	OnFinishedMatch(result MatchResult)
}

// Ignores every event
type DefaultListener struct{}

func (DefaultListener) OnGameStart(ListenerStats)    {}
func (DefaultListener) OnMoveMade(ListenerStats)     {}
func (DefaultListener) OnFinishedGame(ListenerStats) {}
func (DefaultListener) OnFinishedMatch(MatchResult)  {}

// Prints the match progress and the results to a terminal
type TermListener struct {
	w     io.Writer
	out   *termenv.Output
	Moves bool // print every move
	Quiet bool // print only the match summary
}

// Create a terminal listener writing to w, the color profile is detected
// from w unless given with termenv.WithProfile
func NewTermListener(w io.Writer, opts ...termenv.OutputOption) *TermListener {
	return &TermListener{
		w:   w,
		out: termenv.NewOutput(w, opts...),
	}
}

func (t *TermListener) style(s, color string) string {
	return t.out.String(s).Foreground(t.out.Color(color)).String()
}

func (t *TermListener) OnGameStart(stats ListenerStats) {
	if t.Quiet {
		return
	}
	cross, circle := stats.NameA, stats.NameB
	if !stats.AIsCross {
		cross, circle = circle, cross
	}
	fmt.Fprintf(t.w, "game %d/%d: %s (x) vs %s (o)\n",
		stats.GameIndex+1, stats.NGames, cross, circle)
}

func (t *TermListener) OnMoveMade(stats ListenerStats) {
	if t.Quiet || !t.Moves || len(stats.Moves) == 0 {
		return
	}
	fmt.Fprintf(t.w, "  %2d. %s  %s\n", len(stats.Moves), stats.Moves[len(stats.Moves)-1], stats.Notation)
}

func (t *TermListener) OnFinishedGame(stats ListenerStats) {
	if t.Quiet {
		return
	}
	var outcome string
	switch stats.Result {
	case VersusAWin:
		outcome = t.style(stats.NameA+" won", "2")
	case VersusBWin:
		outcome = t.style(stats.NameB+" won", "1")
	default:
		outcome = t.style("draw", "3")
	}
	fmt.Fprintf(t.w, "game %d/%d: %s in %d moves [%d-%d-%d]\n",
		stats.GameIndex+1, stats.NGames, outcome, len(stats.Moves),
		stats.WinsA, stats.WinsB, stats.Draws)
}

func (t *TermListener) OnFinishedMatch(result MatchResult) {
	title := t.out.String(fmt.Sprintf("%s vs %s", result.NameA, result.NameB)).Bold()
	fmt.Fprintf(t.w, "%s: %d games\n", title, result.Total())
	fmt.Fprintf(t.w, "  %-36s wins %-4d moves %-5d avg %v score %d (%.1f/move)\n",
		result.NameA, result.WinsA, result.MovesA, result.AvgDecisionTimeA.Round(time.Microsecond),
		result.ScoreA, result.AvgScoreA)
	fmt.Fprintf(t.w, "  %-36s wins %-4d moves %-5d avg %v score %d (%.1f/move)\n",
		result.NameB, result.WinsB, result.MovesB, result.AvgDecisionTimeB.Round(time.Microsecond),
		result.ScoreB, result.AvgScoreB)
	fmt.Fprintf(t.w, "  draws %d, first to move won %d, second to move won %d\n",
		result.Draws, result.FirstToMoveWins, result.SecondToMoveWins)
	fmt.Fprintf(t.w, "  played in %v, %v per game\n",
		result.Duration.Round(time.Millisecond), result.AvgGameDuration.Round(time.Microsecond))
}

// Print the round robin table
func (t *TermListener) PrintStandings(standings Standings) {
	header := fmt.Sprintf("%-36s %5s %6s %5s %6s %12s", "strategy", "wins", "losses", "draws", "moves", "avg time")
	fmt.Fprintln(t.w, t.out.String(header).Bold())
	for i, row := range standings.Rows {
		name := fmt.Sprintf("%-36s", row.Name)
		if i == 0 && row.Wins > 0 {
			name = t.style(name, "2")
		}
		fmt.Fprintf(t.w, "%s %5d %6d %5d %6d %12v\n",
			name, row.Wins, row.Losses, row.Draws, row.Moves, row.AvgDecisionTime.Round(time.Microsecond))
	}
}
