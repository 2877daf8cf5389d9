package engine

import "cardclash/internal/model"

// Points awarded for a correct answer
const (
	FirstTryPoints = 10
	RetryPoints    = 5
)

func pointsFor(previousAttempts int) int {
	if previousAttempts == 0 {
		return FirstTryPoints
	}
	return RetryPoints
}

// checkEnd finishes the game if anyone is still down after revives. The
// actor wins when the opponent fell, even if reflect also dropped the actor.
func (e *Engine) checkEnd(g *model.GameState, actor *model.Player, out *Outcome) bool {
	opp := g.Opponent(actor.ID)
	switch {
	case opp != nil && opp.Health <= 0:
		e.finish(g, actor.Team, out)
	case actor.Health <= 0:
		e.finish(g, actor.Team.Opponent(), out)
	default:
		return false
	}
	return true
}

func (e *Engine) finish(g *model.GameState, winner model.Team, out *Outcome) {
	now := e.now()
	g.Status = model.GameFinished
	g.Winner = winner
	g.EndTime = &now
	g.PausedByPlayerID = ""
	g.PausedAt = nil
	out.Results = Results(g)
	for _, r := range out.Results {
		if p := g.PlayerByTeam(r.Team); p != nil {
			p.Score = r.Score
		}
	}
	out.Ended = true
	out.Winner = winner
}

// Results summarises each player's game from the history
func Results(g *model.GameState) []model.GameResult {
	results := make([]model.GameResult, 0, len(g.Players))
	for _, p := range g.Players {
		r := model.GameResult{PlayerName: p.Name, Team: p.Team, Won: g.Winner == p.Team}
		for _, a := range g.History {
			if a.PlayerID != p.ID || a.Action != model.ActionPlay {
				continue
			}
			r.QuestionPoints += a.QuestionPoints
			r.DamageDealt += a.Damage
			switch a.QuestionPoints {
			case FirstTryPoints:
				r.CorrectCount++
			case RetryPoints:
				r.PartialCount++
			}
		}
		r.Score = r.QuestionPoints
		results = append(results, r)
	}
	return results
}
