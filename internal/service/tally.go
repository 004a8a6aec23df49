package service

import (
	"sort"

	"mbtispy/internal/model"
)

// TallyResults computes the outcome of a finished vote. Product rule: a tie
// for the plurality, or a round with zero ballots, counts as the spy not
// being identified, so the spy side wins by default. The degenerate all-spies
// round ignores the plurality entirely and is resolved per voter.
func TallyResults(session *model.Session) *model.Results {
	counts := make(map[model.VoteTarget]int)
	for _, target := range session.Votes {
		counts[target]++
	}

	results := &model.Results{
		Tally:           make([]model.TallyEntry, 0, len(session.Players)),
		AllSpiesVotes:   counts[model.TargetAllSpies],
		TotalBallots:    len(session.Votes),
		ExpectedBallots: session.ExpectedPlayers,
	}
	for _, p := range session.Players {
		results.Tally = append(results.Tally, model.TallyEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Votes:    counts[model.TargetPlayer(p.ID)],
		})
	}
	sort.Slice(results.Tally, func(i, j int) bool {
		return results.Tally[i].PlayerID < results.Tally[j].PlayerID
	})

	if session.Mode == model.ModeAllSpies {
		tallyAllSpies(session, results, counts)
		return results
	}
	tallyClassic(session, results, counts)
	return results
}

// tallyAllSpies splits the spies into winners and losers by whether each one
// personally voted for the all-spies option. There is no detective side.
func tallyAllSpies(session *model.Session, results *model.Results, counts map[model.VoteTarget]int) {
	results.WinnerSide = model.RoleSpy
	results.Tie = len(pluralityTargets(counts)) > 1

	winners := []string{}
	losers := []string{}
	for _, p := range session.Players {
		if session.Votes[p.ID] == model.TargetAllSpies {
			winners = append(winners, p.Name)
		} else {
			losers = append(losers, p.Name)
		}
	}
	results.SpyWinners = winners
	results.SpyLosers = losers

	if len(winners) > 0 {
		results.Message = "Spy players who selected 'all_spies' win."
	} else {
		results.Message = "No spy selected the 'all_spies' option. Spy team wins by default."
	}
}

func tallyClassic(session *model.Session, results *model.Results, counts map[model.VoteTarget]int) {
	top := pluralityTargets(counts)

	if len(top) == 0 {
		results.Tie = true
		results.WinnerSide = model.RoleSpy
		results.Message = "No ballots were cast. Spy team wins by default."
		return
	}
	if len(top) > 1 {
		results.Tie = true
		results.WinnerSide = model.RoleSpy
		results.Message = "Vote tied. Spy team wins."
		return
	}

	id, ok := top[0].PlayerID()
	if !ok {
		// Sentinel votes are rejected outside the degenerate mode, so a
		// plurality on it cannot normally happen.
		results.WinnerSide = model.RoleSpy
		results.Message = "Spy team wins."
		return
	}

	eliminated := session.PlayerByID(id)
	results.Eliminated = &model.EliminatedPlayer{
		PlayerID: eliminated.ID,
		Name:     eliminated.Name,
		Role:     eliminated.Role,
	}
	if eliminated.Role == model.RoleSpy {
		results.WinnerSide = model.RoleDetective
		results.Message = "Spy eliminated. Detective team wins!"
	} else {
		results.WinnerSide = model.RoleSpy
		results.Message = "Spy survives. Spy team wins!"
	}
}

// pluralityTargets returns every target holding the strictly highest count.
func pluralityTargets(counts map[model.VoteTarget]int) []model.VoteTarget {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return nil
	}
	var top []model.VoteTarget
	for target, n := range counts {
		if n == max {
			top = append(top, target)
		}
	}
	return top
}
