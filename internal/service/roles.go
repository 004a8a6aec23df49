package service

import (
	"fmt"
	"math/rand"

	"mbtispy/internal/model"
)

// AssignRoles derives the hidden trait from the three submitted traits and
// stamps a role on every player in place. Pure apart from the random pick in
// the all-distinct case:
//   - all three traits distinct: one trait is chosen at random as hidden,
//     its holder is the sole spy;
//   - exactly two share a trait: the lone third trait is hidden, its holder
//     is the sole spy;
//   - all three identical: everyone is a spy (degenerate all-spies round).
func AssignRoles(players []model.Player) (string, model.GameMode, error) {
	if len(players) != model.RequiredPlayers {
		return "", "", fmt.Errorf("role assignment requires exactly %d players, got %d", model.RequiredPlayers, len(players))
	}

	counts := make(map[string]int, len(players))
	for _, p := range players {
		counts[p.Trait]++
	}

	var hidden string
	mode := model.ModeClassic
	switch len(counts) {
	case 1:
		hidden = players[0].Trait
		mode = model.ModeAllSpies
	case 2:
		for trait, n := range counts {
			if n == 1 {
				hidden = trait
			}
		}
	default:
		hidden = players[rand.Intn(len(players))].Trait
	}

	for i := range players {
		if players[i].Trait == hidden {
			players[i].Role = model.RoleSpy
		} else {
			players[i].Role = model.RoleDetective
		}
	}
	return hidden, mode, nil
}
