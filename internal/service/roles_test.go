package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtispy/internal/model"
)

func makePlayers(traits ...string) []model.Player {
	players := make([]model.Player, len(traits))
	for i, trait := range traits {
		players[i] = model.Player{
			ID:    i + 1,
			Name:  string(rune('A' + i)),
			Trait: trait,
			Role:  model.RoleUnknown,
		}
	}
	return players
}

func TestAssignRolesAllSameTrait(t *testing.T) {
	players := makePlayers("INFP", "INFP", "INFP")

	hidden, mode, err := AssignRoles(players)
	require.NoError(t, err)

	assert.Equal(t, "INFP", hidden)
	assert.Equal(t, model.ModeAllSpies, mode)
	for _, p := range players {
		assert.Equal(t, model.RoleSpy, p.Role, "player %d should be a spy", p.ID)
	}
}

func TestAssignRolesTwoShareTrait(t *testing.T) {
	players := makePlayers("INTJ", "INTJ", "ENFP")

	hidden, mode, err := AssignRoles(players)
	require.NoError(t, err)

	assert.Equal(t, "ENFP", hidden)
	assert.Equal(t, model.ModeClassic, mode)
	assert.Equal(t, model.RoleDetective, players[0].Role)
	assert.Equal(t, model.RoleDetective, players[1].Role)
	assert.Equal(t, model.RoleSpy, players[2].Role)
}

func TestAssignRolesAllDistinctTraits(t *testing.T) {
	players := makePlayers("INTJ", "ENFP", "ISTP")

	hidden, mode, err := AssignRoles(players)
	require.NoError(t, err)

	assert.Equal(t, model.ModeClassic, mode)
	assert.Contains(t, []string{"INTJ", "ENFP", "ISTP"}, hidden)

	spies := 0
	for _, p := range players {
		if p.Role == model.RoleSpy {
			spies++
			assert.Equal(t, hidden, p.Trait, "the spy's trait must equal the hidden trait")
		} else {
			assert.Equal(t, model.RoleDetective, p.Role)
		}
	}
	assert.Equal(t, 1, spies, "all-distinct traits yield exactly one spy")
}

func TestAssignRolesWrongPlayerCount(t *testing.T) {
	_, _, err := AssignRoles(makePlayers("INTJ", "ENFP"))
	assert.Error(t, err)
}
