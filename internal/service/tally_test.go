package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtispy/internal/model"
)

func votingSession(traits []string, hidden string, mode model.GameMode) *model.Session {
	players := makePlayers(traits...)
	for i := range players {
		if players[i].Trait == hidden {
			players[i].Role = model.RoleSpy
		} else {
			players[i].Role = model.RoleDetective
		}
	}
	return &model.Session{
		Code:            "TEST01",
		ExpectedPlayers: model.RequiredPlayers,
		Phase:           model.PhaseVoting,
		Players:         players,
		HiddenTrait:     hidden,
		Mode:            mode,
		Votes:           map[int]model.VoteTarget{},
	}
}

func TestTallyDetectiveWin(t *testing.T) {
	sess := votingSession([]string{"INTJ", "INTJ", "ENFP"}, "ENFP", model.ModeClassic)
	// Both detectives unmask the spy (player 3); the spy votes a detective.
	sess.Votes[1] = model.TargetPlayer(3)
	sess.Votes[2] = model.TargetPlayer(3)
	sess.Votes[3] = model.TargetPlayer(1)

	results := TallyResults(sess)

	assert.Equal(t, model.RoleDetective, results.WinnerSide)
	assert.False(t, results.Tie)
	require.NotNil(t, results.Eliminated)
	assert.Equal(t, 3, results.Eliminated.PlayerID)
	assert.Equal(t, model.RoleSpy, results.Eliminated.Role)
	assert.Equal(t, 3, results.TotalBallots)
}

func TestTallySpySurvives(t *testing.T) {
	sess := votingSession([]string{"INTJ", "INTJ", "ENFP"}, "ENFP", model.ModeClassic)
	// Plurality lands on a detective.
	sess.Votes[1] = model.TargetPlayer(2)
	sess.Votes[2] = model.TargetPlayer(2)
	sess.Votes[3] = model.TargetPlayer(2)

	results := TallyResults(sess)

	assert.Equal(t, model.RoleSpy, results.WinnerSide)
	require.NotNil(t, results.Eliminated)
	assert.Equal(t, model.RoleDetective, results.Eliminated.Role)
}

func TestTallyTieIsSpyWin(t *testing.T) {
	sess := votingSession([]string{"INTJ", "INTJ", "ENFP"}, "ENFP", model.ModeClassic)
	// Two players receive one vote each, one player abstains.
	sess.Votes[1] = model.TargetPlayer(3)
	sess.Votes[3] = model.TargetPlayer(1)

	results := TallyResults(sess)

	assert.True(t, results.Tie)
	assert.Equal(t, model.RoleSpy, results.WinnerSide)
	assert.Nil(t, results.Eliminated)
}

func TestTallyZeroBallotsIsSpyWin(t *testing.T) {
	sess := votingSession([]string{"INTJ", "INTJ", "ENFP"}, "ENFP", model.ModeClassic)

	results := TallyResults(sess)

	assert.True(t, results.Tie)
	assert.Equal(t, model.RoleSpy, results.WinnerSide)
	assert.Equal(t, 0, results.TotalBallots)
}

func TestTallyAllSpiesSplitsWinnersPerVoter(t *testing.T) {
	sess := votingSession([]string{"INFP", "INFP", "INFP"}, "INFP", model.ModeAllSpies)
	sess.Votes[1] = model.TargetAllSpies
	sess.Votes[2] = model.TargetAllSpies
	sess.Votes[3] = model.TargetPlayer(1)

	results := TallyResults(sess)

	assert.Equal(t, model.RoleSpy, results.WinnerSide)
	assert.ElementsMatch(t, []string{"A", "B"}, results.SpyWinners)
	assert.ElementsMatch(t, []string{"C"}, results.SpyLosers)
	assert.Nil(t, results.Eliminated)
	assert.Equal(t, 2, results.AllSpiesVotes)
}

func TestTallyAllSpiesNobodyPicksSentinel(t *testing.T) {
	sess := votingSession([]string{"INFP", "INFP", "INFP"}, "INFP", model.ModeAllSpies)
	sess.Votes[1] = model.TargetPlayer(2)
	sess.Votes[2] = model.TargetPlayer(1)
	sess.Votes[3] = model.TargetPlayer(1)

	results := TallyResults(sess)

	assert.Equal(t, model.RoleSpy, results.WinnerSide)
	assert.Empty(t, results.SpyWinners)
	assert.Len(t, results.SpyLosers, 3)
}

func TestTallyOrdersEntriesByPlayerID(t *testing.T) {
	sess := votingSession([]string{"INTJ", "INTJ", "ENFP"}, "ENFP", model.ModeClassic)
	sess.Votes[2] = model.TargetPlayer(3)

	results := TallyResults(sess)

	require.Len(t, results.Tally, 3)
	for i, entry := range results.Tally {
		assert.Equal(t, i+1, entry.PlayerID)
	}
	assert.Equal(t, 1, results.Tally[2].Votes)
}
