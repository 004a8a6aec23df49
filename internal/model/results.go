package model

// TallyEntry is the per-player vote count in the results payload.
type TallyEntry struct {
	PlayerID int    `json:"playerId"`
	Name     string `json:"name"`
	Votes    int    `json:"votes"`
}

// EliminatedPlayer is the player unmasked by a unique plurality vote.
type EliminatedPlayer struct {
	PlayerID int    `json:"playerId"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// Results is the tally outcome computed once at completion and cached on
// the session so repeated reads return the identical document.
type Results struct {
	WinnerSide      Role              `json:"winnerSide"`
	Tie             bool              `json:"tie"`
	Tally           []TallyEntry      `json:"tally"`
	AllSpiesVotes   int               `json:"allSpiesVotes"`
	TotalBallots    int               `json:"totalBallots"`
	ExpectedBallots int               `json:"expectedBallots"`
	Eliminated      *EliminatedPlayer `json:"eliminatedPlayer,omitempty"`
	SpyWinners      []string          `json:"spyWinners,omitempty"`
	SpyLosers       []string          `json:"spyLosers,omitempty"`
	Message         string            `json:"message"`
}
