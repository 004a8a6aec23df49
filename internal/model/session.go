package model

import (
	"strconv"
	"time"
)

// RequiredPlayers is the only room size the game supports.
const RequiredPlayers = 3

type Phase string

const (
	PhaseRegistering Phase = "registering"
	PhaseReady       Phase = "ready"
	PhaseVoting      Phase = "voting"
	PhaseCompleted   Phase = "completed"
)

type Role string

const (
	RoleUnknown   Role = "unknown"
	RoleSpy       Role = "spy"
	RoleDetective Role = "detective"
)

// GameMode distinguishes a normal game from the degenerate round where
// every player holds the same trait and all of them are spies.
type GameMode string

const (
	ModeClassic  GameMode = "classic"
	ModeAllSpies GameMode = "all_spies"
)

// VoteTarget is either a player id in decimal form or the all-spies sentinel.
type VoteTarget string

const TargetAllSpies VoteTarget = "all_spies"

// TargetPlayer builds the vote target for a specific player.
func TargetPlayer(id int) VoteTarget {
	return VoteTarget(strconv.Itoa(id))
}

func (t VoteTarget) IsAllSpies() bool {
	return t == TargetAllSpies
}

// PlayerID returns the targeted player id, or false for the sentinel
// and for malformed values.
func (t VoteTarget) PlayerID() (int, bool) {
	if t.IsAllSpies() {
		return 0, false
	}
	id, err := strconv.Atoi(string(t))
	if err != nil {
		return 0, false
	}
	return id, true
}

// Player is a participant in a session. Ids are sequential from 1 in
// registration order and never reused within a session.
type Player struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Trait string `json:"trait"`
	Role  Role   `json:"role"`
}

// Session is the full game document stored under one Redis key. The store
// is the only source of truth: sessions are reloaded on every operation and
// never cached in-process.
type Session struct {
	Code            string             `json:"code"`
	ExpectedPlayers int                `json:"expectedPlayers"`
	Phase           Phase              `json:"phase"`
	Players         []Player           `json:"players"`
	HiddenTrait     string             `json:"hiddenTrait,omitempty"`
	Mode            GameMode           `json:"mode,omitempty"`
	Question        string             `json:"question,omitempty"`
	Votes           map[int]VoteTarget `json:"votes"`
	Results         *Results           `json:"results,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// PlayerByID returns the registered player with the given id, or nil.
func (s *Session) PlayerByID(id int) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// RolesAssigned reports whether role assignment has run. HiddenTrait is set
// if and only if every player carries a role.
func (s *Session) RolesAssigned() bool {
	return s.HiddenTrait != ""
}

func (s *Session) IsFull() bool {
	return len(s.Players) >= s.ExpectedPlayers
}
