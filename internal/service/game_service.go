package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mbtispy/internal/cache"
	"mbtispy/internal/model"
	"mbtispy/internal/repository"
)

// Broadcaster pushes session events to connected watchers.
type Broadcaster interface {
	BroadcastToSession(code string, msgType string, payload interface{})
}

// RoleView is what a single player is allowed to see about the assignment.
// Detectives learn the hidden trait value only once the game completes.
type RoleView struct {
	PlayerID    int         `json:"playerId"`
	Role        model.Role  `json:"role"`
	HiddenTrait string      `json:"hiddenTrait,omitempty"`
	Phase       model.Phase `json:"phase"`
}

// GameService drives the session lifecycle: registering -> ready -> voting
// -> completed. Every mutation runs under the session's distributed lock as
// one load-mutate-save sequence; the store stays the only source of truth.
type GameService struct {
	sessions    repository.SessionRepo
	lock        cache.SessionLock
	questions   *QuestionService
	records     repository.RecordRepo
	broadcaster Broadcaster
}

func NewGameService(sessions repository.SessionRepo, lock cache.SessionLock, questions *QuestionService) *GameService {
	return &GameService{
		sessions:  sessions,
		lock:      lock,
		questions: questions,
	}
}

// SetBroadcaster injects the event sink (the ws hub implements it).
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetRecordRepo enables the consent-based trait archive.
func (s *GameService) SetRecordRepo(records repository.RecordRepo) {
	s.records = records
}

// withSession runs fn under the session lock. The session is saved only when
// fn reports a mutation and returned no error, so a failed validation leaves
// the prior state intact. The lock is released on every path.
func (s *GameService) withSession(ctx context.Context, code string, fn func(sess *model.Session) (bool, error)) error {
	token, err := s.lock.Acquire(ctx, code)
	if err != nil {
		return err
	}
	defer func() {
		// Release with a fresh context so a canceled request cannot leak
		// the lock until its hold timeout.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.lock.Release(releaseCtx, code, token); err != nil {
			log.Printf("Warning: failed to release lock for session %s: %v", code, err)
		}
	}()

	sess, err := s.sessions.Load(ctx, code)
	if err != nil {
		return err
	}
	dirty, err := fn(sess)
	if err != nil {
		return err
	}
	if dirty {
		return s.sessions.Save(ctx, sess)
	}
	return nil
}

func (s *GameService) emit(code string, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(code, msgType, payload)
	}
}

// CreateSession establishes a fresh session in the registering phase.
// The game always runs with exactly three players.
func (s *GameService) CreateSession(ctx context.Context, expectedPlayers int) (*model.Session, error) {
	if expectedPlayers != model.RequiredPlayers {
		return nil, model.NewGameError(model.CodeInvalidConfiguration,
			fmt.Sprintf("the game always uses exactly %d players", model.RequiredPlayers))
	}
	return s.sessions.Create(ctx, expectedPlayers)
}

// RegisterPlayer appends a player and assigns the next sequential id. The
// room stays in registering even when it fills up; role assignment happens
// only on an explicit ConfirmReady, so near-simultaneous registrations can
// never race into a double assignment.
func (s *GameService) RegisterPlayer(ctx context.Context, code, name, trait string, consent bool) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewGameError(model.CodeInvalidName, "player name must not be empty")
	}

	var registered model.Player
	err := s.withSession(ctx, code, func(sess *model.Session) (bool, error) {
		if sess.Phase != model.PhaseRegistering {
			return false, model.NewGameError(model.CodeInvalidPhase, "game already started, new players cannot join")
		}
		for _, p := range sess.Players {
			if p.Name == name {
				return false, model.NewGameError(model.CodeInvalidName, "player name already taken, choose another nickname")
			}
		}
		if sess.IsFull() {
			return false, model.NewGameError(model.CodeRoomFull, "session is full, cannot join")
		}

		registered = model.Player{
			ID:    len(sess.Players) + 1,
			Name:  name,
			Trait: trait,
			Role:  model.RoleUnknown,
		}
		sess.Players = append(sess.Players, registered)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if s.records != nil && consent {
		record := &model.TraitRecord{
			SessionCode: code,
			PlayerName:  registered.Name,
			Trait:       registered.Trait,
			Consent:     true,
		}
		// Archive failures never fail a registration.
		if err := s.records.Insert(ctx, record); err != nil {
			log.Printf("Warning: failed to archive trait record for %s: %v", code, err)
		}
	}

	s.emit(code, "player_joined", map[string]interface{}{
		"playerId": registered.ID,
		"name":     registered.Name,
	})
	return &registered, nil
}

// ConfirmReady runs role assignment once the room is full. With fewer
// players present it reports ready=false without transitioning. Once the
// session is ready, repeated calls return the already-computed assignment.
func (s *GameService) ConfirmReady(ctx context.Context, code string) (*model.Session, bool, error) {
	var (
		view     *model.Session
		ready    bool
		assigned bool
	)
	err := s.withSession(ctx, code, func(sess *model.Session) (bool, error) {
		view = sess
		if sess.RolesAssigned() {
			ready = true
			return false, nil
		}

		if len(sess.Players) < sess.ExpectedPlayers {
			return false, nil
		}

		hidden, mode, err := AssignRoles(sess.Players)
		if err != nil {
			return false, err
		}
		sess.HiddenTrait = hidden
		sess.Mode = mode
		sess.Phase = model.PhaseReady
		sess.Votes = map[int]model.VoteTarget{}
		sess.Results = nil
		if s.questions != nil {
			sess.Question = s.questions.IcebreakerQuestion(ctx, hidden, mode)
		}
		ready = true
		assigned = true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}

	if assigned {
		s.emit(code, "roles_assigned", map[string]interface{}{
			"mode":     view.Mode,
			"question": view.Question,
		})
	}
	return view, ready, nil
}

// SessionStatus loads the session without taking the lock; reads are served
// straight from the store.
func (s *GameService) SessionStatus(ctx context.Context, code string) (*model.Session, error) {
	return s.sessions.Load(ctx, code)
}

// PlayerRole returns what the given player may see of the assignment.
func (s *GameService) PlayerRole(ctx context.Context, code string, playerID int) (*RoleView, error) {
	sess, err := s.sessions.Load(ctx, code)
	if err != nil {
		return nil, err
	}
	player := sess.PlayerByID(playerID)
	if player == nil {
		return nil, model.NewGameError(model.CodeUnknownPlayer, "player does not exist in this session")
	}

	view := &RoleView{
		PlayerID: playerID,
		Role:     player.Role,
		Phase:    sess.Phase,
	}
	if !sess.RolesAssigned() {
		view.Role = model.RoleUnknown
		return view, nil
	}
	// Spies know the trait they carry; detectives learn it at disclosure.
	if player.Role == model.RoleSpy || sess.Phase == model.PhaseCompleted {
		view.HiddenTrait = sess.HiddenTrait
	}
	return view, nil
}

// HiddenTrait returns the selected trait once assignment has run.
func (s *GameService) HiddenTrait(ctx context.Context, code string) (string, model.Phase, error) {
	sess, err := s.sessions.Load(ctx, code)
	if err != nil {
		return "", "", err
	}
	return sess.HiddenTrait, sess.Phase, nil
}

// StartVoting transitions ready -> voting and clears any previous ballots.
// Any other phase is a caller error, not a silent no-op.
func (s *GameService) StartVoting(ctx context.Context, code string) error {
	err := s.withSession(ctx, code, func(sess *model.Session) (bool, error) {
		if sess.Phase != model.PhaseReady {
			return false, model.NewGameError(model.CodeInvalidPhase,
				fmt.Sprintf("voting cannot start from the %s phase", sess.Phase))
		}
		sess.Phase = model.PhaseVoting
		sess.Votes = map[int]model.VoteTarget{}
		sess.Results = nil
		return true, nil
	})
	if err != nil {
		return err
	}
	s.emit(code, "voting_started", map[string]interface{}{})
	return nil
}

// CastVote records one ballot. A later vote from the same voter overwrites
// the earlier one. Returns the current ballot count.
func (s *GameService) CastVote(ctx context.Context, code string, voterID int, target model.VoteTarget) (int, error) {
	var ballots int
	err := s.withSession(ctx, code, func(sess *model.Session) (bool, error) {
		if sess.Phase != model.PhaseVoting {
			return false, model.NewGameError(model.CodeInvalidPhase, "voting has not started yet")
		}
		if sess.PlayerByID(voterID) == nil {
			return false, model.NewGameError(model.CodeUnknownPlayer, "voting player does not exist")
		}
		if target.IsAllSpies() {
			if sess.Mode != model.ModeAllSpies {
				return false, model.NewGameError(model.CodeInvalidTarget,
					"the all_spies option is only available when every player is a spy")
			}
		} else {
			id, ok := target.PlayerID()
			if !ok || sess.PlayerByID(id) == nil {
				return false, model.NewGameError(model.CodeInvalidTarget,
					"vote target must be a registered player id or all_spies")
			}
		}

		sess.Votes[voterID] = target
		ballots = len(sess.Votes)
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	// Ballot contents stay secret until the tally; only the count goes out.
	s.emit(code, "vote_cast", map[string]interface{}{"ballots": ballots})
	return ballots, nil
}

// Results tallies the vote on first call, completes the session and caches
// the outcome so every later call returns the identical document.
func (s *GameService) Results(ctx context.Context, code string) (*model.Results, error) {
	var (
		results  *model.Results
		computed bool
	)
	err := s.withSession(ctx, code, func(sess *model.Session) (bool, error) {
		if sess.Phase == model.PhaseCompleted && sess.Results != nil {
			results = sess.Results
			return false, nil
		}
		if sess.Phase != model.PhaseVoting {
			return false, model.NewGameError(model.CodeInvalidPhase,
				fmt.Sprintf("results are not available in the %s phase", sess.Phase))
		}

		results = TallyResults(sess)
		sess.Results = results
		sess.Phase = model.PhaseCompleted
		computed = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if computed {
		s.emit(code, "results_ready", map[string]interface{}{
			"winnerSide": results.WinnerSide,
			"tie":        results.Tie,
		})
	}
	return results, nil
}

// TraitRecords lists the archived, consented trait records for a session.
func (s *GameService) TraitRecords(ctx context.Context, code string) ([]model.TraitRecord, error) {
	if s.records == nil {
		return []model.TraitRecord{}, nil
	}
	if _, err := s.sessions.Load(ctx, code); err != nil {
		return nil, err
	}
	return s.records.ListBySession(ctx, code)
}
