package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"mbtispy/internal/model"
	"mbtispy/internal/service"
)

// SessionHandler handles the game endpoints.
type SessionHandler struct {
	gameSvc *service.GameService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(gameSvc *service.GameService) *SessionHandler {
	return &SessionHandler{gameSvc: gameSvc}
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	ExpectedPlayers *int `json:"expectedPlayers,omitempty"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "", "invalid request body")
			return
		}
	}

	expected := model.RequiredPlayers
	if req.ExpectedPlayers != nil {
		expected = *req.ExpectedPlayers
	}

	session, err := h.gameSvc.CreateSession(r.Context(), expected)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionCode":     session.Code,
		"expectedPlayers": session.ExpectedPlayers,
	})
}

// RegisterRequest is the request body for joining a session.
type RegisterRequest struct {
	PlayerName string `json:"playerName"`
	Trait      string `json:"trait"`
	Consent    bool   `json:"consent"`
}

// Register handles POST /v1/sessions/{code}/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	trait, err := normalizeTrait(req.Trait)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(model.CodeInvalidConfiguration), err.Error())
		return
	}

	player, err := h.gameSvc.RegisterPlayer(r.Context(), code, req.PlayerName, trait, req.Consent)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"playerId":    player.ID,
		"playerName":  player.Name,
		"role":        player.Role,
	})
}

// ListPlayers handles GET /v1/sessions/{code}/players
func (h *SessionHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	session, err := h.gameSvc.SessionStatus(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}

	players := make([]map[string]interface{}, 0, len(session.Players))
	for _, p := range session.Players {
		players = append(players, map[string]interface{}{
			"id":    p.ID,
			"name":  p.Name,
			"trait": p.Trait,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode":     code,
		"phase":           session.Phase,
		"players":         players,
		"expectedPlayers": session.ExpectedPlayers,
	})
}

// Status handles GET /v1/sessions/{code}/status — a side-effect-free view.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	session, err := h.gameSvc.SessionStatus(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode":       code,
		"phase":             session.Phase,
		"registeredPlayers": len(session.Players),
		"expectedPlayers":   session.ExpectedPlayers,
		"rolesAssigned":     session.RolesAssigned(),
	})
}

// ConfirmReady handles POST /v1/sessions/{code}/confirm
func (h *SessionHandler) ConfirmReady(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	session, ready, err := h.gameSvc.ConfirmReady(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}

	if !ready {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessionCode":       code,
			"ready":             false,
			"message":           "waiting for all players to register",
			"registeredPlayers": len(session.Players),
			"expectedPlayers":   session.ExpectedPlayers,
		})
		return
	}

	roles := make(map[string]model.Role, len(session.Players))
	for _, p := range session.Players {
		roles[strconv.Itoa(p.ID)] = p.Role
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"ready":       true,
		"phase":       session.Phase,
		"hiddenTrait": session.HiddenTrait,
		"mode":        session.Mode,
		"question":    session.Question,
		"roles":       roles,
	})
}

// Role handles GET /v1/sessions/{code}/role/{playerId}
func (h *SessionHandler) Role(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]
	playerID, err := strconv.Atoi(vars["playerId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, string(model.CodeUnknownPlayer), "playerId must be an integer")
		return
	}

	view, err := h.gameSvc.PlayerRole(r.Context(), code, playerID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"playerId":    view.PlayerID,
		"role":        view.Role,
		"hiddenTrait": view.HiddenTrait,
		"phase":       view.Phase,
	})
}

// HiddenTrait handles GET /v1/sessions/{code}/trait
func (h *SessionHandler) HiddenTrait(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	trait, phase, err := h.gameSvc.HiddenTrait(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if trait == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessionCode": code,
			"phase":       phase,
			"message":     "the hidden trait has not been determined yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"hiddenTrait": trait,
	})
}

// StartVoting handles POST /v1/sessions/{code}/vote/start
func (h *SessionHandler) StartVoting(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if err := h.gameSvc.StartVoting(r.Context(), code); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"phase":       model.PhaseVoting,
	})
}

// CastVoteRequest is the request body for casting a ballot. voteFor is a
// player id or the string "all_spies".
type CastVoteRequest struct {
	PlayerID int             `json:"playerId"`
	VoteFor  json.RawMessage `json:"voteFor"`
}

// CastVote handles POST /v1/sessions/{code}/vote
func (h *SessionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	target, err := parseVoteTarget(req.VoteFor)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(model.CodeInvalidTarget), err.Error())
		return
	}

	ballots, err := h.gameSvc.CastVote(r.Context(), code, req.PlayerID, target)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"playerId":    req.PlayerID,
		"voteFor":     target,
		"ballots":     ballots,
	})
}

// Results handles GET /v1/sessions/{code}/results
func (h *SessionHandler) Results(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	results, err := h.gameSvc.Results(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"results":     results,
	})
}

// Records handles GET /v1/sessions/{code}/records
func (h *SessionHandler) Records(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	records, err := h.gameSvc.TraitRecords(r.Context(), code)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionCode": code,
		"records":     records,
	})
}

var traitLetters = map[rune]bool{
	'I': true, 'E': true, 'S': true, 'N': true,
	'T': true, 'F': true, 'P': true, 'J': true,
}

// normalizeTrait uppercases the submitted type code and checks its shape.
// The state machine itself treats traits as opaque; the shape rule lives
// here at the facade.
func normalizeTrait(value string) (string, error) {
	candidate := strings.ToUpper(strings.TrimSpace(value))
	if candidate == "" {
		return "", errInvalidTrait
	}
	if len(candidate) != 4 {
		return "", errInvalidTrait
	}
	for _, letter := range candidate {
		if !traitLetters[letter] {
			return "", errInvalidTrait
		}
	}
	return candidate, nil
}

func parseVoteTarget(raw json.RawMessage) (model.VoteTarget, error) {
	if len(raw) == 0 {
		return "", errInvalidVote
	}
	var id int
	if err := json.Unmarshal(raw, &id); err == nil {
		return model.TargetPlayer(id), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.ToLower(strings.TrimSpace(s)) == string(model.TargetAllSpies) {
			return model.TargetAllSpies, nil
		}
	}
	return "", errInvalidVote
}
