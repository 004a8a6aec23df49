package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtispy/internal/config"
	"mbtispy/internal/repository"
	"mbtispy/internal/service"
	"mbtispy/internal/testutil"
	"mbtispy/internal/transport/rest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sessions := repository.NewSessionRepo(testutil.NewMemorySessionCache())
	lock := testutil.NewMemoryLock()
	questions := service.NewQuestionServiceWith(&config.LLMConfig{TimeoutMS: 1000})
	gameSvc := service.NewGameService(sessions, lock, questions)

	srv := httptest.NewServer(rest.NewRouter(&rest.Container{GameService: gameSvc}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/sessions", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, status)
	code, _ := body["sessionCode"].(string)
	require.Len(t, code, 6)
	return code
}

func TestCreateSessionRejectsCustomSize(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/sessions", map[string]interface{}{
		"expectedPlayers": 4,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidConfiguration", body["code"])
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	code := createSession(t, srv)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/v1/sessions/"+code+"/register", map[string]interface{}{
		"playerName": "alice",
		"trait":      "WXYZ",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "four-letter")

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/sessions/NOSUCH/register", map[string]interface{}{
		"playerName": "alice",
		"trait":      "INTJ",
	})
	assert.Equal(t, http.StatusNotFound, status)

	// Lowercase traits are normalized at the facade.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/v1/sessions/"+code+"/register", map[string]interface{}{
		"playerName": "alice",
		"trait":      "intj",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["playerId"])
	assert.Equal(t, "unknown", body["role"])
}

func TestFullGameOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	code := createSession(t, srv)
	base := srv.URL + "/v1/sessions/" + code

	for i, reg := range []struct {
		name, trait string
	}{
		{"alice", "INTJ"}, {"bob", "INTJ"}, {"carol", "ENFP"},
	} {
		status, body := doJSON(t, http.MethodPost, base+"/register", map[string]interface{}{
			"playerName": reg.name,
			"trait":      reg.trait,
		})
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, float64(i+1), body["playerId"])
	}

	// Results are refused until voting has begun.
	status, body := doJSON(t, http.MethodGet, base+"/results", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidPhase", body["code"])

	status, body = doJSON(t, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["ready"])
	assert.Equal(t, "ENFP", body["hiddenTrait"])
	assert.NotEmpty(t, body["question"])

	// The ENFP player is the spy and sees the hidden trait.
	status, body = doJSON(t, http.MethodGet, base+"/role/3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "spy", body["role"])
	assert.Equal(t, "ENFP", body["hiddenTrait"])

	// A detective sees only the role before disclosure.
	status, body = doJSON(t, http.MethodGet, base+"/role/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "detective", body["role"])
	assert.Empty(t, body["hiddenTrait"])

	status, _ = doJSON(t, http.MethodPost, base+"/vote/start", nil)
	require.Equal(t, http.StatusOK, status)

	for voter, target := range map[int]interface{}{1: 3, 2: 3, 3: 1} {
		status, _ = doJSON(t, http.MethodPost, base+"/vote", map[string]interface{}{
			"playerId": voter,
			"voteFor":  target,
		})
		require.Equal(t, http.StatusOK, status)
	}

	// The sentinel stays rejected outside the all-spies round.
	status, body = doJSON(t, http.MethodPost, base+"/vote", map[string]interface{}{
		"playerId": 1,
		"voteFor":  "all_spies",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidTarget", body["code"])

	status, body = doJSON(t, http.MethodGet, base+"/results", nil)
	require.Equal(t, http.StatusOK, status)
	results := body["results"].(map[string]interface{})
	assert.Equal(t, "detective", results["winnerSide"])
	assert.Equal(t, float64(3), results["totalBallots"])

	// Idempotent re-read of the cached outcome.
	status, again := doJSON(t, http.MethodGet, base+"/results", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, body["results"], again["results"])
}

func TestRoomFullOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	code := createSession(t, srv)
	base := srv.URL + "/v1/sessions/" + code

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, http.MethodPost, base+"/register", map[string]interface{}{
			"playerName": fmt.Sprintf("player%d", i+1),
			"trait":      "INTJ",
		})
		require.Equal(t, http.StatusOK, status)
	}

	status, body := doJSON(t, http.MethodPost, base+"/register", map[string]interface{}{
		"playerName": "latecomer",
		"trait":      "ENFP",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "RoomFull", body["code"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
