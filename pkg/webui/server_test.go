package webui_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybf/pkg/session"
	"tinybf/pkg/webui"
)

func newTestServer(t *testing.T, opts ...webui.Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(webui.NewServer(session.NewStore(), opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// request sends a JSON body and decodes the JSON answer into out.
func request(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type errorBody struct {
	Detail string `json:"detail"`
}

func createSession(t *testing.T, srv *httptest.Server, body map[string]any) webui.SessionPayload {
	t.Helper()
	var payload webui.SessionPayload
	status := request(t, http.MethodPost, srv.URL+"/api/session", body, &payload)
	require.Equal(t, http.StatusCreated, status)
	return payload
}

func TestCreateTinySession(t *testing.T) {
	srv := newTestServer(t)
	src := "let char c = 'H'\nprint_char c"

	payload := createSession(t, srv, map[string]any{
		"code":     src,
		"language": "tinybf",
	})

	assert.NotEmpty(t, payload.SessionID)
	assert.Equal(t, "tinybf", payload.Language)
	require.NotNil(t, payload.OriginalSource)
	assert.Equal(t, src, *payload.OriginalSource)
	assert.NotEqual(t, src, payload.Code)
	assert.Equal(t, 0, payload.State.PC)
	assert.False(t, payload.Finished)
	assert.Equal(t, 1, payload.HistorySize)
	assert.Greater(t, payload.TotalSteps, 0)
	assert.Empty(t, payload.Breakpoints)
	assert.Nil(t, payload.HitBreakpoint)
}

func TestCreateRawSessionDefaultsLanguage(t *testing.T) {
	srv := newTestServer(t)
	payload := createSession(t, srv, map[string]any{"code": "+++."})
	assert.Equal(t, "brainfuck", payload.Language)
	assert.Nil(t, payload.OriginalSource)
	assert.Equal(t, "+++.", payload.Code)
}

func TestCreateCompileError(t *testing.T) {
	srv := newTestServer(t)
	var errBody errorBody
	status := request(t, http.MethodPost, srv.URL+"/api/session", map[string]any{
		"code":     "frob x",
		"language": "tinybf",
	}, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, errBody.Detail, "syntax error")
}

func TestCreateUnknownLanguage(t *testing.T) {
	srv := newTestServer(t)
	var errBody errorBody
	status := request(t, http.MethodPost, srv.URL+"/api/session", map[string]any{
		"code":     "+",
		"language": "cobol",
	}, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, errBody.Detail, "cobol")
}

func TestGetSession(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{"code": "+++."})

	var payload webui.SessionPayload
	status := request(t, http.MethodGet, srv.URL+"/api/session/"+created.SessionID, nil, &payload)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.SessionID, payload.SessionID)

	status = request(t, http.MethodGet, srv.URL+"/api/session/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStepSession(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{"code": "++++"})

	var resp webui.StepResponse
	status := request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/step",
		map[string]any{"count": 2}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp.States, 2)
	assert.Equal(t, 3, resp.HistorySize, "initial snapshot plus two new ones")
	assert.False(t, resp.Finished)

	// Default count is one step.
	status = request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/step",
		map[string]any{}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp.States, 1)
}

func TestStepCeilingConflict(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{
		"code":      strings.Repeat("+", 20),
		"max_steps": 5,
	})

	var resp webui.StepResponse
	status := request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/step",
		map[string]any{"count": 5}, &resp)
	require.Equal(t, http.StatusOK, status)

	var errBody errorBody
	status = request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/step",
		map[string]any{"count": 1}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, errBody.Detail, "step count")

	// After a reset the session steps again.
	var payload webui.SessionPayload
	status = request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/reset", nil, &payload)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, payload.TotalStepsCapped)

	status = request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/step",
		map[string]any{"count": 1}, &resp)
	assert.Equal(t, http.StatusOK, status)
}

func TestRunUntilBreakpoint(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{"code": strings.Repeat("+", 10)})

	var payload webui.SessionPayload
	status := request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/breakpoints",
		map[string]any{"pc": 4}, &payload)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int{4}, payload.Breakpoints)

	var resp webui.StepResponse
	status = request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/run",
		map[string]any{}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.HitBreakpoint)
	assert.Equal(t, 4, *resp.HitBreakpoint)
	assert.False(t, resp.Finished)

	status = request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/run",
		map[string]any{"ignore_breakpoints": true}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp.HitBreakpoint)
	assert.True(t, resp.Finished)
}

func TestRunFinishesProgram(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{"code": ",+.", "input": ")"})

	var resp webui.StepResponse
	status := request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/run",
		map[string]any{}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Finished)
	require.NotEmpty(t, resp.States)
	last := resp.States[len(resp.States)-1]
	assert.Equal(t, "*", last.Output)
	assert.Nil(t, last.Command)
}

func TestBreakpointValidation(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{"code": "++++"})
	base := srv.URL + "/api/session/" + created.SessionID + "/breakpoints"

	var errBody errorBody
	status := request(t, http.MethodPost, base, map[string]any{"pc": 99}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)

	var payload webui.SessionPayload
	status = request(t, http.MethodPost, base, map[string]any{"pc": 2}, &payload)
	require.Equal(t, http.StatusOK, status)

	status = request(t, http.MethodDelete, base+"/2", nil, &payload)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, payload.Breakpoints)

	status = request(t, http.MethodDelete, base+"/2", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestResetKeepsBreakpoints(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{"code": "++++"})
	id := created.SessionID

	var payload webui.SessionPayload
	status := request(t, http.MethodPost, srv.URL+"/api/session/"+id+"/breakpoints",
		map[string]any{"pc": 2}, &payload)
	require.Equal(t, http.StatusOK, status)

	var resp webui.StepResponse
	status = request(t, http.MethodPost, srv.URL+"/api/session/"+id+"/step",
		map[string]any{"count": 3}, &resp)
	require.Equal(t, http.StatusOK, status)

	status = request(t, http.MethodPost, srv.URL+"/api/session/"+id+"/reset", nil, &payload)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, payload.State.Step)
	assert.Equal(t, 1, payload.HistorySize)
	assert.Equal(t, []int{2}, payload.Breakpoints)
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t)
	created := createSession(t, srv, map[string]any{"code": "+"})

	status := request(t, http.MethodDelete, srv.URL+"/api/session/"+created.SessionID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = request(t, http.MethodGet, srv.URL+"/api/session/"+created.SessionID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = request(t, http.MethodDelete, srv.URL+"/api/session/"+created.SessionID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServerDefaultsApply(t *testing.T) {
	srv := newTestServer(t, webui.WithDefaultMaxSteps(5))
	created := createSession(t, srv, map[string]any{"code": strings.Repeat("+", 20)})

	var errBody errorBody
	status := request(t, http.MethodPost, srv.URL+"/api/session/"+created.SessionID+"/step",
		map[string]any{"count": 10}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
}
