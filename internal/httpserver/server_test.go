package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/voiceguess/internal/config"
	"github.com/robalobadob/voiceguess/internal/game"
	"github.com/robalobadob/voiceguess/internal/session"
	"github.com/robalobadob/voiceguess/internal/store"
)

type fixedPicker int

func (f fixedPicker) IntN(n int) int { return min(int(f), n-1) }

func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		ClientOrigins:    []string{"http://localhost:5173"},
		SessionSecret:    "test-secret",
		SessionTTL:       time.Hour,
		CookieName:       "voiceguess_session",
		StoreDriver:      "memory",
		ListenRetryDelay: 500 * time.Millisecond,
		RequestTimeout:   5 * time.Second,
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(testConfig(), store.NewMemoryStore())
	srv.rand = fixedPicker(41)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var rd bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&rd).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &rd)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	var out map[string]any
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

// openSession creates a session and finishes the welcome utterance.
func openSession(t *testing.T, base string) *client {
	t.Helper()
	c := &client{t: t, base: base}
	code, body := c.do(http.MethodPost, "/session/new", nil)
	require.Equal(t, http.StatusOK, code)
	c.token, _ = body["token"].(string)
	require.NotEmpty(t, c.token)
	code, _ = c.do(http.MethodPost, "/session/speech-done", nil)
	require.Equal(t, http.StatusOK, code)
	return c
}

func mode(body map[string]any) string {
	st, _ := body["state"].(map[string]any)
	m, _ := st["mode"].(string)
	return m
}

func firstLine(body map[string]any) string {
	out, _ := body["output"].(map[string]any)
	say, _ := out["say"].([]any)
	if len(say) == 0 {
		return ""
	}
	u, _ := say[0].(map[string]any)
	text, _ := u["text"].(string)
	return text
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	code, body := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])

	code, body = c.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"])
}

func TestNewSession(t *testing.T) {
	_, ts := newTestServer(t)
	res, err := http.Post(ts.URL+"/session/new", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body newSessionRes
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.NotEmpty(t, body.SessionID)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, int64(500), body.RetryDelayMs)
	assert.Equal(t, game.ModeWaiting, body.State.Mode)
	require.Len(t, body.Output.Say, 1)

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == "voiceguess_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, body.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestSessionRequiresToken(t *testing.T) {
	_, ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	code, body := c.do(http.MethodPost, "/session/activate", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["error"])

	c.token = "not-a-jwt"
	code, body = c.do(http.MethodPost, "/session/activate", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", body["error"])
}

func TestTokenForeignSecret(t *testing.T) {
	srv, ts := newTestServer(t)
	other := New(config.Config{SessionSecret: "other", ClientOrigins: []string{"*"}, RequestTimeout: time.Second},
		store.NewMemoryStore())
	tok, err := other.signToken("abc")
	require.NoError(t, err)

	_, err = srv.parseToken(tok)
	assert.Error(t, err)

	c := &client{t: t, base: ts.URL, token: tok}
	code, _ := c.do(http.MethodGet, "/session/state", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestClassicGameOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)
	c := openSession(t, ts.URL)

	code, body := c.do(http.MethodPost, "/session/activate", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "selecting_game", mode(body))
	assert.Equal(t, true, body["speaking"])

	// Transcripts are dropped until the browser reports speech done.
	_, body = c.do(http.MethodPost, "/session/utterance", utteranceReq{Text: "guess my number"})
	assert.Equal(t, "selecting_game", mode(body))
	out, _ := body["output"].(map[string]any)
	assert.Equal(t, true, out["dropped"])

	_, body = c.do(http.MethodPost, "/session/speech-done", nil)
	out, _ = body["output"].(map[string]any)
	assert.Equal(t, true, out["listen"])

	steps := []struct {
		text, mode string
	}{
		{"guess my number", "classic_setup"},
		{"one hundred", "classic_playing"},
		{"ten", "classic_playing"},
		{"forty two", "classic_won"},
	}
	for _, st := range steps {
		code, body = c.do(http.MethodPost, "/session/utterance", utteranceReq{Text: st.text})
		require.Equal(t, http.StatusOK, code, st.text)
		require.Equal(t, st.mode, mode(body), st.text)
		c.do(http.MethodPost, "/session/speech-done", nil)
	}
	assert.Contains(t, firstLine(body), "The number was 42")
	state, _ := body["state"].(map[string]any)
	_, leaked := state["targetNumber"]
	assert.False(t, leaked)

	code, body = c.do(http.MethodGet, "/session/state", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "classic_won", mode(body))
}

func TestNewGameWithoutSpeechDone(t *testing.T) {
	_, ts := newTestServer(t)
	c := openSession(t, ts.URL)

	c.do(http.MethodPost, "/session/activate", nil)
	c.do(http.MethodPost, "/session/speech-done", nil)
	_, body := c.do(http.MethodPost, "/session/utterance", utteranceReq{Text: "guess my number"})
	require.Equal(t, "classic_setup", mode(body))
	require.Equal(t, true, body["speaking"])

	// The browser never reports speech done; the restart button still works.
	code, body := c.do(http.MethodPost, "/session/new-game", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "selecting_game", mode(body))
	out, _ := body["output"].(map[string]any)
	assert.Nil(t, out["dropped"])
	assert.NotEmpty(t, firstLine(body))
}

func TestRecognitionErrorOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)
	c := openSession(t, ts.URL)
	c.do(http.MethodPost, "/session/activate", nil)
	c.do(http.MethodPost, "/session/speech-done", nil)

	_, body := c.do(http.MethodPost, "/session/recognition-error", recognitionErrorReq{Code: "no-speech"})
	out, _ := body["output"].(map[string]any)
	assert.Equal(t, true, out["retry"])
	assert.Equal(t, false, body["speaking"])

	_, body = c.do(http.MethodPost, "/session/recognition-error", recognitionErrorReq{Code: "network"})
	assert.Equal(t, "Network error. Please check your internet connection!", firstLine(body))
	out, _ = body["output"].(map[string]any)
	assert.Equal(t, "error", out["tone"])
}

func TestBadJSON(t *testing.T) {
	_, ts := newTestServer(t)
	c := openSession(t, ts.URL)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/session/utterance", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+c.token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	_, ts := newTestServer(t)
	c := openSession(t, ts.URL)

	code, _ := c.do(http.MethodDelete, "/session", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body := c.do(http.MethodPost, "/session/activate", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["error"])

	code, _ = c.do(http.MethodDelete, "/session", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWebSocketReverseGame(t *testing.T) {
	_, ts := newTestServer(t)
	c := openSession(t, ts.URL)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/session/ws?token=" + c.token
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer res.Body.Close()
	defer conn.Close()

	send := func(in wsIncoming) wsOutgoing {
		t.Helper()
		require.NoError(t, conn.WriteJSON(in))
		var out wsOutgoing
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, conn.ReadJSON(&out))
		return out
	}
	turn := func(text string) wsOutgoing {
		t.Helper()
		out := send(wsIncoming{Type: "utterance", Text: text})
		require.Equal(t, "output", out.Type, out.Error)
		send(wsIncoming{Type: "speech_done"})
		return out
	}

	out := send(wsIncoming{Type: "activate"})
	require.Equal(t, "output", out.Type)
	send(wsIncoming{Type: "speech_done"})

	turn("you guess my number")
	out = turn("one hundred")
	require.NotNil(t, out.State)
	assert.Equal(t, game.ModeReversePlaying, out.State.Mode)
	assert.Equal(t, 50, out.State.CurrentGuess)

	out = turn("too low")
	assert.Equal(t, 75, out.State.CurrentGuess)
	out = turn("correct")
	assert.Equal(t, game.ModeReverseWon, out.State.Mode)
	assert.Equal(t, game.ToneCelebration, out.Output.Tone)

	out = send(wsIncoming{Type: "dance"})
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, "unknown_type", out.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	var bad wsOutgoing
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, "bad_json", bad.Error)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	_, ts := newTestServer(t)
	c := openSession(t, ts.URL)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/session/ws?token=" + c.token
	_, res, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, res)
	defer res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestJanitorPrunesIdleSessions(t *testing.T) {
	st := store.NewMemoryStore()
	cfg := testConfig()
	cfg.SessionTTL = time.Minute
	srv := New(cfg, st)

	ctx := context.Background()
	stale := session.New(nil).Snapshot()
	stale.UpdatedAt = time.Now().Add(-time.Hour)
	fresh := session.New(nil).Snapshot()
	require.NoError(t, st.Save(ctx, stale))
	require.NoError(t, st.Save(ctx, fresh))

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		srv.Janitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := st.Get(context.Background(), stale.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond)
	_, err := st.Get(context.Background(), fresh.ID)
	assert.NoError(t, err)

	cancel()
	<-done
}

func TestSessionLocks(t *testing.T) {
	l := newSessionLocks()
	unlock := l.lock("a")
	acquired := make(chan struct{})
	go func() {
		u := l.lock("a")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-acquired

	assert.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return len(l.m) == 0
	}, time.Second, time.Millisecond)
}
