// internal/httpserver/routes_session.go
//
// Session endpoints. Each maps one browser event onto the session:
//
//   POST   /session/new                 -> create session, speak welcome
//   POST   /session/activate            -> microphone switched on
//   POST   /session/new-game            -> restart button
//   POST   /session/utterance           -> final transcript {text}
//   POST   /session/speech-done         -> last utterance finished playing
//   POST   /session/recognition-error   -> recognizer failure {code}
//   GET    /session/state               -> current state
//   DELETE /session                     -> end the session
//
// Every event answers with the new state and the Output the browser must
// act on (speak, show, listen, retry).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/voiceguess/internal/game"
	"github.com/robalobadob/voiceguess/internal/session"
	"github.com/robalobadob/voiceguess/internal/store"
)

type newSessionRes struct {
	SessionID    string      `json:"sessionId"`
	Token        string      `json:"token"`
	RetryDelayMs int64       `json:"retryDelayMs"`
	State        game.State  `json:"state"`
	Output       game.Output `json:"output"`
}

type turnRes struct {
	State    game.State  `json:"state"`
	Speaking bool        `json:"speaking"`
	Output   game.Output `json:"output"`
}

type utteranceReq struct {
	Text string `json:"text"`
}

type recognitionErrorReq struct {
	Code string `json:"code"`
}

func (s *Server) mountSessionRoutes(r chi.Router) {
	r.Post("/session/new", s.handleNewSession)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession())

		r.Post("/session/activate", func(w http.ResponseWriter, r *http.Request) {
			s.respondTurn(w, r, (*session.Session).Activate)
		})
		r.Post("/session/new-game", func(w http.ResponseWriter, r *http.Request) {
			s.respondTurn(w, r, (*session.Session).NewGame)
		})
		r.Post("/session/speech-done", func(w http.ResponseWriter, r *http.Request) {
			s.respondTurn(w, r, (*session.Session).SpeechDone)
		})
		r.Post("/session/utterance", s.handleUtterance)
		r.Post("/session/recognition-error", s.handleRecognitionError)
		r.Get("/session/state", s.handleState)
		r.Delete("/session", s.handleDeleteSession)
	})
}

// handleNewSession opens a session, speaks the welcome, and hands out the
// session token.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	sess := session.New(s.rand)
	out := sess.Welcome()
	snap := sess.Snapshot()

	if err := s.store.Save(r.Context(), snap); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, err := s.signToken(snap.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok)

	log.Info().Str("session", snap.ID).Msg("session opened")
	writeJSON(w, http.StatusOK, newSessionRes{
		SessionID:    snap.ID,
		Token:        tok,
		RetryDelayMs: s.cfg.ListenRetryDelay.Milliseconds(),
		State:        snap.State,
		Output:       out,
	})
}

func (s *Server) handleUtterance(w http.ResponseWriter, r *http.Request) {
	var req utteranceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.respondTurn(w, r, func(sess *session.Session) game.Output {
		return sess.Utterance(req.Text)
	})
}

func (s *Server) handleRecognitionError(w http.ResponseWriter, r *http.Request) {
	var req recognitionErrorReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.respondTurn(w, r, func(sess *session.Session) game.Output {
		return sess.RecognitionError(req.Code)
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), sessionID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	unlock := s.locks.lock(id)
	defer unlock()

	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	s.clearSessionCookie(w)
	log.Info().Str("session", id).Msg("session closed")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// respondTurn runs fn against the request's session and writes the result.
func (s *Server) respondTurn(w http.ResponseWriter, r *http.Request, fn func(*session.Session) game.Output) {
	snap, out, err := s.turn(r.Context(), sessionID(r), fn)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session", sessionID(r)).Msg("session turn")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, turnRes{State: snap.State, Speaking: snap.Speaking, Output: out})
}

// turn loads session id, applies fn and saves the result, all under the
// session's lock.
func (s *Server) turn(ctx context.Context, id string, fn func(*session.Session) game.Output) (session.Snapshot, game.Output, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return session.Snapshot{}, game.Output{}, err
	}
	sess := session.Restore(snap, s.rand)
	out := fn(sess)
	next := sess.Snapshot()
	if err := s.store.Save(ctx, next); err != nil {
		return session.Snapshot{}, game.Output{}, fmt.Errorf("save session: %w", err)
	}
	return next, out, nil
}

// sessionLocks hands out one mutex per session ID, dropping it once no
// request holds or waits for it.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{m: make(map[string]*lockEntry)}
}

func (l *sessionLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.m[id]
	if !ok {
		e = &lockEntry{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
