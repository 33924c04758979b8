// internal/httpserver/ws.go
//
// WebSocket transport for a session. The browser sends the same events as
// the REST endpoints as JSON frames and receives one frame per event.
//
//   client: {"type":"activate"|"new_game"|"utterance"|"speech_done"|"recognition_error",
//            "text":"...", "code":"..."}
//   server: {"type":"output","state":{...},"speaking":bool,"output":{...}}
//           {"type":"error","error":"code"}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/voiceguess/internal/game"
	"github.com/robalobadob/voiceguess/internal/session"
	"github.com/robalobadob/voiceguess/internal/store"
)

type wsIncoming struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Code string `json:"code,omitempty"`
}

type wsOutgoing struct {
	Type     string       `json:"type"`
	State    *game.State  `json:"state,omitempty"`
	Speaking bool         `json:"speaking,omitempty"`
	Output   *game.Output `json:"output,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// wsEvent picks the session method a client frame stands for.
func wsEvent(in wsIncoming) (func(*session.Session) game.Output, bool) {
	switch in.Type {
	case "activate":
		return (*session.Session).Activate, true
	case "new_game":
		return (*session.Session).NewGame, true
	case "speech_done":
		return (*session.Session).SpeechDone, true
	case "utterance":
		return func(s *session.Session) game.Output { return s.Utterance(in.Text) }, true
	case "recognition_error":
		return func(s *session.Session) game.Output { return s.RecognitionError(in.Code) }, true
	}
	return nil, false
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if _, err := s.store.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		log.Warn().Err(err).Str("session", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()
	log.Info().Str("session", id).Msg("websocket connected")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", id).Msg("websocket read")
			}
			return
		}

		var in wsIncoming
		if err := json.Unmarshal(message, &in); err != nil {
			if !s.wsSend(conn, wsOutgoing{Type: "error", Error: "bad_json"}) {
				return
			}
			continue
		}
		fn, ok := wsEvent(in)
		if !ok {
			if !s.wsSend(conn, wsOutgoing{Type: "error", Error: "unknown_type"}) {
				return
			}
			continue
		}

		snap, out, err := s.turn(r.Context(), id, fn)
		if err != nil {
			code := "save_failed"
			if errors.Is(err, store.ErrNotFound) {
				code = "not_found"
			} else {
				log.Error().Err(err).Str("session", id).Msg("session turn")
			}
			s.wsSend(conn, wsOutgoing{Type: "error", Error: code})
			return
		}
		if !s.wsSend(conn, wsOutgoing{Type: "output", State: &snap.State, Speaking: snap.Speaking, Output: &out}) {
			return
		}
	}
}

func (s *Server) wsSend(conn *websocket.Conn, msg wsOutgoing) bool {
	if err := conn.WriteJSON(msg); err != nil {
		log.Warn().Err(err).Msg("websocket write")
		return false
	}
	return true
}
