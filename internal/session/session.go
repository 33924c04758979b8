// internal/session/session.go
//
// Session wraps one player's game state with the speaking flag and turns
// collaborator events into game transitions.
// Responsibilities:
//   - Classify transcripts with the parser the current mode expects.
//   - Track whether the system is speaking and drop input meanwhile.
//   - Map recognition errors to spoken messages or a silent retry.
//
// Notes:
//   - A Session is not safe for concurrent use; callers serialize access
//     (the speech.Driver loop, or the HTTP server's per-session lock).
//   - Snapshot/Restore let a store persist sessions between requests.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/voiceguess/internal/game"
	"github.com/robalobadob/voiceguess/internal/intent"
	"github.com/robalobadob/voiceguess/internal/speech"
)

// Snapshot is the persistable form of a Session.
type Snapshot struct {
	ID        string     `json:"sessionId"`
	State     game.State `json:"state"`
	Speaking  bool       `json:"speaking"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Session is a live game bound to one player.
type Session struct {
	snap Snapshot
	rand game.Picker
	now  func() time.Time
}

// New opens a session with a fresh random id. r may be nil.
func New(r game.Picker) *Session {
	s := &Session{rand: r, now: time.Now}
	s.snap = Snapshot{
		ID:        uuid.NewString(),
		State:     game.NewState(),
		UpdatedAt: s.now().UTC(),
	}
	return s
}

// Restore resumes a previously snapshotted session.
func Restore(snap Snapshot, r game.Picker) *Session {
	return &Session{snap: snap, rand: r, now: time.Now}
}

func (s *Session) ID() string { return s.snap.ID }

// Snapshot returns a copy of the session's persistable state.
func (s *Session) Snapshot() Snapshot { return s.snap }

// Welcome greets the player. The system is speaking afterwards.
func (s *Session) Welcome() game.Output {
	out := game.Welcome(s.snap.State)
	s.commit(s.snap.State, out)
	return out
}

// Activate is the player switching the microphone on. Once the game is
// listening continuously it only resumes listening, which waits for any
// speech in progress to finish. Otherwise it starts game selection, cutting
// off whatever is being said.
func (s *Session) Activate() game.Output {
	if s.snap.State.ContinuousListening {
		out := s.snap.State.Quiet()
		out.Listen = !s.snap.Speaking
		return out
	}
	return s.apply(intent.Start())
}

// NewGame abandons the current round and goes back to game selection. It
// applies even while the system is speaking.
func (s *Session) NewGame() game.Output {
	return s.apply(intent.NewRound())
}

// Utterance feeds a final transcript to the game.
func (s *Session) Utterance(text string) game.Output {
	cmd := intent.Parse(text, s.snap.State.Expect())
	return s.apply(cmd)
}

// SpeechDone is reported once the last line of an Output has been spoken.
func (s *Session) SpeechDone() game.Output {
	s.snap.Speaking = false
	s.snap.UpdatedAt = s.now().UTC()
	out := s.snap.State.Quiet()
	out.Listen = s.snap.State.ContinuousListening
	return out
}

// RecognitionError handles a recognizer failure. A timeout without speech
// while listening continuously is retried silently; everything else is
// announced.
func (s *Session) RecognitionError(code string) game.Output {
	st := s.snap.State
	if s.snap.Speaking {
		out := st.Quiet()
		out.Dropped = true
		return out
	}

	msg, benign := speech.Describe(code)
	if benign && st.ContinuousListening {
		out := st.Quiet()
		out.Retry = true
		return out
	}

	log.Info().Str("session", s.snap.ID).Str("code", code).Msg("recognition error")
	out := st.Announce(game.ToneError, msg, msg)
	s.commit(st, out)
	return out
}

func (s *Session) apply(cmd intent.Command) game.Output {
	prev := s.snap.State
	next, out := game.Transition(prev, cmd, game.Env{Speaking: s.snap.Speaking, Rand: s.rand})
	if out.Dropped {
		log.Info().Str("session", s.snap.ID).Str("heard", cmd.Heard).Msg("input dropped while speaking")
		return out
	}

	log.Debug().
		Str("session", s.snap.ID).
		Str("intent", cmd.Kind.String()).
		Str("heard", cmd.Heard).
		Str("from", prev.Mode.String()).
		Str("to", next.Mode.String()).
		Int("attempts", next.Attempts).
		Msg("transition")
	s.commit(next, out)
	return out
}

func (s *Session) commit(next game.State, out game.Output) {
	s.snap.State = next
	if len(out.Say) > 0 {
		s.snap.Speaking = true
	}
	s.snap.UpdatedAt = s.now().UTC()
}
