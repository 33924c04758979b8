// internal/game/types.go
//
// Core type definitions for the game controller.
// Defines:
//   - Mode: the finite set of controller states.
//   - State: the single mutable record of a player's game.
//   - Utterance/Output: instructions for the speech and display collaborators.
//   - Env: per-call inputs that are not part of the state (busy flag, randomness).

package game

import "fmt"

// Mode is the controller state.
type Mode int

const (
	ModeWaiting Mode = iota
	ModeSelectingGame
	ModeClassicSetup
	ModeClassicPlaying
	ModeClassicWon
	ModeReverseSetup
	ModeReversePlaying
	ModeReverseWon
)

var modeNames = map[Mode]string{
	ModeWaiting:        "waiting",
	ModeSelectingGame:  "selecting_game",
	ModeClassicSetup:   "classic_setup",
	ModeClassicPlaying: "classic_playing",
	ModeClassicWon:     "classic_won",
	ModeReverseSetup:   "reverse_setup",
	ModeReversePlaying: "reverse_playing",
	ModeReverseWon:     "reverse_won",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeWaiting, fmt.Errorf("game: unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// State holds everything the controller knows about one player's game.
// TargetNumber and CurrentGuess are 0 when unset; valid values start at 1.
type State struct {
	Mode                Mode `json:"mode"`
	MaxNumber           int  `json:"maxNumber"`
	Attempts            int  `json:"attempts"`
	TargetNumber        int  `json:"-"` // never sent to the client
	LowBound            int  `json:"lowBound,omitempty"`
	HighBound           int  `json:"highBound,omitempty"`
	CurrentGuess        int  `json:"currentGuess,omitempty"`
	ContinuousListening bool `json:"continuousListening"`
}

// Tone hints how the display collaborator should style a status line.
type Tone string

const (
	ToneNormal      Tone = ""
	ToneError       Tone = "error"
	ToneCelebration Tone = "celebration"
)

// FollowUp is what the speech collaborator does once an utterance finishes.
type FollowUp string

const (
	ThenNothing FollowUp = ""
	ThenListen  FollowUp = "listen"
)

// Utterance is text to synthesize.
type Utterance struct {
	Text string   `json:"text"`
	Then FollowUp `json:"then,omitempty"`
}

// Output is everything one transition asks the collaborators to do.
type Output struct {
	Say          []Utterance `json:"say,omitempty"`
	Status       string      `json:"status,omitempty"`
	Tone         Tone        `json:"tone,omitempty"`
	Attempts     int         `json:"attempts"`
	ShowAttempts bool        `json:"showAttempts"`
	Listen       bool        `json:"listen,omitempty"`  // resume listening now
	Retry        bool        `json:"retry,omitempty"`   // resume listening after the retry delay
	Dropped      bool        `json:"dropped,omitempty"` // input ignored while speaking
}

// Picker draws uniform integers in [0, n). *math/rand/v2.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

// Env carries the inputs of a transition that do not belong to State.
type Env struct {
	Speaking bool   // the system's own speech is in progress
	Rand     Picker // nil means the global math/rand/v2 source
}
