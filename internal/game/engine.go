// internal/game/engine.go
//
// The game controller: a pure transition function over State.
// Responsibilities:
//   - Route each intent.Command to the handler for the current Mode.
//   - Classic mode: draw a target, score guesses, announce the win.
//   - Reverse mode: binary-search opponent (see opponent.go).
//   - Re-prompt with a mode-appropriate message on anything unrecognized,
//     leaving mode and counters untouched.
//
// Notes:
//   - Transition never fails; every (mode, command) pair has a next state.
//   - While Env.Speaking is set heard commands are dropped so the system
//     never reacts to its own voice. Control commands (microphone, new game)
//     always apply and their output replaces the speech in progress.
package game

import (
	"fmt"

	"github.com/robalobadob/voiceguess/internal/intent"
)

const (
	DefaultMaxNumber = 100
	MinRange         = 10
	MaxRange         = 1000
)

// NewState returns the state of a freshly opened session.
func NewState() State {
	return State{Mode: ModeWaiting, MaxNumber: DefaultMaxNumber}
}

// Expect reports which classifier applies to a transcript in the current mode.
func (s State) Expect() intent.Expect {
	switch s.Mode {
	case ModeSelectingGame:
		return intent.ExpectGameSelection
	case ModeClassicSetup, ModeClassicPlaying, ModeReverseSetup:
		return intent.ExpectNumber
	case ModeReversePlaying:
		return intent.ExpectFeedback
	case ModeClassicWon, ModeReverseWon:
		return intent.ExpectReplay
	}
	return intent.ExpectStart
}

// Welcome is the greeting for a new session.
func Welcome(s State) Output {
	return s.Announce(ToneNormal, msgWelcome, msgWelcome)
}

// Transition applies cmd to s and returns the next state plus what to say
// and display.
func Transition(s State, cmd intent.Command, env Env) (State, Output) {
	if env.Speaking && !cmd.Control {
		out := s.Quiet()
		out.Dropped = true
		return s, out
	}
	if cmd.Kind == intent.Restart {
		return chooseGame(s, msgChooseGame, msgChooseStatus)
	}

	switch s.Mode {
	case ModeWaiting:
		if cmd.Kind == intent.StartGame {
			return chooseGame(s, msgChooseGame, msgChooseStatus)
		}
		return s, s.Announce(ToneNormal, msgSayStart, msgSayStart)

	case ModeSelectingGame:
		return selectGame(s, cmd)

	case ModeClassicSetup:
		if n, ok := rangeAnswer(cmd); ok {
			return startClassic(s, n, env.Rand)
		}
		return s, s.Announce(ToneNormal, msgRangeStatus, msgRangeAgain)

	case ModeClassicPlaying:
		return classicGuess(s, cmd, env.Rand)

	case ModeReverseSetup:
		if n, ok := rangeAnswer(cmd); ok {
			s.MaxNumber = n
			s = beginReverse(s)
			return s, s.Announce(ToneNormal, s.guessLine(), s.guessLine())
		}
		return s, s.Announce(ToneNormal, msgRangeStatus, msgRangeAgain)

	case ModeReversePlaying:
		return reverseFeedback(s, cmd)

	case ModeClassicWon, ModeReverseWon:
		return replay(s, cmd)
	}
	return s, s.Quiet()
}

func chooseGame(s State, spoken, status string) (State, Output) {
	s.resetRound()
	s.Mode = ModeSelectingGame
	s.ContinuousListening = true
	return s, s.Announce(ToneNormal, status, spoken)
}

func selectGame(s State, cmd intent.Command) (State, Output) {
	if cmd.Kind == intent.SelectMode {
		switch cmd.Variant {
		case intent.Classic:
			s.Mode = ModeClassicSetup
			return s, s.Announce(ToneNormal, msgClassicSetup, msgClassicSetup)
		case intent.Reverse:
			s.Mode = ModeReverseSetup
			return s, s.Announce(ToneNormal, msgReverseSetupShort, msgReverseSetup)
		}
	}
	return s, s.Announce(ToneNormal, msgChooseShort, msgChooseAgain)
}

// rangeAnswer accepts a SubmitNumber within [MinRange, MaxRange].
func rangeAnswer(cmd intent.Command) (int, bool) {
	if cmd.Kind != intent.SubmitNumber || cmd.Number < MinRange || cmd.Number > MaxRange {
		return 0, false
	}
	return cmd.Number, true
}

func startClassic(s State, maxNumber int, r Picker) (State, Output) {
	s.resetRound()
	s.MaxNumber = maxNumber
	s.TargetNumber = pick(r, maxNumber) + 1
	s.Mode = ModeClassicPlaying
	msg := fmt.Sprintf(msgThinking, maxNumber)
	return s, s.Announce(ToneNormal, msg, msg)
}

func classicGuess(s State, cmd intent.Command, r Picker) (State, Output) {
	if cmd.Kind != intent.SubmitNumber || cmd.Number < 1 || cmd.Number > s.MaxNumber {
		return s, s.Announce(ToneNormal,
			fmt.Sprintf(msgGuessStatus, cmd.Heard, s.MaxNumber),
			fmt.Sprintf(msgGuessAgain, s.MaxNumber, cmd.Heard))
	}

	g := cmd.Number
	s.Attempts++
	if g == s.TargetNumber {
		s.Mode = ModeClassicWon
		msg := fmt.Sprintf(msgPlayerWon, s.TargetNumber, s.Attempts, plural(s.Attempts))
		return s, s.Announce(ToneCelebration, msg, msg)
	}
	msg := hint(g, g < s.TargetNumber, r)
	return s, s.Announce(ToneNormal, msg, msg)
}

func replay(s State, cmd intent.Command) (State, Output) {
	if cmd.Kind != intent.ConfirmReplay {
		return s, s.Announce(ToneNormal, msgReplayHelp, msgReplayHelp)
	}
	if cmd.Replay {
		return chooseGame(s, msgNextGame, msgNextStatus)
	}
	s.resetRound()
	s.Mode = ModeWaiting
	s.ContinuousListening = false
	return s, s.Announce(ToneNormal, msgGoodbye, msgGoodbye)
}

// resetRound discards everything that belongs to the round in progress.
func (s *State) resetRound() {
	s.Attempts = 0
	s.TargetNumber = 0
	s.LowBound, s.HighBound = 0, 0
	s.CurrentGuess = 0
}

// AttemptsVisible reports whether the attempt counter belongs on screen.
func (s State) AttemptsVisible() bool {
	switch s.Mode {
	case ModeClassicPlaying, ModeClassicWon, ModeReversePlaying, ModeReverseWon:
		return true
	}
	return false
}

// Quiet is an Output that only refreshes the attempt counter.
func (s State) Quiet() Output {
	return Output{Attempts: s.Attempts, ShowAttempts: s.AttemptsVisible()}
}

// Announce speaks lines in order and shows status. In continuous mode the
// last line is followed by listening again.
func (s State) Announce(tone Tone, status string, lines ...string) Output {
	out := s.Quiet()
	out.Status = status
	out.Tone = tone
	for _, l := range lines {
		out.Say = append(out.Say, Utterance{Text: l})
	}
	if n := len(out.Say); n > 0 && s.ContinuousListening {
		out.Say[n-1].Then = ThenListen
	}
	return out
}
