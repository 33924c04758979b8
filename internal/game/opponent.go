package game

import (
	"fmt"

	"github.com/robalobadob/voiceguess/internal/intent"
)

// beginReverse starts (or restarts) the system's search over [1, MaxNumber]
// and makes the first guess.
func beginReverse(s State) State {
	s.resetRound()
	s.LowBound, s.HighBound = 1, s.MaxNumber
	s.Mode = ModeReversePlaying
	return nextGuess(s)
}

// nextGuess bisects the remaining range. Every guess counts as an attempt,
// so a range of n values needs at most ceil(log2(n))+1 guesses.
func nextGuess(s State) State {
	s.CurrentGuess = (s.LowBound + s.HighBound) / 2
	s.Attempts++
	return s
}

func (s State) guessLine() string {
	return fmt.Sprintf(msgSystemGuess, s.CurrentGuess)
}

func reverseFeedback(s State, cmd intent.Command) (State, Output) {
	if cmd.Kind != intent.SubmitFeedback {
		return s, s.Announce(ToneNormal, msgFeedbackShort, msgFeedbackHelp)
	}

	switch cmd.Feedback {
	case intent.Correct:
		s.Mode = ModeReverseWon
		msg := fmt.Sprintf(msgSystemWon, s.CurrentGuess, s.Attempts, plural(s.Attempts))
		return s, s.Announce(ToneCelebration, msg, msg)
	case intent.TooHigh:
		s.HighBound = s.CurrentGuess - 1
	case intent.TooLow:
		s.LowBound = s.CurrentGuess + 1
	default:
		return s, s.Announce(ToneNormal, msgFeedbackShort, msgFeedbackHelp)
	}

	// Crossed bounds mean the player contradicted an earlier answer.
	// Apologize and search the whole range again.
	if s.LowBound > s.HighBound {
		s = beginReverse(s)
		return s, s.Announce(ToneNormal, s.guessLine(), msgContradicted, s.guessLine())
	}
	s = nextGuess(s)
	return s, s.Announce(ToneNormal, s.guessLine(), s.guessLine())
}
