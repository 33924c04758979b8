package game

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/voiceguess/assets"
)

const (
	msgWelcome      = "Welcome to Guess My Number! Click the microphone to start playing and choose your number range!"
	msgSayStart     = "Say 'start' to begin playing!"
	msgChooseGame   = "Welcome! Which game would you like to play? Say 'Guess My Number' if you want to guess my number, or say 'I'll Guess Yours' if you want me to guess your number!"
	msgChooseStatus = "Which game would you like to play?"
	msgChooseAgain  = "Say 'Guess My Number' if you want to guess my number, or 'I'll Guess Yours' if you want me to guess your number!"
	msgChooseShort  = "Say 'Guess My Number' or 'I'll Guess Yours'"
	msgNextGame     = "Great! Which game would you like to play next? Say 'Guess My Number' if you want to guess my number, or 'I'll Guess Yours' if you want me to guess your number!"
	msgNextStatus   = "Which game would you like to play next? Say 'Guess My Number' or 'I'll Guess Yours'!"

	msgClassicSetup      = "Great! What's the highest number I should pick - say a number like 50 or 100?"
	msgReverseSetup      = "Perfect! Think of a number and I'll try to guess it. What's the highest number you might pick - say a number like 50 or 100?"
	msgReverseSetupShort = "Perfect! Think of a number and I'll try to guess it. What's the highest number you might pick?"
	msgRangeAgain        = "Please say a number between 10 and 1000, like 50 or 100!"
	msgRangeStatus       = "Please say a number between 10 and 1000 for the maximum range!"

	msgThinking      = "Great! I'm thinking of a number between 1 and %d. What's your first guess?"
	msgGuessAgain    = "Please say a number between 1 and %d! I heard: %s"
	msgGuessStatus   = "I didn't hear a valid number. I heard: '%s'. Please say a number between 1 and %d!"
	msgPlayerWon     = "Congratulations! You got it! The number was %d! You guessed it in %d %s! Would you like to play again?"
	msgSystemGuess   = "Is your number %d? Say 'correct' if I got it, 'too high' if my guess is too high, or 'too low' if my guess is too low."
	msgContradicted  = "Wait, I think there might be a mistake. Let's start over!"
	msgFeedbackHelp  = "Please say 'correct', 'too high', or 'too low' to help me guess your number!"
	msgFeedbackShort = "Say 'correct', 'too high', or 'too low'"
	msgSystemWon     = "Yes! I guessed your number %d in %d %s! Would you like to play again?"

	msgReplayHelp = "Would you like to play again? Say 'yes' or 'no'!"
	msgGoodbye    = "Thanks for playing! Click the microphone to start listening again!"
)

func plural(n int) string {
	if n == 1 {
		return "attempt"
	}
	return "attempts"
}

var (
	phrasesOnce sync.Once
	higher      []string
	lower       []string
)

// fallbacks keep the game talking if an embedded list is empty.
const (
	fallbackHigher = "Too low! The number is higher than %d!"
	fallbackLower  = "Too high! The number is lower than %d!"
)

func loadPhrases() {
	var err error
	if higher, err = assets.HigherPhrases(); err != nil || len(higher) == 0 {
		log.Warn().Err(err).Msg("higher phrases unavailable, using fallback")
		higher = []string{fallbackHigher}
	}
	if lower, err = assets.LowerPhrases(); err != nil || len(lower) == 0 {
		log.Warn().Err(err).Msg("lower phrases unavailable, using fallback")
		lower = []string{fallbackLower}
	}
}

// hint picks one of the "go higher"/"go lower" replies for guess.
func hint(guess int, goHigher bool, r Picker) string {
	phrasesOnce.Do(loadPhrases)
	set := lower
	if goHigher {
		set = higher
	}
	return fmt.Sprintf(set[pick(r, len(set))], guess)
}

// pick draws from r, or the global source when r is nil.
func pick(r Picker, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
