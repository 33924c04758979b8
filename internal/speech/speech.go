// internal/speech/speech.go
//
// Speech I/O collaborator contracts.
// The game core never touches audio; it talks to whatever provides these
// interfaces (the terminal console, or a browser over the HTTP server).
//
// Recognition error codes follow the Web Speech API names.

package speech

import "github.com/robalobadob/voiceguess/internal/game"

// Speaker vocalizes text. onComplete must be called exactly once, also when
// synthesis fails.
type Speaker interface {
	Speak(text string, onComplete func())
}

// Listener starts speech recognition. Results are delivered back through
// Driver.OnUtterance and Driver.OnRecognitionError.
type Listener interface {
	Listen()
}

// Display renders a status line and the attempt counter.
type Display interface {
	Show(status string, tone game.Tone, attempts int, attemptsVisible bool)
}

// Recognition error codes.
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNotAllowed   = "not-allowed"
	CodeNetwork      = "network"
)

var errorMessages = map[string]string{
	CodeNoSpeech:     "I didn't hear anything. Please try speaking again!",
	CodeAudioCapture: "I can't access your microphone. Please check your settings!",
	CodeNotAllowed:   "Please allow microphone access to play the game!",
	CodeNetwork:      "Network error. Please check your internet connection!",
}

const genericErrorMessage = "Sorry, I couldn't hear you clearly. Please try again!"

// Describe maps a recognition error code to the message the player hears.
// benign is true for codes that warrant a silent retry while listening
// continuously.
func Describe(code string) (message string, benign bool) {
	msg, ok := errorMessages[code]
	if !ok {
		msg = genericErrorMessage
	}
	return msg, code == CodeNoSpeech
}
