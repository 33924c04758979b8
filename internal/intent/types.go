// internal/intent/types.go
//
// Typed results of the intent parser.
// Defines:
//   - Expect: what kind of answer the current game mode is waiting for.
//   - Kind/Command: the single value handed to the game controller.
//   - Variant, Feedback: tagged results of the selection and feedback
//     classifiers (the zero value always means "no match").

package intent

// Expect tells Parse which classifier applies to a transcript.
type Expect int

const (
	ExpectStart Expect = iota
	ExpectGameSelection
	ExpectNumber
	ExpectFeedback
	ExpectReplay
)

// Kind identifies a Command.
type Kind int

const (
	Unrecognized Kind = iota
	StartGame
	SelectMode
	SubmitNumber
	SubmitFeedback
	ConfirmReplay
	// Restart is never parsed from speech; it comes from the new-game button.
	Restart
)

func (k Kind) String() string {
	switch k {
	case StartGame:
		return "start_game"
	case SelectMode:
		return "select_mode"
	case SubmitNumber:
		return "submit_number"
	case SubmitFeedback:
		return "submit_feedback"
	case ConfirmReplay:
		return "confirm_replay"
	case Restart:
		return "restart"
	}
	return "unrecognized"
}

// Variant is the game the player asked for.
type Variant int

const (
	VariantNone Variant = iota
	Classic             // system picks, player guesses
	Reverse             // player picks, system guesses
)

func (v Variant) String() string {
	switch v {
	case Classic:
		return "classic"
	case Reverse:
		return "reverse"
	}
	return "none"
}

// Feedback is the player's verdict on a system guess.
type Feedback int

const (
	FeedbackNone Feedback = iota
	Correct
	TooHigh
	TooLow
)

func (f Feedback) String() string {
	switch f {
	case Correct:
		return "correct"
	case TooHigh:
		return "too_high"
	case TooLow:
		return "too_low"
	}
	return "none"
}

// Command is a transient value produced once per transcript and consumed once
// by the controller. Only the field matching Kind is meaningful.
type Command struct {
	Kind     Kind
	Variant  Variant
	Number   int
	Feedback Feedback
	Replay   bool
	Heard    string // normalized transcript, echoed back in clarifications
	Control  bool   // issued by an on-screen control rather than heard
}

// Start returns the StartGame command issued by the microphone button.
func Start() Command { return Command{Kind: StartGame, Control: true} }

// NewRound returns the Restart command issued by the new-game button.
func NewRound() Command { return Command{Kind: Restart, Control: true} }

// Select returns a SelectMode command for v.
func Select(v Variant) Command { return Command{Kind: SelectMode, Variant: v} }

// Number returns a SubmitNumber command for n.
func Number(n int) Command { return Command{Kind: SubmitNumber, Number: n} }

// Verdict returns a SubmitFeedback command for f.
func Verdict(f Feedback) Command { return Command{Kind: SubmitFeedback, Feedback: f} }

// Replay returns a ConfirmReplay command.
func Replay(again bool) Command { return Command{Kind: ConfirmReplay, Replay: again} }
