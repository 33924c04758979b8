// internal/intent/classify.go
//
// Rule tables for game selection, feedback, replay and start keywords, and
// Parse, which picks the table the current game mode expects.
//
// Reverse-game rules precede classic ones because the classic patterns are
// broader ("guess my" is inside "you guess my"). Feedback is ordered
// most-specific first: spoken feedback overlaps a lot ("no, lower" vs
// "go lower" vs "higher").

package intent

var selectionRules = []rule[Variant]{
	{"ill guess yours", contains("ill guess yours"), Reverse},
	{"i will guess yours", contains("i will guess yours"), Reverse},
	{"ill guess your", contains("ill guess your"), Reverse},
	{"i will guess your", contains("i will guess your"), Reverse},
	{"let me guess", contains("let me guess"), Reverse},
	{"you guess mine", contains("you guess mine"), Reverse},
	{"you guess my", contains("you guess my"), Reverse},
	{"you try to guess", contains("you try to guess"), Reverse},
	{"you+guess", allOf(contains("you"), contains("guess"), not(contains("want you to guess"))), Reverse},

	{"guess my number", contains("guess my number"), Classic},
	{"guess my", contains("guess my"), Classic},
	{"guess+my", allOf(contains("guess"), contains("my"), not(contains("you guess my"))), Classic},
}

var feedbackRules = []rule[Feedback]{
	{"correct", contains("correct"), Correct},
	{"yes+affirm", allOf(contains("yes"), anyOf(contains("correct"), contains("right"), contains("got it"))), Correct},
	{"you got it", contains("you got it"), Correct},
	{"thats right", anyOf(contains("thats right"), contains("that is right")), Correct},
	{"short yes", allOf(contains("yes"), atMostWords(2)), Correct},

	{"too high", contains("too high"), TooHigh},
	{"too big", contains("too big"), TooHigh},
	{"high+too", allOf(contains("high"), contains("too")), TooHigh},
	{"big+too", allOf(contains("big"), contains("too")), TooHigh},
	{"go lower", contains("go lower"), TooHigh},
	{"lower", allOf(contains("lower"), not(contains("go higher"))), TooHigh},

	{"too low", contains("too low"), TooLow},
	{"too small", contains("too small"), TooLow},
	{"low+too", allOf(contains("low"), contains("too")), TooLow},
	{"small+too", allOf(contains("small"), contains("too")), TooLow},
	{"go higher", contains("go higher"), TooLow},
	{"higher", allOf(contains("higher"), not(contains("no"))), TooLow},

	{"right", allOf(contains("right"), not(contains("not right"))), Correct},
}

var replayRules = []rule[bool]{
	{"again", word("yes", "yeah", "yep", "sure", "again", "play"), true},
	{"done", word("no", "nope", "stop", "quit"), false},
}

var startRules = []rule[bool]{
	{"start", anyOf(contains("start"), contains("begin"), contains("play")), true},
}

// ParseGameSelection maps a transcript to the game the player asked for.
func ParseGameSelection(text string) Variant {
	v, _, _ := firstMatch(selectionRules, newTranscript(text))
	return v
}

// ParseFeedback maps a transcript to a verdict on the system's guess.
func ParseFeedback(text string) Feedback {
	f, _, _ := firstMatch(feedbackRules, newTranscript(text))
	return f
}

// ParseReplay reports whether the player wants another round. ok is false
// when the answer is neither yes nor no.
func ParseReplay(text string) (again, ok bool) {
	again, _, ok = firstMatch(replayRules, newTranscript(text))
	return again, ok
}

// IsStart reports whether the transcript asks to start playing.
func IsStart(text string) bool {
	_, _, ok := firstMatch(startRules, newTranscript(text))
	return ok
}

// Parse classifies a transcript with the classifier for expect. It never
// fails: anything unmatched yields an Unrecognized command.
func Parse(text string, expect Expect) Command {
	t := newTranscript(text)
	cmd := Command{Heard: t.text}

	switch expect {
	case ExpectStart:
		if _, _, ok := firstMatch(startRules, t); ok {
			cmd.Kind = StartGame
		}
	case ExpectGameSelection:
		if v, _, ok := firstMatch(selectionRules, t); ok {
			cmd.Kind, cmd.Variant = SelectMode, v
		}
	case ExpectNumber:
		if n, ok := extract(t.words); ok {
			cmd.Kind, cmd.Number = SubmitNumber, n
		}
	case ExpectFeedback:
		if f, _, ok := firstMatch(feedbackRules, t); ok {
			cmd.Kind, cmd.Feedback = SubmitFeedback, f
		}
	case ExpectReplay:
		if again, _, ok := firstMatch(replayRules, t); ok {
			cmd.Kind, cmd.Replay = ConfirmReplay, again
		}
	}
	return cmd
}
