// console.go
//
// Terminal play. The terminal stands in for both speech collaborators:
// spoken lines are printed, and each line typed while the game is listening
// is treated as a final transcript.
//
//   Enter while not listening  -> switch the microphone on
//   empty line while listening -> recognizer heard nothing
//   /new                       -> restart button
//   /error <code>              -> simulate a recognition error
//   /quit                      -> leave

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/voiceguess/internal/config"
	"github.com/robalobadob/voiceguess/internal/game"
	"github.com/robalobadob/voiceguess/internal/session"
	"github.com/robalobadob/voiceguess/internal/speech"
)

// terminal implements speech.Speaker, speech.Listener and speech.Display.
type terminal struct {
	mu        sync.Mutex
	out       io.Writer
	listening atomic.Bool
	attempts  int
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out, attempts: -1}
}

func (t *terminal) Speak(text string, onComplete func()) {
	t.listening.Store(false)
	t.mu.Lock()
	fmt.Fprintf(t.out, "🔊 %s\n", text)
	t.mu.Unlock()
	onComplete()
}

func (t *terminal) Listen() {
	if t.listening.Swap(true) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, "🎤 listening...")
}

func (t *terminal) Show(status string, tone game.Tone, attempts int, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if status != "" {
		fmt.Fprintf(t.out, "%s %s\n", toneMark(tone), status)
	}
	if visible && attempts != t.attempts {
		fmt.Fprintf(t.out, "   attempts: %d\n", attempts)
	}
	if visible {
		t.attempts = attempts
	} else {
		t.attempts = -1
	}
}

func toneMark(t game.Tone) string {
	switch t {
	case game.ToneError:
		return "❌"
	case game.ToneCelebration:
		return "🎉"
	}
	return "💬"
}

type consoleAction int

const (
	actNone consoleAction = iota
	actQuit
	actActivate
	actNewGame
	actUtterance
	actError
)

// route decides what a typed line means. arg is the transcript or error code.
func route(input string, listening bool) (act consoleAction, arg string) {
	input = strings.TrimSpace(input)
	switch {
	case input == "/quit" || input == "/exit":
		return actQuit, ""
	case input == "/new":
		return actNewGame, ""
	case strings.HasPrefix(input, "/error"):
		code := strings.TrimSpace(strings.TrimPrefix(input, "/error"))
		if code == "" {
			code = speech.CodeNoSpeech
		}
		return actError, code
	case strings.HasPrefix(input, "/"):
		return actNone, ""
	case !listening:
		return actActivate, ""
	case input == "":
		return actError, speech.CodeNoSpeech
	}
	return actUtterance, input
}

func runConsole(ctx context.Context, cfg config.Config) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "🗣  ",
		HistoryFile:     filepath.Join(os.TempDir(), ".voiceguess_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	term := newTerminal(rl.Stdout())
	sess := session.New(nil)
	d := speech.NewDriver(sess, term, term, term, cfg.ListenRetryDelay)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	fmt.Fprintln(rl.Stdout(), "Press Enter to switch the microphone on. /new starts over, /quit leaves.")
	log.Debug().Str("session", sess.ID()).Msg("console session started")

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				break
			}
			log.Warn().Err(err).Msg("read input")
			continue
		}

		act, arg := route(line, term.listening.Load())
		switch act {
		case actQuit:
			cancel()
		case actActivate:
			d.Activate()
		case actNewGame:
			d.NewGame()
		case actUtterance:
			d.OnUtterance(arg)
		case actError:
			d.OnRecognitionError(arg)
		}
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(rl.Stdout(), "Goodbye!")
	return nil
}
