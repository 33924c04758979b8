// internal/speech/driver.go
//
// Driver connects a game Handler to local speech collaborators.
// Responsibilities:
//   - Serialize every event (transcripts, recognition errors, speech
//     completion, mic activation) onto one goroutine.
//   - Speak the lines of an Output strictly in order, one at a time.
//   - Report the end of speech to the handler, then resume listening when
//     told to.
//   - Own the no-speech retry timer; any new input cancels it.
//   - New speech supersedes speech in progress. Completions of superseded
//     lines are ignored.
//
// Notes:
//   - Collaborator callbacks may arrive on any goroutine. They only enqueue.
//   - The queue is unbounded so a Speaker that completes synchronously
//     cannot deadlock the loop.
package speech

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/voiceguess/internal/game"
)

// Handler is the game side of the driver. *session.Session implements it.
type Handler interface {
	Welcome() game.Output
	Activate() game.Output
	NewGame() game.Output
	Utterance(text string) game.Output
	SpeechDone() game.Output
	RecognitionError(code string) game.Output
}

type eventKind int

const (
	evUtterance eventKind = iota
	evRecognitionError
	evSpeechDone
	evActivate
	evNewGame
	evListen
)

type event struct {
	kind eventKind
	text string
	gen  uint64 // speech generation, evSpeechDone only
}

// Driver runs a single game session against local collaborators.
type Driver struct {
	h        Handler
	speaker  Speaker
	listener Listener
	display  Display
	retry    *Retrier
	speech   atomic.Uint64

	mu    sync.Mutex
	queue []event
	wake  chan struct{}
}

// NewDriver wires h to the collaborators. retryDelay is how long to wait
// before listening again after a silent no-speech timeout.
func NewDriver(h Handler, sp Speaker, l Listener, d Display, retryDelay time.Duration) *Driver {
	return &Driver{
		h:        h,
		speaker:  sp,
		listener: l,
		display:  d,
		retry:    NewRetrier(retryDelay),
		wake:     make(chan struct{}, 1),
	}
}

// OnUtterance delivers a final transcript.
func (d *Driver) OnUtterance(text string) { d.post(event{kind: evUtterance, text: text}) }

// OnRecognitionError delivers a recognizer failure code.
func (d *Driver) OnRecognitionError(code string) {
	d.post(event{kind: evRecognitionError, text: code})
}

// Activate is the player switching the microphone on.
func (d *Driver) Activate() { d.post(event{kind: evActivate}) }

// NewGame is the player pressing the restart control.
func (d *Driver) NewGame() { d.post(event{kind: evNewGame}) }

// Run greets the player and processes events until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	defer d.retry.Cancel()

	d.apply(d.h.Welcome())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake:
		}
		for _, ev := range d.drain() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.handle(ev)
		}
	}
}

func (d *Driver) post(ev event) {
	d.mu.Lock()
	d.queue = append(d.queue, ev)
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Driver) drain() []event {
	d.mu.Lock()
	defer d.mu.Unlock()
	evs := d.queue
	d.queue = nil
	return evs
}

func (d *Driver) handle(ev event) {
	switch ev.kind {
	case evUtterance:
		d.retry.Cancel()
		d.apply(d.h.Utterance(ev.text))
	case evRecognitionError:
		d.retry.Cancel()
		d.apply(d.h.RecognitionError(ev.text))
	case evSpeechDone:
		if ev.gen != d.speech.Load() {
			return
		}
		d.apply(d.h.SpeechDone())
	case evActivate:
		d.retry.Cancel()
		d.apply(d.h.Activate())
	case evNewGame:
		d.retry.Cancel()
		d.apply(d.h.NewGame())
	case evListen:
		d.listener.Listen()
	}
}

func (d *Driver) apply(out game.Output) {
	if out.Dropped {
		log.Debug().Msg("speech: input dropped while speaking")
		return
	}
	if out.Status != "" || out.ShowAttempts {
		d.display.Show(out.Status, out.Tone, out.Attempts, out.ShowAttempts)
	}
	if len(out.Say) > 0 {
		d.speak(out.Say, 0, d.speech.Add(1))
		return
	}
	if out.Listen {
		d.listener.Listen()
	}
	if out.Retry {
		d.retry.Schedule(func() { d.post(event{kind: evListen}) })
	}
}

// speak says lines[i] and chains the next line off its completion. The last
// completion is reported back through the queue. The chain stops once a
// newer generation has started speaking.
func (d *Driver) speak(lines []game.Utterance, i int, gen uint64) {
	var once sync.Once
	d.speaker.Speak(lines[i].Text, func() {
		once.Do(func() {
			if d.speech.Load() != gen {
				return
			}
			if i+1 < len(lines) {
				d.speak(lines, i+1, gen)
				return
			}
			d.post(event{kind: evSpeechDone, gen: gen})
		})
	})
}
