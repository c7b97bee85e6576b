package transcript

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/devs-assistent/server/internal/assistant/model"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// ErrUnsupported is returned by Start when no recognition engine is available.
var ErrUnsupported = errors.New("speech recognition is not supported")

// Capture accumulates the final segments of a continuous dictation session
// into a running transcript.
type Capture struct {
	engine Recognizer
	locale string

	mu           sync.Mutex
	listening    bool
	accumulated  string
	interim      string
	session      uint64
	cancel       context.CancelFunc
	done         chan struct{}
	lastErr      error
	onTranscript func(string)

	errs chan error
}

// NewCapture wraps engine. A nil engine yields a Capture whose Supported
// reports false.
func NewCapture(engine Recognizer, config model.VoiceConfig) *Capture {
	locale := config.Locale
	if locale == "" {
		locale = "es-ES"
	}
	return &Capture{
		engine: engine,
		locale: locale,
		errs:   make(chan error, 8),
	}
}

// Supported reports whether dictation can be offered at all.
func (c *Capture) Supported() bool {
	return c.engine != nil
}

// OnTranscript registers fn to receive the accumulated transcript after every
// event that added final text. fn runs on the capture goroutine.
func (c *Capture) OnTranscript(fn func(string)) {
	c.mu.Lock()
	c.onTranscript = fn
	c.mu.Unlock()
}

// Errors delivers recognition failures. Sends never block; errors are dropped
// when nobody drains the channel.
func (c *Capture) Errors() <-chan error {
	return c.errs
}

func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Transcript returns the accumulated final text of the current session.
func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accumulated
}

// Interim returns the latest non-final text. It is never part of Transcript.
func (c *Capture) Interim() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interim
}

// Err returns the last recognition error of the current session.
func (c *Capture) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Start begins a new session, discarding the previous transcript. It is a
// no-op while already listening.
func (c *Capture) Start(ctx context.Context) error {
	if !c.Supported() {
		return errx.Recognition(ErrUnsupported)
	}

	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// a session that ended on its own may still be draining
	c.reap()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listening {
		return nil
	}

	sessCtx, cancel := context.WithCancel(ctx)
	events, err := c.engine.Start(sessCtx, Options{Locale: c.locale, Continuous: true, Interim: true})
	if err != nil {
		cancel()
		logx.Error().Err(err).Str("component", "transcript").Msg("failed to start recognition")
		return errx.Recognition(err)
	}

	c.session++
	c.accumulated = ""
	c.interim = ""
	c.lastErr = nil
	c.listening = true
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.consume(c.session, events, c.done)

	logx.Debug().Str("component", "transcript").Str("locale", c.locale).Msg("dictation started")
	return nil
}

// Stop ends the current session and waits for its events to drain. It is a
// no-op when not listening.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return nil
	}
	c.listening = false
	c.mu.Unlock()

	err := c.engine.Stop()
	c.reap()
	if err != nil {
		return errx.Recognition(err)
	}
	return nil
}

// Close releases the engine on every path, listening or not.
func (c *Capture) Close() error {
	if !c.Supported() {
		return nil
	}
	c.mu.Lock()
	c.listening = false
	c.mu.Unlock()

	err := c.engine.Stop()
	c.reap()
	if closer, ok := c.engine.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}

// reap cancels the running session, if any, and waits for its consumer.
func (c *Capture) reap() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Capture) consume(session uint64, events <-chan Event, done chan struct{}) {
	defer close(done)
	for ev := range events {
		c.handle(session, ev)
	}
	c.mu.Lock()
	if c.session == session {
		c.listening = false
		c.interim = ""
	}
	c.mu.Unlock()
}

func (c *Capture) handle(session uint64, ev Event) {
	var (
		final   strings.Builder
		interim strings.Builder
	)
	for _, seg := range ev.Segments {
		if seg.Final {
			final.WriteString(seg.Text)
		} else {
			interim.WriteString(seg.Text)
		}
	}

	c.mu.Lock()
	// a recognition error ends the session; later events are ignored
	if c.session != session || c.lastErr != nil {
		c.mu.Unlock()
		return
	}

	if ev.Err != nil {
		c.listening = false
		c.lastErr = errx.Recognition(ev.Err)
		err := c.lastErr
		c.mu.Unlock()

		logx.Error().Err(ev.Err).Str("component", "transcript").Msg("speech recognition error")
		select {
		case c.errs <- err:
		default:
		}
		return
	}

	var (
		notify     func(string)
		transcript string
	)
	if final.Len() > 0 {
		c.accumulated += final.String()
		notify, transcript = c.onTranscript, c.accumulated
	}
	c.interim = interim.String()
	if ev.End {
		c.listening = false
	}
	c.mu.Unlock()

	if notify != nil {
		notify(transcript)
	}
}
