package transcript

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

var errRecognizerClosed = errors.New("line recognizer closed")

// LineRecognizer treats every non-empty line read from an io.Reader as a
// final dictation segment. It stands in for a platform speech engine when
// transcripts are piped in from an external dictation tool.
//
// A single goroutine reads the stream for the recognizer's whole life, so
// sessions can be stopped and restarted without losing lines. Lines that
// arrive between sessions are delivered to the next one.
type LineRecognizer struct {
	r io.Reader

	readOnce sync.Once
	lines    chan string
	eof      chan struct{}
	readErr  error
	closed   chan struct{}

	mu        sync.Mutex
	cancel    context.CancelFunc
	started   bool
	carry     string
	closeOnce sync.Once
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{
		r:      r,
		lines:  make(chan string),
		eof:    make(chan struct{}),
		closed: make(chan struct{}),
	}
}

func (l *LineRecognizer) Start(ctx context.Context, _ Options) (<-chan Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.closed:
		return nil, errRecognizerClosed
	default:
	}
	if l.started {
		return nil, errors.New("line recognizer already running")
	}
	l.readOnce.Do(func() { go l.read() })

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.started = true

	out := make(chan Event)
	go l.session(ctx, out)
	return out, nil
}

// read owns the scanner. It exits at EOF, on a read error or after Close.
func (l *LineRecognizer) read() {
	defer close(l.eof)
	sc := bufio.NewScanner(l.r)
	for sc.Scan() {
		select {
		case l.lines <- sc.Text():
		case <-l.closed:
			return
		}
	}
	l.readErr = sc.Err()
}

func (l *LineRecognizer) session(ctx context.Context, out chan<- Event) {
	defer close(out)
	defer l.finish()

	first := true
	deliver := func(line string) bool {
		text := strings.TrimSpace(line)
		if text == "" {
			return true
		}
		if !first {
			text = " " + text
		}
		select {
		case out <- Event{Segments: []Segment{{Text: text, Final: true}}}:
			first = false
			return true
		case <-ctx.Done():
			l.mu.Lock()
			l.carry = line
			l.mu.Unlock()
			return false
		}
	}

	l.mu.Lock()
	carried := l.carry
	l.carry = ""
	l.mu.Unlock()
	if carried != "" && !deliver(carried) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case line := <-l.lines:
			if !deliver(line) {
				return
			}
		case <-l.eof:
			ev := Event{End: true}
			if l.readErr != nil {
				ev.Err = l.readErr
			}
			select {
			case out <- ev:
			case <-ctx.Done():
			}
			return
		}
	}
}

func (l *LineRecognizer) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.started = false
}

// Stop ends the running session. The reader keeps running for later sessions.
func (l *LineRecognizer) Stop() error {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// Close ends the running session and releases the reading goroutine once its
// current read returns. The caller still owns the underlying reader.
func (l *LineRecognizer) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return l.Stop()
}
