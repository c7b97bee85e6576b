package transcript

import "context"

// Segment is one recognition result. Interim segments may still change;
// final segments are stable.
type Segment struct {
	Text  string
	Final bool
}

// Event is delivered by a Recognizer for every engine callback.
type Event struct {
	Segments []Segment
	// Err reports an engine failure (network, permissions, ...).
	Err error
	// End marks the session as ended by the engine.
	End bool
}

// Options configure a dictation session.
type Options struct {
	Locale     string
	Continuous bool
	Interim    bool
}

// Recognizer is a speech-to-text engine. Start returns a channel that the
// engine closes once the session is over, whether through Stop, ctx
// cancellation or the engine ending the session itself.
type Recognizer interface {
	Start(ctx context.Context, opts Options) (<-chan Event, error)
	Stop() error
}
