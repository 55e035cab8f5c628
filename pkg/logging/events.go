package logging

import (
	"time"

	"github.com/Hafizh1187/apriory/pkg/humanfmt"
	"github.com/rs/zerolog"
)

// CompletionEvent builds consistent "something finished" log lines.
type CompletionEvent struct {
	log     zerolog.Logger
	event   string
	phase   string
	elapsed time.Duration
	fields  []field
}

type field struct {
	key string
	val interface{}
}

// NewCompletionEvent creates a new completion event builder.
func NewCompletionEvent(log zerolog.Logger, event, phase string, elapsed time.Duration) *CompletionEvent {
	return &CompletionEvent{
		log:     log,
		event:   event,
		phase:   phase,
		elapsed: elapsed,
	}
}

func (ce *CompletionEvent) add(key string, val interface{}) *CompletionEvent {
	ce.fields = append(ce.fields, field{key, val})
	return ce
}

// Str adds a string field.
func (ce *CompletionEvent) Str(key, val string) *CompletionEvent {
	return ce.add(key, val)
}

// Int adds an int field.
func (ce *CompletionEvent) Int(key string, val int) *CompletionEvent {
	return ce.add(key, val)
}

// Bool adds a bool field.
func (ce *CompletionEvent) Bool(key string, val bool) *CompletionEvent {
	return ce.add(key, val)
}

// Float64 adds a float64 field.
func (ce *CompletionEvent) Float64(key string, val float64) *CompletionEvent {
	return ce.add(key, val)
}

// Count adds a count with a human-readable companion in pretty mode.
func (ce *CompletionEvent) Count(key string, n int64) *CompletionEvent {
	ce.add(key, n)
	if IsPrettyMode() {
		ce.add(key+"_h", humanfmt.Count(n))
	}
	return ce
}

// Bytes adds a byte count with a human-readable companion in pretty mode.
func (ce *CompletionEvent) Bytes(key string, n uint64) *CompletionEvent {
	ce.add(key, n)
	if IsPrettyMode() {
		ce.add(key+"_h", humanfmt.BytesUint64(n))
	}
	return ce
}

// Ratio adds the fraction kept/total as a percentage field.
func (ce *CompletionEvent) Ratio(key string, kept, total int) *CompletionEvent {
	if total <= 0 {
		return ce
	}
	return ce.add(key, float64(kept)*100.0/float64(total))
}

// Log emits the event at info level.
func (ce *CompletionEvent) Log(msg string) {
	ce.emit(ce.log.Info(), msg)
}

// LogDebug emits the event at debug level.
func (ce *CompletionEvent) LogDebug(msg string) {
	ce.emit(ce.log.Debug(), msg)
}

func (ce *CompletionEvent) emit(e *zerolog.Event, msg string) {
	e = e.Str("event", ce.event).
		Str("phase", ce.phase).
		Int64("duration_ms", ce.elapsed.Milliseconds())

	if IsPrettyMode() {
		e = e.Str("duration_h", humanfmt.Duration(ce.elapsed))
	}

	for _, f := range ce.fields {
		e = e.Interface(f.key, f.val)
	}

	e.Msg(msg)
}

// PhaseComplete starts a phase completion event.
func PhaseComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "phase_completed", phase, elapsed)
}

// LevelComplete starts a mining level completion event.
func LevelComplete(log zerolog.Logger, level int, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "level_completed", "mine", elapsed).Int("level", level)
}

// FileWritten starts an export completion event.
func FileWritten(log zerolog.Logger, path string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "file_written", "export", elapsed).Str("path", path)
}
