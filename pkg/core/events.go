package core

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Event is a structured stderr observability record: one JSON object per
// event with fields {event, namespace, key?, ttl?, level}.
type Event struct {
	Event     string `json:"event"`
	Namespace string `json:"namespace,omitempty"`
	Key       string `json:"key,omitempty"`
	TTLMs     int64  `json:"ttl,omitempty"`
	Level     string `json:"level"`
}

// EventSink receives observability events. Implementations must not block
// the caller meaningfully — emission happens on the hot path.
type EventSink interface {
	Emit(Event)
}

// noopSink discards every event; used when verbose mode is off.
type noopSink struct{}

func (noopSink) Emit(Event) {}

// zapSink writes one JSON line to stderr per event, in addition to a
// debug-level structured log line via zap.
type zapSink struct {
	logger *zap.Logger
}

// NewZapSink wraps logger as an EventSink.
func NewZapSink(logger *zap.Logger) EventSink {
	return &zapSink{logger: logger}
}

func (s *zapSink) Emit(e Event) {
	out, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, string(out))
	if s.logger != nil {
		s.logger.Debug(e.Event, zap.String("namespace", e.Namespace), zap.String("key", e.Key), zap.Int64("ttl_ms", e.TTLMs))
	}
}
