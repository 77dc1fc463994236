package cache

import (
	"io"
	"sync"

	"github.com/hearthhq/datacache/logging"
)

// EventSink records cache events as JSON lines on a writer, one event per
// line. Register the sink's Listener on a cache to capture its event stream;
// the sink serializes concurrent writes itself.
type EventSink[V any] struct {
	mu         sync.Mutex
	writer     io.Writer
	serializer Serializer
}

// NewEventSink creates a sink writing JSON lines to w.
func NewEventSink[V any](w io.Writer) *EventSink[V] {
	return &EventSink[V]{
		writer:     w,
		serializer: NewSonicSerializer(),
	}
}

// Listener returns the function to register with AddListener. Serialization
// or write failures are logged and skipped so the sink never disturbs cache
// operations.
func (s *EventSink[V]) Listener() Listener[V] {
	return func(event Event[V]) {
		data, err := s.serializer.Serialize(event)
		if err != nil {
			logging.LogWarnf("event sink: failed to serialize %s event for key %s: %v", event.Type, event.Key, err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, err := s.writer.Write(append(data, '\n')); err != nil {
			logging.LogWarnf("event sink: failed to write %s event for key %s: %v", event.Type, event.Key, err)
		}
	}
}
