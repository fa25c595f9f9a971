package event

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds re-entrant emission (a handler emitting while it is
// being dispatched).
const DefaultMaxDepth = 64

var (
	// ErrDispatchDepth is returned when nested emits exceed the bus depth limit.
	ErrDispatchDepth = errors.New("event dispatch depth exceeded")
	// ErrPayloadType is returned by handlers registered with On when the
	// emitted payload is not of the expected type.
	ErrPayloadType = errors.New("unexpected event payload type")
)

// Handler receives the payload emitted on a topic. A non-nil error aborts
// the remaining handlers of that dispatch.
type Handler func(payload any) error

// HandlerError is returned by Emit when a subscriber fails.
type HandlerError struct {
	Topic Topic
	Index int // position of the failing handler in subscription order
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d for %q: %v", e.Index, e.Topic, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Bus is a synchronous topic bus. Emit runs every handler registered for the
// topic, in subscription order, on the caller's goroutine, before returning.
// Handlers may emit again; nested dispatch runs depth-first on the same stack.
// Single-goroutine access only (game loop).
type Bus struct {
	handlers map[Topic][]Handler
	depth    int
	maxDepth int
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Topic][]Handler),
		maxDepth: DefaultMaxDepth,
	}
}

// SetMaxDepth changes the re-entrancy bound. Values below 1 are ignored.
func (b *Bus) SetMaxDepth(n int) {
	if n >= 1 {
		b.maxDepth = n
	}
}

// Subscribe appends fn to the handler list of topic.
func (b *Bus) Subscribe(topic Topic, fn Handler) {
	b.handlers[topic] = append(b.handlers[topic], fn)
}

// Emit dispatches payload to the handlers registered for topic at the time
// of the call. Handlers subscribed during the dispatch are not called for it.
func (b *Bus) Emit(topic Topic, payload any) error {
	hs := b.handlers[topic]
	if len(hs) == 0 {
		return nil
	}
	if b.depth >= b.maxDepth {
		return fmt.Errorf("%w: %s at depth %d", ErrDispatchDepth, topic, b.depth)
	}
	b.depth++
	defer func() { b.depth-- }()
	for i, h := range hs {
		if err := h(payload); err != nil {
			return &HandlerError{Topic: topic, Index: i, Err: err}
		}
	}
	return nil
}

// Message emits a human-readable log line on TopicMessage.
func (b *Bus) Message(format string, args ...any) error {
	return b.Emit(TopicMessage, Message{Text: fmt.Sprintf(format, args...)})
}

// Subscribers returns how many handlers are registered for topic.
func (b *Bus) Subscribers(topic Topic) int {
	return len(b.handlers[topic])
}

// On registers a typed handler for topic. Payloads of any other type make
// the handler fail with ErrPayloadType.
func On[T any](b *Bus, topic Topic, fn func(T) error) {
	b.Subscribe(topic, func(payload any) error {
		v, ok := payload.(T)
		if !ok {
			return fmt.Errorf("%w: %s got %T", ErrPayloadType, topic, payload)
		}
		return fn(v)
	})
}
