package events

import "sync"

// Stream is an in-process fanout of encoded audit events to connected
// websocket clients. Slow subscribers drop events rather than block the
// publishing operation.
type Stream struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewStream creates an empty stream hub.
func NewStream() *Stream {
	return &Stream{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a new consumer. The returned cancel func must be
// called when the consumer goes away.
func (s *Stream) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 64)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast delivers payload to every subscriber without blocking.
func (s *Stream) Broadcast(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Subscribers returns the current consumer count.
func (s *Stream) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
