package hub

// Event is one server-sent event: a name plus a JSON-encoded payload.
type Event struct {
	Name string
	Data []byte
}

// Stream is a single subscriber sink. Each open SSE connection holds one
// stream; a user with several open devices holds several streams.
type Stream struct {
	UserID string
	Send   chan Event
	done   chan struct{}
}

func newStream(userID string) *Stream {
	return &Stream{
		UserID: userID,
		Send:   make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

// Done is closed when the hub disconnects the stream, either because its
// buffer filled up or the hub is shutting down.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}
