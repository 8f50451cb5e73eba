package broadcast

import "sync"

const clientBuffer = 32

// Message is one server-sent event: Event names it, Data is the payload
// written on the data: line.
type Message struct {
	Event string
	Data  string
}

// Broadcaster fans messages out to every subscribed SSE stream of a session.
type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan Message]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		Clients: make(map[chan Message]bool),
	}
}

func (b *Broadcaster) Subscribe() chan Message {
	ch := make(chan Message, clientBuffer)
	b.Mu.Lock()
	b.Clients[ch] = true
	b.Mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Message) {
	b.Mu.Lock()
	_, ok := b.Clients[ch]
	delete(b.Clients, ch)
	b.Mu.Unlock()
	if ok {
		close(ch)
	}
}

// Broadcast never blocks the caller, which is usually the game loop.
func (b *Broadcaster) Broadcast(event, data string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- Message{Event: event, Data: data}:
		default:
			// skip clients with full data channels
		}
	}
}

// Close unsubscribes every client, ending their streams.
func (b *Broadcaster) Close() {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		delete(b.Clients, ch)
		close(ch)
	}
}

func (b *Broadcaster) Len() int {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	return len(b.Clients)
}
