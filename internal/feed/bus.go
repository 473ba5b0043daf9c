package feed

import (
	"sync"

	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// Bus delivers new-post notifications to subscribers within the session. It
// replaces the original ambient module-level event with an explicit
// subscribe/cancel lifecycle.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(models.Post)
}

// Subscription is a live bus subscription; Cancel detaches it
type Subscription struct {
	bus *Bus
	id  int
}

// NewBus creates an empty Bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(models.Post))}
}

// Subscribe registers fn to be called for every post published after this
// call. fn runs synchronously on the publisher's goroutine.
func (b *Bus) Subscribe(fn func(models.Post)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	return &Subscription{bus: b, id: id}
}

// Cancel detaches the subscription; further publishes are not delivered
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.bus = nil
}

// Publish delivers the post to every current subscriber
func (b *Bus) Publish(post models.Post) {
	b.mu.Lock()
	fns := make([]func(models.Post), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(post)
	}
}
