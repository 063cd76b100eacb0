package tracker

import (
	"sync"

	"github.com/peerswarm/beacon"
)

// listenerSet holds the announce result subscribers. Registration is
// idempotent: adding the same listener twice keeps a single entry.
type listenerSet struct {
	mu  sync.Mutex
	set map[beacon.Listener]struct{}
}

func newListenerSet() *listenerSet {
	return &listenerSet{set: make(map[beacon.Listener]struct{})}
}

func (s *listenerSet) add(l beacon.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set[l] = struct{}{}
}

// notify delivers one hard-success response to every registered
// listener. Called from the announce loop goroutine only, so a cycle's
// notifications complete before the next request is built.
func (s *listenerSet) notify(res *Response) {
	s.mu.Lock()
	listeners := make([]beacon.Listener, 0, len(s.set))
	for l := range s.set {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l.HandleAnnounce(res.Leechers, res.Seeders, res.Interval, res.Peers)
	}
}
