package stats

import (
	"fmt"
	"net/netip"
	"sync"
	"time"

	"code.cloudfoundry.org/bytefmt"

	"github.com/peerswarm/beacon/pkg/session"
)

// Collector aggregates tracker announce results for display. It
// implements beacon.Listener.
type Collector struct {
	session *session.Session
	start   time.Time

	mu        sync.Mutex
	announces int
	interval  time.Duration
	leechers  int
	seeders   int
	peers     map[netip.AddrPort]struct{}
}

func NewCollector(s *session.Session) *Collector {
	return &Collector{
		session:  s,
		start:    time.Now(),
		leechers: -1,
		seeders:  -1,
		peers:    make(map[netip.AddrPort]struct{}),
	}
}

func (c *Collector) HandleAnnounce(leechers, seeders int, interval time.Duration, peers []netip.AddrPort) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.announces++
	c.interval = interval
	c.leechers = leechers
	c.seeders = seeders
	for _, p := range peers {
		c.peers[p] = struct{}{}
	}
}

// Announces returns the number of successful announces seen so far.
func (c *Collector) Announces() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.announces
}

// KnownPeers returns the number of distinct peer addresses seen across
// all announces.
func (c *Collector) KnownPeers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.peers)
}

// Summary renders a one-line human readable report of session progress
// and swarm state.
func (c *Collector) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	swarm := "swarm unknown"
	if c.leechers >= 0 && c.seeders >= 0 {
		swarm = fmt.Sprintf("%d seeders / %d leechers", c.seeders, c.leechers)
	}
	return fmt.Sprintf("up %s, down %s, left %s | %s | %d peers known | %d announces in %s",
		bytefmt.ByteSize(c.session.Uploaded()),
		bytefmt.ByteSize(c.session.Downloaded()),
		bytefmt.ByteSize(c.session.Left()),
		swarm,
		len(c.peers),
		c.announces,
		time.Since(c.start).Round(time.Second))
}
