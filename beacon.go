package beacon

import (
	"net/netip"
	"time"
)

// Listener receives the result of every successful tracker announce.
// Leechers and seeders are -1 when the tracker did not report them.
//
// Implementations must not block: notifications are delivered from the
// announce loop goroutine before the next cycle is scheduled.
type Listener interface {
	HandleAnnounce(leechers, seeders int, interval time.Duration, peers []netip.AddrPort)
}
