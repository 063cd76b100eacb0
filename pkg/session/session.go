package session

import (
	"net/netip"
	"sync/atomic"

	"github.com/google/uuid"
)

// HashLength is the size of a torrent info hash in bytes.
const HashLength = 20

const peerIDLength = 20

var clientIDPrefix = [8]byte{'-', 'B', 'N', '0', '1', '0', '0', '-'}

// Session is the announce state for one shared torrent: swarm identity,
// the local network endpoint reported to the tracker and the transfer
// progress counters.
//
// Counters are updated concurrently by transfer code and read once per
// announce cycle, so all access goes through atomic operations.
type Session struct {
	InfoHash    [HashLength]byte
	PeerID      []byte
	Addr        netip.AddrPort
	AnnounceURL string

	uploaded   uint64
	downloaded uint64
	left       uint64
}

// New creates a session for the given info hash, announcing the local
// addr to the tracker at announceURL. left is the number of bytes still
// missing, usually the torrent's total length.
func New(infoHash [HashLength]byte, announceURL string, addr netip.AddrPort, left uint64) *Session {
	return &Session{
		InfoHash:    infoHash,
		PeerID:      newPeerID(),
		Addr:        addr,
		AnnounceURL: announceURL,
		left:        left,
	}
}

// newPeerID builds an Azureus-style peer id: client prefix followed by
// random bytes.
func newPeerID() []byte {
	id := make([]byte, 0, peerIDLength)
	id = append(id, clientIDPrefix[:]...)
	u := uuid.New()
	return append(id, u[:peerIDLength-len(clientIDPrefix)]...)
}

func (s *Session) AddUploaded(n uint64) {
	atomic.AddUint64(&s.uploaded, n)
}

// AddDownloaded advances the downloaded counter and shrinks left,
// clamping it at zero so re-downloaded blocks cannot underflow it.
func (s *Session) AddDownloaded(n uint64) {
	atomic.AddUint64(&s.downloaded, n)
	for {
		left := atomic.LoadUint64(&s.left)
		sub := n
		if sub > left {
			sub = left
		}
		if atomic.CompareAndSwapUint64(&s.left, left, left-sub) {
			return
		}
	}
}

func (s *Session) Uploaded() uint64 {
	return atomic.LoadUint64(&s.uploaded)
}

func (s *Session) Downloaded() uint64 {
	return atomic.LoadUint64(&s.downloaded)
}

func (s *Session) Left() uint64 {
	return atomic.LoadUint64(&s.left)
}
