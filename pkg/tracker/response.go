package tracker

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/peerswarm/beacon/pkg/bencode"
)

// compact peer entries are 4 bytes IPv4 + 2 bytes port, big endian
const compactPeerLen = 6

// ErrMalformed marks an announce response this client cannot decode.
// It is a protocol violation and terminates the announce loop.
var ErrMalformed = errors.New("tracker: malformed announce response")

// FailureError is a failure the tracker reported in an otherwise valid
// response body. It is soft: the loop logs it and keeps announcing.
type FailureError struct {
	Reason string
}

func (e *FailureError) Error() string {
	return "tracker failure: " + e.Reason
}

// Response is the decoded result of one successful announce exchange.
// Leechers and Seeders are -1 when the tracker did not report them.
type Response struct {
	Interval time.Duration
	Leechers int
	Seeders  int
	Peers    []netip.AddrPort
}

// parseResponse decodes an announce response body. A reported failure
// reason is returned as *FailureError; any structural problem is
// wrapped in ErrMalformed.
func parseResponse(body []byte) (*Response, error) {
	v, err := bencode.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	dict, ok := v.(bencode.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: not a dictionary", ErrMalformed)
	}

	if reason, ok := dict.Value("failure reason").(bencode.String); ok {
		return nil, &FailureError{Reason: string(reason)}
	}

	interval, ok := dict.Value("interval").(bencode.Int)
	if !ok {
		return nil, fmt.Errorf("%w: missing interval", ErrMalformed)
	}

	res := &Response{
		Interval: time.Duration(interval) * time.Second,
		Leechers: -1,
		Seeders:  -1,
	}
	if n, ok := dict.Value("leechers").(bencode.Int); ok {
		res.Leechers = int(n)
	}
	if n, ok := dict.Value("seeders").(bencode.Int); ok {
		res.Seeders = int(n)
	}

	switch peers := dict.Value("peers").(type) {
	case bencode.List:
		res.Peers, err = dictPeers(peers)
	case bencode.String:
		res.Peers, err = compactPeers([]byte(peers))
	case nil:
		// trackers may omit peers for an empty swarm
	default:
		err = fmt.Errorf("%w: peers is neither list nor string", ErrMalformed)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// dictPeers decodes the non-compact peer list variant: one dictionary
// per peer with ip and port entries. A peer id entry, when present, is
// dropped since nothing downstream needs it.
func dictPeers(list bencode.List) ([]netip.AddrPort, error) {
	peers := make([]netip.AddrPort, 0, len(list))
	for _, el := range list {
		peer, ok := el.(bencode.Dict)
		if !ok {
			return nil, fmt.Errorf("%w: peer entry is not a dictionary", ErrMalformed)
		}
		ipStr, ok := peer.Value("ip").(bencode.String)
		if !ok {
			return nil, fmt.Errorf("%w: peer entry without ip", ErrMalformed)
		}
		port, ok := peer.Value("port").(bencode.Int)
		if !ok {
			return nil, fmt.Errorf("%w: peer entry without port", ErrMalformed)
		}
		if port < 0 || port > 65535 {
			return nil, fmt.Errorf("%w: peer port %d out of range", ErrMalformed, int64(port))
		}
		ip, err := netip.ParseAddr(string(ipStr))
		if err != nil {
			return nil, fmt.Errorf("%w: peer ip %q: %v", ErrMalformed, string(ipStr), err)
		}
		peers = append(peers, netip.AddrPortFrom(ip, uint16(port)))
	}
	return peers, nil
}

// compactPeers decodes the compact peer list variant, preserving wire
// order. The payload length must be an exact multiple of 6.
func compactPeers(data []byte) ([]netip.AddrPort, error) {
	if len(data)%compactPeerLen != 0 {
		return nil, fmt.Errorf("%w: invalid peers binary information", ErrMalformed)
	}
	peers := make([]netip.AddrPort, 0, len(data)/compactPeerLen)
	for off := 0; off < len(data); off += compactPeerLen {
		ip := netip.AddrFrom4([4]byte(data[off : off+4]))
		port := binary.BigEndian.Uint16(data[off+4 : off+compactPeerLen])
		peers = append(peers, netip.AddrPortFrom(ip, port))
	}
	return peers, nil
}
