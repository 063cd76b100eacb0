package tracker

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/peerswarm/beacon/pkg/session"
)

// announceURL renders the full GET target for one announce cycle from a
// snapshot of the session counters. Parameters are percent-encoded and
// emitted in key order, appended with '?' or '&' depending on whether
// the endpoint already carries a query.
func announceURL(s *session.Session, event Event) string {
	q := url.Values{}
	q.Set("info_hash", string(s.InfoHash[:]))
	q.Set("peer_id", string(s.PeerID))
	q.Set("port", strconv.Itoa(int(s.Addr.Port())))
	q.Set("uploaded", strconv.FormatUint(s.Uploaded(), 10))
	q.Set("downloaded", strconv.FormatUint(s.Downloaded(), 10))
	q.Set("left", strconv.FormatUint(s.Left(), 10))
	q.Set("ip", s.Addr.Addr().String())
	q.Set("compact", "1")
	if event != EventNone {
		q.Set("event", event.String())
	}

	sep := "?"
	if strings.Contains(s.AnnounceURL, "?") {
		sep = "&"
	}
	return s.AnnounceURL + sep + q.Encode()
}
