package tracker

import (
	"net/netip"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerswarm/beacon/pkg/session"
)

var testHash = [session.HashLength]byte{
	0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x01, 0x02,
	0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c,
}

func newRequestSession(announceURL string) *session.Session {
	addr := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.3"), 6881)
	s := session.New(testHash, announceURL, addr, 5000)
	s.AddDownloaded(1000)
	s.AddUploaded(250)
	return s
}

func TestAnnounceURL_Params(t *testing.T) {
	t.Parallel()
	s := newRequestSession("http://tracker.local/announce")

	target := announceURL(s, EventStarted)

	u, err := url.Parse(target)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, string(testHash[:]), q.Get("info_hash"))
	assert.Equal(t, string(s.PeerID), q.Get("peer_id"))
	assert.Equal(t, "6881", q.Get("port"))
	assert.Equal(t, "250", q.Get("uploaded"))
	assert.Equal(t, "1000", q.Get("downloaded"))
	assert.Equal(t, "4000", q.Get("left"))
	assert.Equal(t, "10.0.0.3", q.Get("ip"))
	assert.Equal(t, "1", q.Get("compact"))
	assert.Equal(t, "started", q.Get("event"))
}

func TestAnnounceURL_EventOmittedWhenNone(t *testing.T) {
	t.Parallel()
	s := newRequestSession("http://tracker.local/announce")

	u, err := url.Parse(announceURL(s, EventNone))
	require.NoError(t, err)
	assert.False(t, u.Query().Has("event"))
}

func TestAnnounceURL_EventNames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		event Event
		want  string
	}{
		{EventStarted, "started"},
		{EventStopped, "stopped"},
		{EventCompleted, "completed"},
	}
	for _, tt := range tests {
		s := newRequestSession("http://tracker.local/announce")
		u, err := url.Parse(announceURL(s, tt.event))
		require.NoError(t, err)
		assert.Equal(t, tt.want, u.Query().Get("event"))
	}
}

func TestAnnounceURL_QuerySeparator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		endpoint string
		prefix   string
	}{
		{
			name:     "endpoint without query",
			endpoint: "http://tracker.local/announce",
			prefix:   "http://tracker.local/announce?",
		},
		{
			name:     "endpoint with existing query",
			endpoint: "http://tracker.local/announce?x=1",
			prefix:   "http://tracker.local/announce?x=1&",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newRequestSession(tt.endpoint)
			target := announceURL(s, EventNone)
			assert.True(t, strings.HasPrefix(target, tt.prefix),
				"target %q does not start with %q", target, tt.prefix)

			u, err := url.Parse(target)
			require.NoError(t, err)
			if strings.Contains(tt.endpoint, "?") {
				assert.Equal(t, "1", u.Query().Get("x"))
			}
		})
	}
}

func TestAnnounceURL_Deterministic(t *testing.T) {
	t.Parallel()
	s := newRequestSession("http://tracker.local/announce")
	assert.Equal(t, announceURL(s, EventNone), announceURL(s, EventNone))
}
