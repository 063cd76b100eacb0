package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/tevino/abool/v2"
	"go.uber.org/zap"

	"github.com/peerswarm/beacon"
	"github.com/peerswarm/beacon/pkg/session"
)

// State of the announce loop.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	// defaultInterval is used until the tracker dictates its own.
	defaultInterval = 5 * time.Second
	// stopGrace lets an in-flight cycle settle before the leave announce.
	stopGrace        = 500 * time.Millisecond
	leaveTimeout     = 30 * time.Second
	announceAttempts = 3
)

// Announcer periodically reports session progress to one HTTP tracker
// and relays returned peer lists to registered listeners.
//
// A single background goroutine owns the interval and the initial-event
// flag; Start, Stop and Register are safe for concurrent use.
type Announcer struct {
	client  *http.Client
	session *session.Session
	logger  *zap.Logger

	listeners *listenerSet

	mu     sync.Mutex
	state  State
	stopCh chan struct{}
	done   chan struct{}
	forced *abool.AtomicBool
}

// New creates an announcer for the session's announce endpoint. Only
// http and https trackers are supported. client and logger may be nil.
func New(s *session.Session, client *http.Client, logger *zap.Logger) (*Announcer, error) {
	u, err := url.Parse(s.AnnounceURL)
	if err != nil {
		return nil, fmt.Errorf("tracker: invalid announce url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("tracker: unsupported protocol %s", u.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Announcer{
		client:    client,
		session:   s,
		logger:    logger,
		listeners: newListenerSet(),
		forced:    abool.New(),
	}, nil
}

func (a *Announcer) Url() string {
	return a.session.AnnounceURL
}

// Register subscribes l to announce results. Registering the same
// listener twice is a no-op.
func (a *Announcer) Register(l beacon.Listener) {
	a.listeners.add(l)
}

func (a *Announcer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Start launches the announce loop. Starting a loop that is already
// running or winding down is a no-op; a stopped loop can be restarted.
func (a *Announcer) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateRunning || a.state == StateStopping {
		return
	}
	a.state = StateRunning
	a.forced.UnSet()
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)
}

// Stop requests a graceful shutdown: the loop wakes from any sleep or
// in-flight exchange and sends one final stopped announce before
// terminating. Safe to call repeatedly.
func (a *Announcer) Stop() {
	a.shutdown(false)
}

// forceStop terminates the loop without the final stopped announce.
// Used when the tracker told us to go away or sent garbage.
func (a *Announcer) forceStop() {
	a.shutdown(true)
}

func (a *Announcer) shutdown(forced bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if forced {
		a.forced.Set()
	}
	if a.state != StateRunning {
		return
	}
	a.state = StateStopping
	close(a.stopCh)
}

// Done returns a channel closed when the loop goroutine has terminated,
// or nil if the announcer was never started.
func (a *Announcer) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// Wait blocks until the loop goroutine has terminated.
func (a *Announcer) Wait() {
	if done := a.Done(); done != nil {
		<-done
	}
}

func (a *Announcer) run(stopCh, done chan struct{}) {
	defer close(done)
	defer a.finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stopCh
		cancel()
	}()

	a.logger.Info("starting announce loop", zap.String("url", a.Url()))

	interval := defaultInterval
	initial := true
	for !stopRequested(stopCh) {
		event := EventNone
		if initial {
			event = EventStarted
		}

		res, err := a.exchange(ctx, event)
		var failure *FailureError
		switch {
		case err == nil:
			if res.Interval <= 0 {
				a.logger.Error("tracker dismissed client with non-positive interval",
					zap.Duration("interval", res.Interval),
					zap.String("url", a.Url()))
				a.forceStop()
				continue
			}
			interval = res.Interval
			a.listeners.notify(res)
		case errors.As(err, &failure):
			a.logger.Warn("tracker reported failure",
				zap.String("reason", failure.Reason),
				zap.String("url", a.Url()))
		case errors.Is(err, ErrMalformed):
			a.logger.Error("unable to decode tracker response",
				zap.Error(err),
				zap.String("url", a.Url()))
			a.forceStop()
			continue
		case errors.Is(err, context.Canceled):
			// stop observed mid-exchange
		default:
			a.logger.Warn("announce failed, will retry next cycle",
				zap.Error(err),
				zap.String("url", a.Url()))
		}
		initial = false

		a.logger.Debug("sleeping until next announce",
			zap.Duration("interval", interval))
		if !sleep(stopCh, interval) {
			break
		}
	}

	if a.forced.IsSet() {
		return
	}

	// Leave the swarm after letting things settle. Listeners are not
	// notified for the final announce.
	time.Sleep(stopGrace)
	leaveCtx, cancelLeave := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancelLeave()
	if _, err := a.exchange(leaveCtx, EventStopped); err != nil {
		a.logger.Warn("final stopped announce failed",
			zap.Error(err),
			zap.String("url", a.Url()))
	}
}

func (a *Announcer) finish() {
	a.mu.Lock()
	a.state = StateStopped
	a.mu.Unlock()
	a.logger.Info("announce loop stopped", zap.String("url", a.Url()))
}

// exchange performs one announce with in-cycle retries for transient
// transport errors. Protocol violations and tracker failures are not
// retried.
func (a *Announcer) exchange(ctx context.Context, event Event) (*Response, error) {
	var res *Response
	err := retry.Do(
		func() error {
			var err error
			res, err = a.announce(ctx, event)
			return err
		},
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var failure *FailureError
			return !errors.Is(err, ErrMalformed) && !errors.As(err, &failure)
		}),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn("announce attempt failed",
				zap.Error(err),
				zap.String("url", a.Url()),
				zap.Uint("attempt", n+1))
		}),
		retry.Attempts(announceAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
	)
	return res, err
}

func (a *Announcer) announce(ctx context.Context, event Event) (*Response, error) {
	target := announceURL(a.session, event)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	a.logger.Debug("announcing",
		zap.Stringer("event", event),
		zap.Uint64("uploaded", a.session.Uploaded()),
		zap.Uint64("downloaded", a.session.Downloaded()),
		zap.Uint64("left", a.session.Left()),
		zap.String("url", a.Url()))

	httpRes, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpRes.Body.Close(); err != nil {
			a.logger.Warn("error closing announce response",
				zap.Error(err),
				zap.String("url", a.Url()))
		}
	}()

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, err
	}
	if httpRes.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker error response [%d]: %s", httpRes.StatusCode, body)
	}

	return parseResponse(body)
}

// sleep waits d or until a stop is requested, whichever comes first.
// Reports false when interrupted.
func sleep(stopCh chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stopCh:
		return false
	}
}

func stopRequested(stopCh chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}
