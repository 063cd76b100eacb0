package tracker

// Event is the lifecycle signal accompanying a tracker announce.
//
// The tracker learns a peer joined the swarm from a started announce,
// that it is leaving from a stopped announce and that it finished
// downloading from a completed announce. Periodic refresh announces
// carry no event.
type Event int

const (
	EventNone Event = iota
	EventStarted
	EventStopped
	EventCompleted
)

// String returns the wire name of the event, empty for EventNone.
func (e Event) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventCompleted:
		return "completed"
	default:
		return ""
	}
}
