package membership

// EventKind is the kind of a membership event, named the same way serf
// names them in the SERF_EVENT variable of an event handler.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventMemberJoin
	EventMemberLeave
	EventMemberFailed
	EventMemberUpdate
	EventMemberReap
	EventUser
	EventQuery
)

var eventNames = map[EventKind]string{
	EventMemberJoin:   "member-join",
	EventMemberLeave:  "member-leave",
	EventMemberFailed: "member-failed",
	EventMemberUpdate: "member-update",
	EventMemberReap:   "member-reap",
	EventUser:         "user",
	EventQuery:        "query",
}

// ParseEventKind returns the kind for the given name, or EventUnknown.
func ParseEventKind(name string) EventKind {
	for kind, n := range eventNames {
		if n == name {
			return kind
		}
	}

	return EventUnknown
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}

	return "unknown"
}

// Event is a batch of members affected by the same membership change.
type Event struct {
	Kind    EventKind
	Members []Member
}

// IsMember reports whether the event carries member records. Serf passes the
// payload of user events and queries on stdin instead.
func (k EventKind) IsMember() bool {
	switch k {
	case EventMemberJoin, EventMemberLeave, EventMemberFailed, EventMemberUpdate, EventMemberReap:
		return true
	default:
		return false
	}
}
