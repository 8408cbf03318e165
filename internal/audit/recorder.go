package audit

// Event is a single audit entry. UserID and Email may be empty when the
// action could not be tied to an account (failed login, unknown reset email).
type Event struct {
	Action    string
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Metadata  map[string]any
}

// Recorder is a fire-and-forget sink. Enqueue must never block the caller
// and must never surface an error into auth logic.
type Recorder interface {
	Enqueue(ev Event)
}

// Nop discards every event. Used in tests and when auditing is disabled.
type Nop struct{}

func (Nop) Enqueue(Event) {}
