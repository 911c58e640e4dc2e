package driver

// Status is the state of one definition in a run.
type Status uint8

const (
	StatusQueued Status = iota
	StatusRunning
	StatusDone
	StatusFailed // analyzed, but with error-level diagnostics
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Event reports a status change of the definition at Index.
type Event struct {
	Index    int
	Name     string
	Status   Status
	Findings int
}

// ProgressFunc observes events; it is called from worker goroutines.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(ev Event) {
	if f != nil {
		f(ev)
	}
}
