package driver

// Stage is the step a file is at during a check run.
type Stage uint8

const (
	StageQueued Stage = iota
	StageLoad
	StageScan
	StageMatch
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageLoad:
		return "load"
	case StageScan:
		return "scan"
	case StageMatch:
		return "match"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Status summarises the outcome of a finished file.
type Status uint8

const (
	StatusWorking Status = iota
	StatusOK
	StatusCached
	StatusErrors
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusWorking:
		return "working"
	case StatusOK:
		return "ok"
	case StatusCached:
		return "cached"
	case StatusErrors:
		return "errors"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Event reports progress for one file. Sent on CheckOptions.Events.
type Event struct {
	Path   string
	Stage  Stage
	Status Status
	Errors int
}

func emit(ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	ch <- ev
}
