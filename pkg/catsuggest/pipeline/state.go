package pipeline

import "github.com/cognicore/catsuggest/pkg/catsuggest/progress"

// State is the stage a run is in
type State int

const (
	Queued State = iota
	FetchingCandidates
	Downloading
	Extracting
	Normalizing
	Classifying
	BuildingResponse
	CleaningUp
	Completed
	Failed
)

var stateNames = [...]string{
	Queued:             "queued",
	FetchingCandidates: "fetching candidates",
	Downloading:        "downloading",
	Extracting:         "extracting",
	Normalizing:        "normalizing",
	Classifying:        "classifying",
	BuildingResponse:   "building response",
	CleaningUp:         "cleaning up",
	Completed:          "completed",
	Failed:             "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Stage returns the slice of the aggregate progress filled while in s.
// Queued and Failed have an empty range.
func (s State) Stage() progress.Stage {
	switch s {
	case FetchingCandidates:
		return progress.Stage{Start: 0, End: 20}
	case Downloading:
		return progress.Stage{Start: 20, End: 45}
	case Extracting:
		return progress.Stage{Start: 45, End: 75}
	case Normalizing:
		return progress.Stage{Start: 75, End: 80}
	case Classifying:
		return progress.Stage{Start: 80, End: 90}
	case BuildingResponse:
		return progress.Stage{Start: 90, End: 95}
	case CleaningUp:
		return progress.Stage{Start: 95, End: progress.Total}
	case Completed:
		return progress.Stage{Start: progress.Total, End: progress.Total}
	default:
		return progress.Stage{}
	}
}
