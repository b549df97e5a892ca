package workflow

import "fmt"

// State is a step in the linear upload → analyze → display workflow
type State int

const (
	Idle State = iota
	Ready
	Analyzing
	Success
	Failed
)

var stateNames = map[State]string{
	Idle:      "idle",
	Ready:     "ready",
	Analyzing: "analyzing",
	Success:   "success",
	Failed:    "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
