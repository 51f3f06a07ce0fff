package cpm

// Result holds the complete critical path analysis.
type Result struct {
	Schedules    map[string]*Schedule
	CriticalPath []string // ordered activity codes on the critical path
	TotalDays    int      // length of the longest dependency chain in planned days
	Phases       []Phase  // activities that may run in parallel
	TopoOrder    []string
}

// Schedule holds the dependency-driven timing of one activity, in days from
// the start of the network.
type Schedule struct {
	Code       string
	ES, EF     int // earliest start/finish
	LS, LF     int // latest start/finish
	TotalFloat int
	Critical   bool
	Phase      int
}

// Phase is a group of activities sharing an earliest start.
type Phase struct {
	Index    int
	Codes    []string
	Critical bool // contains at least one critical activity
}
