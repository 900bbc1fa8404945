package phoneauth

// State of a phone verification flow.
type State int

const (
	Idle State = iota
	CodeRequested
	CodeSent
	Verifying
	Verified
	Failed
)

var stateNames = [...]string{"idle", "code_requested", "code_sent", "verifying", "verified", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether the flow has finished.
func (s State) Terminal() bool {
	return s == Verified || s == Failed
}
