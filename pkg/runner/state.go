package runner

// State is a step of a run. A run moves strictly forward through the
// states; any failure before file processing ends it in StateFailed.
type State string

const (
	StateIdle            State = "Idle"
	StateParseArgs       State = "ParseArgs"
	StateEnsureCharset   State = "EnsureCharset"
	StateEnsureInput     State = "EnsureInputFiles"
	StateLoadEngine      State = "LoadEngine"
	StateConfigureEngine State = "ConfigureEngine"
	StateProcessFiles    State = "ProcessFiles"
	StateDone            State = "Done"
	StateFailed          State = "Failed"
)

// IsTerminal reports whether no further transitions can happen from s.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateFailed
}
