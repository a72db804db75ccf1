package runtime

// PanicPolicy determines what happens after a panic has been recovered and recorded.
type PanicPolicy int

const (
	// KeepRunning logs and records the panic, then lets the goroutine end normally.
	KeepRunning PanicPolicy = iota
	// CrashProcess logs and records the panic, then re-panics.
	CrashProcess
)

// String returns the string representation of the policy.
func (p PanicPolicy) String() string {
	switch p {
	case KeepRunning:
		return "KeepRunning"
	case CrashProcess:
		return "CrashProcess"
	default:
		return "Unknown"
	}
}
