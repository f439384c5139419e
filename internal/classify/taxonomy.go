// Package classify analyzes captured worker process output to determine
// whether a marking task failed and why. Workers are opaque external CLIs
// with no structured error protocol, so classification is best-effort
// substring matching over known provider vocabularies. Unrecognized text
// degrades to FailureOther rather than producing an error.
package classify

// FailureType represents the category assigned to a failed task.
// The zero value FailureNone means no failure signal was found in the
// task's captured output.
type FailureType int

const (
	// FailureNone means the output contains no failure signal.
	FailureNone FailureType = iota

	// FailureQuota means the provider reported quota or rate-limit
	// exhaustion. This is the highest-priority category because quota
	// errors usually cascade across the remainder of a batch.
	FailureQuota

	// FailureTimeout means the output indicates an operation timed out.
	FailureTimeout

	// FailureNetwork means a connection, socket, or network failure.
	FailureNetwork

	// FailurePermission means an access or permission denial.
	FailurePermission

	// FailureLLM means generic "error"/"failed" phrasing that matched no
	// more specific category.
	FailureLLM

	// FailureIncomplete means the worker started its task (a start marker
	// appears in stdout) but never reported success. This catches workers
	// killed or hung mid-task that wrote nothing to stderr.
	FailureIncomplete

	// FailureOther means non-empty stderr that matched no known category
	// and is not a pure informational banner.
	FailureOther

	// FailureUnknown is reserved for units that produced no output at
	// all. These surface as missing-output audit entries, never as
	// scanned task failures.
	FailureUnknown
)

// String returns the report label for the failure type.
func (t FailureType) String() string {
	switch t {
	case FailureNone:
		return "none"
	case FailureQuota:
		return "quota/rate_limit"
	case FailureTimeout:
		return "timeout"
	case FailureNetwork:
		return "network"
	case FailurePermission:
		return "permission"
	case FailureLLM:
		return "llm_failure"
	case FailureIncomplete:
		return "incomplete"
	case FailureOther:
		return "other"
	default:
		return "unknown"
	}
}

// IsFailure returns true if the type represents an actual failure.
func (t FailureType) IsFailure() bool {
	return t != FailureNone
}
