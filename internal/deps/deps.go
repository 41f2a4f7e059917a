package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary the transcription provider shells
// out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the availability check result for one requirement.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// CheckBinaries resolves each requirement's command on PATH and reports
// availability. Requirements with a blank command are reported unavailable
// rather than skipped so callers always see one status per requirement.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		result := Status{Requirement: req}

		switch {
		case req.Command == "":
			result.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(req.Command); err != nil {
				result.Detail = fmt.Sprintf("binary %q not found", req.Command)
			} else {
				result.Available = true
			}
		}
		results = append(results, result)
	}
	return results
}
