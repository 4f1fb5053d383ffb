// Package deps reports whether the external programs fastfox shells out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"fastfox/internal/config"
)

// Requirement names an external binary and what it is needed for.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements only disable a feature when missing.
	Optional bool
}

// Status is the lookup result for one Requirement.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// ForConfig lists the binaries the configuration depends on. The office
// bridge is only required when it is enabled.
func ForConfig(cfg *config.Config) []Requirement {
	if cfg == nil || !cfg.Bridge.Enabled {
		return nil
	}
	return []Requirement{{
		Name:        "Office bridge",
		Command:     cfg.Bridge.Binary,
		Description: "converts legacy .doc and .xls files",
		Optional:    true,
	}}
}

// CheckBinaries resolves each requirement on PATH (or as a literal path).
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}
		switch path, err := exec.LookPath(req.Command); {
		case req.Command == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		default:
			status.Available = true
			status.Detail = path
		}
		results = append(results, status)
	}
	return results
}
