package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtraction        = errors.New("extraction error")
	ErrSynthesis         = errors.New("synthesis error")
	ErrRoute             = errors.New("route error")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrConfiguration     = errors.New("configuration error")
	ErrExternalTool      = errors.New("external tool error")
	ErrTransient         = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureKind maps an error to the short taxonomy name shown in run reports.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDirectoryNotFound):
		return "directory_not_found"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrSynthesis):
		return "synthesis"
	case errors.Is(err, ErrRoute):
		return "route"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "transient"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
