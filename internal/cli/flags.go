package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
)

// GlobalFlags are persistent flags shared by every command
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
}

// ServeFlags holds the flags for the serve command
type ServeFlags struct {
	Port int // 0 keeps the configured port
}

// ReportFlags holds the flags for the report command
type ReportFlags struct {
	JSON bool
	All  bool // include projects with no shares
}

// ParseWeights parses "project=weight" arguments into an override
func ParseWeights(args []string) (allocator.Weights, error) {
	weights := make(allocator.Weights, len(args))
	for _, arg := range args {
		project, raw, ok := strings.Cut(arg, "=")
		project = strings.TrimSpace(project)
		if !ok || project == "" {
			return nil, fmt.Errorf("expected project=weight, got %q", arg)
		}

		w, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("weight for %s is not a whole number: %q", project, raw)
		}
		if _, dup := weights[project]; dup {
			return nil, fmt.Errorf("project %s given twice", project)
		}
		weights[project] = w
	}
	return weights, nil
}
