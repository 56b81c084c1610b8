package processor

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// newWorkspace creates the per-run directory that holds every intermediate file
func (p *implProcessor) newWorkspace(requestID string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Temp, 0755); err != nil {
		return "", fmt.Errorf("create temp root: %w", err)
	}
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '*' {
			return '_'
		}
		return r
	}, requestID)
	return os.MkdirTemp(p.cfg.Paths.Temp, "run-"+safe+"-*")
}

// cleanupWorkspace removes the run directory, logs warning if fails
func (p *implProcessor) cleanupWorkspace(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup workspace %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up workspace: %s", dir)
	}
}
