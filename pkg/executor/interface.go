package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// Stream runs a command wired to the given stdin/stdout; either may be nil.
	Stream(ctx context.Context, name string, stdin io.Reader, stdout io.Writer, args ...string) error
}
