package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecute(t *testing.T) {
	requireShell(t)
	ctx := context.Background()
	out, err := New().Execute(ctx, "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("Execute() = %q, want %q", out, "hello")
	}
}

func TestExecuteExitCode(t *testing.T) {
	requireShell(t)
	ctx := context.Background()

	_, err := New().Execute(ctx, "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("Execute() should fail on non-zero exit")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error type = %T, want *CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q should include stderr", err.Error())
	}
}

func TestExecuteInDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	out, err := New().ExecuteInDir(context.Background(), dir, "sh", "-c", "pwd")
	if err != nil {
		t.Fatalf("ExecuteInDir() error = %v", err)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("ExecuteInDir() pwd = %q, want it to contain %q", out, dir)
	}
}

func TestStream(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer

	err := New().Stream(context.Background(), "sh", strings.NewReader("abc"), &out, "-c", "cat")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if out.String() != "abc" {
		t.Errorf("Stream() output = %q, want %q", out.String(), "abc")
	}
}

func TestMissingBinary(t *testing.T) {
	_, err := New().Execute(context.Background(), "definitely-not-a-real-binary-xyz")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error type = %T, want *CommandError", err)
	}
	if cmdErr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", cmdErr.ExitCode)
	}
}
