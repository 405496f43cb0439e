package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// TransformError reports an unusable external transform hook process.
type TransformError struct {
	Command string
	Err     error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform command %q failed: %v", e.Command, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// RunTransform pipes raw feed text through an external process. The command
// line is split on whitespace; the first token is the executable, the rest
// are arguments. The process's standard output replaces the input. Failures
// surface as *TransformError; falling back to the raw text is the caller's
// policy decision, never this port's.
func RunTransform(ctx context.Context, command, input string) (string, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", &TransformError{Command: command, Err: errors.New("empty command")}
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", &TransformError{Command: command, Err: err}
	}

	return stdout.String(), nil
}
