package functional

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theExitCodeIsNot(ctx context.Context, notExpected int) error {
	state := getState(ctx)
	if state.exitCode == notExpected {
		return fmt.Errorf("expected exit code to not be %d\nstdout: %s\nstderr: %s",
			notExpected, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout not to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

// theTagExists checks for the tag's directory or alias link directly under
// data_path/tools/<tool>, bypassing the CLI so assertions don't depend on
// the command under test for their own verification.
func theTagExists(ctx context.Context, toolAndTag string) error {
	state := getState(ctx)
	path := filepath.Join(state.homeDir, "data", "tools", toolAndTag)
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("expected tag path %q to exist: %w", path, err)
	}
	return nil
}

func theTagDoesNotExist(ctx context.Context, toolAndTag string) error {
	state := getState(ctx)
	path := filepath.Join(state.homeDir, "data", "tools", toolAndTag)
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("expected tag path %q not to exist", path)
	}
	return nil
}
