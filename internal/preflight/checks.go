package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"tagsmith/internal/config"
	"tagsmith/internal/inference"
)

// CheckSettingsFile verifies the settings sheet is readable and writable.
// A missing sheet passes as long as its directory is writable, since the
// first write creates it.
func CheckSettingsFile(path string) Result {
	const name = "Settings file"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			dir := filepath.Dir(path)
			if accessErr := unix.Access(dir, unix.W_OK|unix.X_OK); accessErr != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing and directory not writable: %v)", path, accessErr)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created on first write)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckInference verifies the tagging backend is reachable and answering.
func CheckInference(ctx context.Context, cfg *config.Config) Result {
	const name = "Inference backend"

	client := inference.NewConfiguredClient(cfg)
	if client == nil {
		return Result{Name: name, Detail: "disabled"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	models, err := client.ActiveModels(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeInferenceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d active models)", len(models))}
}

func summarizeInferenceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (backend unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (backend unreachable)"
	}
	return err.Error()
}
