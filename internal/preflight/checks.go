package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"apod/internal/apod"
)

const apodCheckTimeout = 10 * time.Second

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
	if err := checkReadWrite(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCacheDirectory behaves like CheckDirectoryAccess, except that a missing
// directory passes when its nearest existing ancestor is writable, since the
// directory is created on first use.
func CheckCacheDirectory(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}

	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if err := checkCreatable(ancestor); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckAPOD verifies the APOD endpoint is reachable and accepts the API key.
// It asks for yesterday's entry because today's may not be published yet.
func CheckAPOD(ctx context.Context, baseURL, apiKey string, timeout time.Duration) Result {
	const name = "APOD API"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	if timeout <= 0 || timeout > apodCheckTimeout {
		timeout = apodCheckTimeout
	}
	client, err := apod.New(apiKey, baseURL, apod.WithTimeout(timeout))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	yesterday := time.Now().AddDate(0, 0, -1)
	_, err = client.FetchInfo(checkCtx, yesterday)
	switch status := apod.StatusCode(err); {
	case err == nil:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case status == http.StatusNotFound:
		return Result{Name: name, Passed: true, Detail: "Reachable (no entry for " + yesterday.Format(apod.DateLayout) + ")"}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	case status == http.StatusTooManyRequests:
		return Result{Name: name, Detail: "rate limited (DEMO_KEY allows few requests; set apod.api_key)"}
	case status != 0:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", status)}
	default:
		return Result{Name: name, Detail: summarizeError(err)}
	}
}

// CheckBackgroundCommand verifies the background command resolves on PATH.
func CheckBackgroundCommand(argv []string) Result {
	const name = "Background command"

	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	cmd := strings.TrimSpace(argv[0])
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", cmd)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (APOD API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (APOD API unreachable)"
	}
	return err.Error()
}
