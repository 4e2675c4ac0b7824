package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// browserCommand picks the command that opens url. $BROWSER wins over the platform default.
func browserCommand(url string) (*exec.Cmd, error) {
	if browser := strings.TrimSpace(os.Getenv("BROWSER")); browser != "" {
		return exec.Command(browser, url), nil
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens the authorization page in the user's browser without waiting for it to exit.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}
	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
