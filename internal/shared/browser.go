package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the platform launcher for opening a URL.
func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("no known browser launcher for %s", goos)
	}
}

// OpenBrowser launches the default browser at url without waiting for it to
// exit. Callers should print the URL as a fallback when this fails.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
