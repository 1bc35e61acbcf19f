package urls

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Documentation URLs for guides and support pages
// All URLs point to the documentation site at https://merrow.github.io/brim/

// GettingStarted is the quick start guide for new users
// configuring brim for the first time.
const GettingStarted = "https://merrow.github.io/brim/getting-started/"

// Help is the general help index for the browser and its tools.
const Help = "https://merrow.github.io/brim/help/"

// PrivacyNotice describes what data brim stores locally and what,
// if anything, ever leaves the machine.
const PrivacyNotice = "https://merrow.github.io/brim/privacy/"

// SyncGuide covers pairing brim-cfg with a running browser instance
// over the local control endpoint.
const SyncGuide = "https://merrow.github.io/brim/sync/"

// Troubleshooting provides solutions to common issues with settings
// files, profiles, and instance discovery.
const Troubleshooting = "https://merrow.github.io/brim/troubleshooting/"

// Open launches the platform opener for a URL. Fire-and-forget: the
// opener runs detached and no result is consumed beyond the initial
// spawn. Callers that care only log the returned error.
func Open(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	// Detach: the opener outlives us and we never wait on it.
	go func() { _ = cmd.Wait() }()
	return nil
}
