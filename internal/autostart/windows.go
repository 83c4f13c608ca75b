package autostart

import (
	"fmt"
	"os/exec"
)

const taskName = "TreesyncDaemon"

type WindowsAutoStarter struct{}

func taskArgs(execPath string) []string {
	return []string{"/create",
		"/TN", taskName,
		"/TR", fmt.Sprintf(`"%s" watch`, execPath),
		"/SC", "ONLOGON",
		"/F"}
}

func (w *WindowsAutoStarter) Install(execPath string) error {
	cmd := exec.Command("schtasks", taskArgs(execPath)...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall() error {
	cmd := exec.Command("schtasks", "/DELETE", "/TN", taskName, "/F")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	cmd := exec.Command("schtasks", "/Query", "/TN", taskName)
	if err := cmd.Run(); err != nil {
		return false, nil
	}

	return true, nil
}
