package autostart

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

const unitTemplate = `[Unit]
Description=treesync mirror daemon
After=network-online.target

[Service]
ExecStart="{{.ExecPath}}" watch
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate))

type LinuxAutoStarter struct {
	// Dir overrides the systemd user unit directory.
	Dir string
}

func renderUnit(w io.Writer, execPath string) error {
	return unitTmpl.Execute(w, map[string]string{"ExecPath": execPath})
}

func (l *LinuxAutoStarter) unitPath() (string, error) {
	dir := l.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "systemd", "user")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, serviceName+".service"), nil
}

func (l *LinuxAutoStarter) Install(execPath string) error {
	path, err := l.writeUnit(execPath)
	if err != nil {
		return err
	}

	cmds := [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", serviceName + ".service"},
		{"systemctl", "--user", "start", serviceName + ".service"},
	}

	for _, args := range cmds {
		cmd := exec.Command(args[0], args[1:]...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("failed to run %v for %s: %w\n%s", args, path, err, out)
		}
	}

	return nil
}

func (l *LinuxAutoStarter) writeUnit(execPath string) (string, error) {
	path, err := l.unitPath()
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create unit file: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := renderUnit(f, execPath); err != nil {
		return "", fmt.Errorf("failed to write unit file: %w", err)
	}

	return path, nil
}

func (l *LinuxAutoStarter) Uninstall() error {
	cmds := [][]string{
		{"systemctl", "--user", "stop", serviceName + ".service"},
		{"systemctl", "--user", "disable", serviceName + ".service"},
	}

	for _, args := range cmds {
		cmd := exec.Command(args[0], args[1:]...)
		_ = cmd.Run()
	}

	return l.removeUnit()
}

func (l *LinuxAutoStarter) removeUnit() error {
	path, err := l.unitPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.unitPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
