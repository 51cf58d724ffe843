package task

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Name is the startup entry name, shared with earlier releases so
// installs upgrade in place.
const Name = "GamingLogWatcher"

// scriptPath returns the Startup-folder batch file location. The Startup
// folder needs no administrator rights, unlike a scheduled task.
func scriptPath() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return "", errors.New("APPDATA environment variable not set")
	}
	return filepath.Join(appData,
		"Microsoft", "Windows", "Start Menu", "Programs", "Startup",
		Name+".bat"), nil
}

// Install writes a Startup-folder batch file that launches the watcher
// minimized at user logon.
func Install() error {
	script, err := scriptPath()
	if err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	content := fmt.Sprintf("@echo off\r\nstart \"\" /min \"%s\" --run\r\n", exe)
	if err := os.MkdirAll(filepath.Dir(script), 0o750); err != nil {
		return fmt.Errorf("failed to create startup folder: %w", err)
	}
	if err := os.WriteFile(script, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write startup script: %w", err)
	}

	log.Info().Str("path", script).Msg("startup script installed")
	return nil
}

// Uninstall removes the startup script if present.
func Uninstall() error {
	script, err := scriptPath()
	if err != nil {
		return err
	}
	if err := os.Remove(script); err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", script).Msg("no startup script found")
			return nil
		}
		return fmt.Errorf("failed to remove startup script: %w", err)
	}
	log.Info().Str("path", script).Msg("startup script removed")
	return nil
}

// Installed reports whether the startup script exists.
func Installed() bool {
	script, err := scriptPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(script)
	return err == nil
}

// Launch starts the current executable in the background with --run and
// releases it; the watcher owns its own lifetime from there.
func Launch() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	cmd := exec.Command(exe, "--run")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	log.Info().Int("pid", cmd.Process.Pid).Msg("watcher started in background")
	return cmd.Process.Release()
}
