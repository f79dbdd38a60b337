package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// SystemConfigPath resolves the system-wide config tier's file
// location: /etc/sentra-bundle/config.yaml on POSIX, unset on Windows
// (there is no single conventional system-wide directory there).
func SystemConfigPath() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	return filepath.Join("/etc", "sentra-bundle", "config.yaml")
}

// UserConfigPath resolves the per-user config tier's file location:
// XDG_CONFIG_HOME (or ~/.config) on POSIX, %APPDATA% on Windows.
func UserConfigPath() string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return ""
		}
		return filepath.Join(appData, "sentra-bundle", "config.yaml")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sentra-bundle", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sentra-bundle", "config.yaml")
}
