package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// useTempConfigDir points the config path at a fresh temp directory.
func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("LOCALAPPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	useTempConfigDir(t)

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !settings.SameColor {
		t.Error("default same_color = false, want true")
	}
	if settings.LogoColor != defaultColor || settings.WheelColor != defaultColor {
		t.Errorf("default colors = %s/%s, want %s", settings.LogoColor, settings.WheelColor, defaultColor)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useTempConfigDir(t)

	s := NewSettings()
	s.SameColor = false
	s.LogoColor = "#FF0000"
	s.WheelColor = "#0000FF"

	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.SameColor {
		t.Error("same_color = true, want false")
	}
	if loaded.LogoColor != "#FF0000" || loaded.WheelColor != "#0000FF" {
		t.Errorf("colors = %s/%s, want #FF0000/#0000FF", loaded.LogoColor, loaded.WheelColor)
	}

	// No leftover temp file from the atomic write
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after Save()")
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	dir := useTempConfigDir(t)

	cfgDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		t.Fatal(err)
	}
	data := "version: 99\nsame_color: true\n"
	if err := os.WriteFile(filepath.Join(cfgDir, configFile), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("Load() error = %v, want unsupported version error", err)
	}
}

func TestLoadBackfillsEmptyColors(t *testing.T) {
	dir := useTempConfigDir(t)

	cfgDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		t.Fatal(err)
	}
	data := "version: 1\nsame_color: true\n"
	if err := os.WriteFile(filepath.Join(cfgDir, configFile), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.LogoColor != defaultColor || settings.WheelColor != defaultColor {
		t.Errorf("colors = %s/%s, want backfilled defaults", settings.LogoColor, settings.WheelColor)
	}
}
