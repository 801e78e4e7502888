package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

type Config struct {
	ServerURL     string
	SaveDirectory string
	FontDirectory string
	Confirmations bool

	// Organization-wide typography defaults, applied to sentinel fields
	// when a slide is selected.
	DefaultFontFamily string
	DefaultFontWeight int
	DefaultTitleSize  float64
	DefaultBodySize   float64
	DefaultTextColor  string
	DefaultAlignment  string
}

func configPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".carorc")
}

func loadConfig() *Config {
	config := &Config{
		ServerURL:     "http://localhost:8480",
		Confirmations: true,
	}

	path := configPath()
	if path == "" {
		return config
	}
	file, err := os.Open(path)
	if err != nil {
		return config
	}
	defer file.Close()

	homeDir, _ := os.UserHomeDir()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "server_url", "serverurl", "server":
			config.ServerURL = strings.TrimRight(value, "/")
		case "savedirectory", "save_directory", "savedir":
			config.SaveDirectory = expandPath(value, homeDir)
		case "fontdirectory", "font_directory", "fontdir":
			config.FontDirectory = expandPath(value, homeDir)
		case "confirmations", "confirm":
			config.Confirmations = strings.ToLower(value) == "true"
		case "default_font_family", "font_family":
			config.DefaultFontFamily = value
		case "default_font_weight", "font_weight":
			if weight, err := strconv.Atoi(value); err == nil {
				config.DefaultFontWeight = weight
			}
		case "default_title_size", "title_size":
			if size, err := strconv.ParseFloat(value, 64); err == nil {
				config.DefaultTitleSize = size
			}
		case "default_body_size", "body_size":
			if size, err := strconv.ParseFloat(value, 64); err == nil {
				config.DefaultBodySize = size
			}
		case "default_text_color", "text_color":
			config.DefaultTextColor = value
		case "default_alignment", "alignment":
			if value == "left" || value == "center" || value == "right" {
				config.DefaultAlignment = value
			}
		}
	}

	return config
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

type configChangedMsg struct{}

// newConfigWatcher watches the rc file for edits so typography defaults
// can be picked up without restarting. Returns nil when the file or the
// watcher is unavailable; live reload is best-effort.
func newConfigWatcher() *fsnotify.Watcher {
	path := configPath()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}

// waitForConfigChange blocks on the watcher until the rc file is written,
// then reports back to the update loop. The command re-arms itself from
// Update after each reload.
func waitForConfigChange(watcher *fsnotify.Watcher) tea.Cmd {
	if watcher == nil {
		return nil
	}
	rcName := filepath.Base(configPath())
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if filepath.Base(event.Name) != rcName {
					continue
				}
				return configChangedMsg{}
			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}
