package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, content string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".carorc"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := loadConfig()
	if cfg.ServerURL != "http://localhost:8480" {
		t.Errorf("server url %q", cfg.ServerURL)
	}
	if !cfg.Confirmations {
		t.Error("confirmations should default on")
	}
}

func TestLoadConfigParsesValues(t *testing.T) {
	writeTestConfig(t, `
# studio settings
server_url = http://studio.example.com:9000/
save_directory = ~/exports
confirmations = false

default_font_family = Lora
default_font_weight = 500
default_title_size = 88.5
default_body_size = 36
default_text_color = #112233
default_alignment = left
`)

	cfg := loadConfig()
	if cfg.ServerURL != "http://studio.example.com:9000" {
		t.Errorf("server url %q, want trailing slash trimmed", cfg.ServerURL)
	}
	home, _ := os.UserHomeDir()
	if cfg.SaveDirectory != filepath.Join(home, "exports") {
		t.Errorf("save directory %q, want ~ expanded", cfg.SaveDirectory)
	}
	if cfg.Confirmations {
		t.Error("confirmations not parsed")
	}
	if cfg.DefaultFontFamily != "Lora" || cfg.DefaultFontWeight != 500 {
		t.Error("font defaults not parsed")
	}
	if cfg.DefaultTitleSize != 88.5 || cfg.DefaultBodySize != 36 {
		t.Error("size defaults not parsed")
	}
	if cfg.DefaultTextColor != "#112233" || cfg.DefaultAlignment != "left" {
		t.Error("color or alignment not parsed")
	}
}

func TestLoadConfigIgnoresMalformedLines(t *testing.T) {
	writeTestConfig(t, `
just some words
default_font_weight = heavy
default_alignment = diagonal
server = http://ok.example.com
`)

	cfg := loadConfig()
	if cfg.ServerURL != "http://ok.example.com" {
		t.Error("valid line after garbage not parsed")
	}
	if cfg.DefaultFontWeight != 0 {
		t.Error("unparseable weight should stay unset")
	}
	if cfg.DefaultAlignment != "" {
		t.Error("invalid alignment should stay unset")
	}
}

func TestGetSavePathWithoutDirectory(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetSavePath("out.png"); got != "out.png" {
		t.Errorf("got %q", got)
	}
}

func TestGetSavePathCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	cfg := &Config{SaveDirectory: dir}
	got := cfg.GetSavePath("out.png")
	if got != filepath.Join(dir, "out.png") {
		t.Errorf("got %q", got)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("save directory not created")
	}
}
