package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id    string
		name  string
		color string
	}{
		{"go", "Go", "#00ADD8"},
		{"cpp", "C++", "#F34B7D"},
		{PlainText, "Plain Text", neutralColor},
		{"zig", "Zig", neutralColor},
		{"", "", neutralColor},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := Lookup(tt.id)
			if got.ID != tt.id {
				t.Errorf("ID = %q, want %q", got.ID, tt.id)
			}
			if got.Name != tt.name {
				t.Errorf("Name = %q, want %q", got.Name, tt.name)
			}
			if got.Color != tt.color {
				t.Errorf("Color = %q, want %q", got.Color, tt.color)
			}
		})
	}
}

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"main.go", "go", true},
		{"/src/app/Component.TSX", "typescript", true},
		{"script.py", "python", true},
		{"notes.txt", PlainText, true},
		{"archive.xyz", PlainText, true},
		{"Makefile", "shell", true},
		{"README", PlainText, true},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FromPath(tt.path)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FromPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFromPath_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pkg.go")
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatal(err)
	}

	if id, ok := FromPath(dir); ok {
		t.Errorf("FromPath(dir) = %q, true; want not ok", id)
	}
}
