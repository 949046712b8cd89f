// Package models defines data structures and domain types.
package models

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlainText is the language id for documents with no recognized extension.
const PlainText = "plaintext"

// neutralColor is used for ids missing from the table.
const neutralColor = "#9CA3AF"

// Language describes how a category is presented.
type Language struct {
	ID    string
	Name  string
	Color string
}

var languages = map[string]Language{
	"go":         {ID: "go", Name: "Go", Color: "#00ADD8"},
	"python":     {ID: "python", Name: "Python", Color: "#3572A5"},
	"javascript": {ID: "javascript", Name: "JavaScript", Color: "#F1E05A"},
	"typescript": {ID: "typescript", Name: "TypeScript", Color: "#3178C6"},
	"rust":       {ID: "rust", Name: "Rust", Color: "#DEA584"},
	"java":       {ID: "java", Name: "Java", Color: "#B07219"},
	"kotlin":     {ID: "kotlin", Name: "Kotlin", Color: "#A97BFF"},
	"c":          {ID: "c", Name: "C", Color: "#555555"},
	"cpp":        {ID: "cpp", Name: "C++", Color: "#F34B7D"},
	"csharp":     {ID: "csharp", Name: "C#", Color: "#178600"},
	"ruby":       {ID: "ruby", Name: "Ruby", Color: "#701516"},
	"php":        {ID: "php", Name: "PHP", Color: "#4F5D95"},
	"swift":      {ID: "swift", Name: "Swift", Color: "#F05138"},
	"lua":        {ID: "lua", Name: "Lua", Color: "#000080"},
	"html":       {ID: "html", Name: "HTML", Color: "#E34C26"},
	"css":        {ID: "css", Name: "CSS", Color: "#563D7C"},
	"json":       {ID: "json", Name: "JSON", Color: "#292929"},
	"yaml":       {ID: "yaml", Name: "YAML", Color: "#CB171E"},
	"toml":       {ID: "toml", Name: "TOML", Color: "#9C4221"},
	"markdown":   {ID: "markdown", Name: "Markdown", Color: "#083FA1"},
	"shell":      {ID: "shell", Name: "Shell", Color: "#89E051"},
	"sql":        {ID: "sql", Name: "SQL", Color: "#E38C00"},
	PlainText:    {ID: PlainText, Name: "Plain Text", Color: neutralColor},
}

var extensions = map[string]string{
	".go":       "go",
	".py":       "python",
	".pyi":      "python",
	".js":       "javascript",
	".mjs":      "javascript",
	".cjs":      "javascript",
	".jsx":      "javascript",
	".ts":       "typescript",
	".tsx":      "typescript",
	".rs":       "rust",
	".java":     "java",
	".kt":       "kotlin",
	".kts":      "kotlin",
	".c":        "c",
	".h":        "c",
	".cc":       "cpp",
	".cpp":      "cpp",
	".cxx":      "cpp",
	".hpp":      "cpp",
	".cs":       "csharp",
	".rb":       "ruby",
	".php":      "php",
	".swift":    "swift",
	".lua":      "lua",
	".html":     "html",
	".htm":      "html",
	".css":      "css",
	".scss":     "css",
	".json":     "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",
	".md":       "markdown",
	".markdown": "markdown",
	".sh":       "shell",
	".bash":     "shell",
	".zsh":      "shell",
	".sql":      "sql",
	".txt":      PlainText,
}

// Lookup returns the presentation for id. Unknown ids get a capitalized
// name and a neutral color.
func Lookup(id string) Language {
	if lang, ok := languages[id]; ok {
		return lang
	}
	return Language{ID: id, Name: capitalize(id), Color: neutralColor}
}

// FromPath maps a document path to a language id. Unknown extensions map to
// PlainText; ok is false only when path does not name a regular file.
func FromPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", false
	}

	ext := strings.ToLower(filepath.Ext(path))
	if id, ok := extensions[ext]; ok {
		return id, true
	}

	switch strings.ToLower(filepath.Base(path)) {
	case "makefile", "dockerfile":
		return "shell", true
	}
	return PlainText, true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
