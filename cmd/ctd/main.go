// Package main is the entry point for the Code Time Dashboard TUI.
package main

func main() {
	Execute()
}
