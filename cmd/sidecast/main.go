// Package main is the entry point for the Sidecast companion display backend.
package main

import "github.com/marquessv/sidecast/cmd/sidecast/commands"

func main() {
	commands.Execute()
}
