// Package main provides the entry point for the tzcc CLI tool.
package main

import (
	"tzcc/cmd"
)

func main() {
	cmd.Execute()
}
