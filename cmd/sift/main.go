// Package main is the entry point for the sift CLI tool.
package main

import (
	"github.com/hargabyte/sift/internal/cmd"
)

func main() {
	cmd.Execute()
}
