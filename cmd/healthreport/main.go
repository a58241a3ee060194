// Package main is the entry point for the healthreport CLI tool.
package main

import (
	"example.com/healthreport/internal/cli"
)

func main() {
	cli.Execute()
}
