// Package main is the entry point for the unicefdata application
package main

import (
	"github.com/unicef-drp/unicefdata/cmd"
)

func main() {
	cmd.Execute()
}
