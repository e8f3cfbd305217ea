// Package main provides the LeapRec command-line interface.
package main

import "github.com/leapstack-labs/leaprec/internal/cli"

func main() {
	cli.Execute()
}
