// Package main is the entry point for dbgate, an HTTP gateway over a
// relational database's tables and stored routines.
package main

import (
	"dbgate/cli/cmd"
)

func main() {
	cmd.Execute()
}
