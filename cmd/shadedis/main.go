// Command shadedis prints the bytecode of a compiled shade program.
package main

import (
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := newRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fatal(err)
	}
}
