// Command hellobench serves the greeting endpoint and load-tests it.
package main

import (
	"os"

	"github.com/wesleyorama2/hellobench/internal/cli"
)

// Main runs the command tree and maps its outcome to an exit status:
// 0 on success, 1 when a command fails or a performance run does not pass.
func Main() int {
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
