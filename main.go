// ./main.go
package main

import (
	"github.com/xkilldash9x/domkit/cmd"
)

// main is the entry point for the domkit CLI.
func main() {
	cmd.Execute()
}
