// Command pricedrop runs the price-drop tracker service and its admin CLI.
package main

import (
	"os"

	"github.com/avoronov/pricedrop/cmd/pricedrop/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
