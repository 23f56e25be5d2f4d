package main

import (
	"os"

	"github.com/pfrederiksen/eventspan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
