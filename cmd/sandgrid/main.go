package main

import (
	"os"

	"github.com/sandgrid/sandgrid-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
