package main

import (
	"os"

	"finanzas-be/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
