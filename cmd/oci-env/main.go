package main

import (
	"os"

	"github.com/pulp/oci-env/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
