package main

import (
	"github.com/onflow/contract-client/cmd/calculator/cmd"
)

func main() {
	cmd.Execute()
}
