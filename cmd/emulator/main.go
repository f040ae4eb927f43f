package main

import (
	"github.com/onflow/contract-client/cmd/emulator/cmd"
)

func main() {
	cmd.Execute()
}
