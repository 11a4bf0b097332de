package main

import (
	"github/starchild/orderly-bridge/cmd"
)

func main() {
	cmd.Execute()
}
