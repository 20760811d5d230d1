package main

import "github.com/taitai9847/prechecker/cmd"

func main() {
	cmd.Execute()
}
