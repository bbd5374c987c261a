package main

import "github.com/korthochain/srpverifier/cmd/srpverifier/cmd"

func main() {
	cmd.Execute()
}
