package main

import "github.com/agentic-research/rbxforge/cmd"

func main() {
	cmd.Execute()
}
