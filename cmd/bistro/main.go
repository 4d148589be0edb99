package main

import "github.com/marshallshelly/bistro/cmd/bistro/commands"

func main() {
	commands.Execute()
}
