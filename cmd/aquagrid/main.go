package main

import "github.com/DrSkyle/aquagrid/cmd/aquagrid/commands"

func main() {
	commands.Execute()
}
