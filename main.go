package main

import "github.com/craftingstore/cs-agent/cmd"

func main() {
	cmd.Execute()
}
