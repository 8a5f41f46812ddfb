package main

import "displaymode/cmd"

func main() {
	cmd.Execute()
}
