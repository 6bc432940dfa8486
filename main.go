package main

import "github.com/rananjaysingh20/work-tracker-cli/cmd"

func main() {
	cmd.Execute()
}
