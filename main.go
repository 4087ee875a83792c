package main

import "callsight/cmd"

func main() {
	cmd.Execute()
}
