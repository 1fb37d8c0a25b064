package main

import "demoreel/cmd"

func main() {
	cmd.Execute()
}
