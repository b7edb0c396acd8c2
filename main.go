package main

import "audioseg/cmd"

func main() {
	cmd.Execute()
}
