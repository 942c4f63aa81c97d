package main

import "MusicHub/cmd"

func main() {
	cmd.Execute()
}
