package main

import "syncvision/cmd"

func main() {
	cmd.Execute()
}
