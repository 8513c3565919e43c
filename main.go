package main

import "github.com/dotcommander/gearfit/cmd"

func main() {
	cmd.Execute()
}
