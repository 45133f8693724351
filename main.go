package main

import "github.com/sempr/run-constrained/cmd"

func main() {
	cmd.Execute()
}
