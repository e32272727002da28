package main

import "github.com/ok-agent/ok/cmd"

func main() {
	cmd.Execute()
}
