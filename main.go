package main

import "github.com/kozaktomas/burst-composer/cmd"

func main() {
	cmd.Execute()
}
