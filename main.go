package main

import "github.com/notargets/qgrad/cmd"

func main() {
	cmd.Execute()
}
