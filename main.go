package main

import "github.com/deploymenttheory/go-gpt/cmd"

func main() {
	cmd.Execute()
}
