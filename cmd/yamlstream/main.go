package main

import (
	"fmt"
	"os"
)

func main() {
	command := NewDefaultYamlstreamCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "yamlstream: Error: %s\n", err)
		os.Exit(1)
	}
}
