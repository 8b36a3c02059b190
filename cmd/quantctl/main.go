package main

import "github.com/quantlab/quantctl/internal/cli"

func main() {
	cli.Execute()
}
