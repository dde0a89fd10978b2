package main

import "github.com/mvp-joe/depgraph/internal/cli"

func main() {
	cli.Execute()
}
