package main

import "github.com/feltline/feltline/internal/cli"

func main() {
	cli.Execute()
}
