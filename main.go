package main

import "github.com/mikematt33/sprint-inspect/internal/cli"

func main() {
	cli.Execute()
}
