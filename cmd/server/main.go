package main

import "github.com/mcoot/gomoku-server/internal/cli"

func main() {
	cli.Execute()
}
