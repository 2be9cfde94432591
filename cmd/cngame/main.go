package main

import "github.com/mcoot/codenames-go/internal/cli"

func main() {
	cli.Execute()
}
