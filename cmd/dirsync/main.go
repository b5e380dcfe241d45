package main

import "github.com/raoulx24/dirsync/internal/cli"

func main() {
	cli.Execute()
}
