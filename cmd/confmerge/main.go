package main

import "confmerge/internal/cli"

func main() {
	cli.Execute()
}
