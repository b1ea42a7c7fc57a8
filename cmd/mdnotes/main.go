package main

import "mdnotes/internal/cli"

func main() {
	cli.Main()
}
