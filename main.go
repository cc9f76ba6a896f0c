package main

import "mxliff-workbench/internal/cli"

func main() {
	cli.Execute()
}
