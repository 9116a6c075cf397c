package main

import "bsp-archiver/internal/cli"

func main() {
	cli.Execute()
}
