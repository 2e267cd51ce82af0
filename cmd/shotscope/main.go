package main

import "github.com/dmolgo/shotscope/internal/cli"

func main() {
	cli.Main()
}
