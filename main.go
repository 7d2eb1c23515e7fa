package main

import "github.com/gopforever/ShazbotCards/internal/cli"

func main() {
	cli.Execute()
}
