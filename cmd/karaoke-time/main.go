package main

import "github.com/cazares/karaoke-time-by-miguel/internal/cli"

func main() {
	cli.Main()
}
