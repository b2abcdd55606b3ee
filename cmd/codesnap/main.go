package main

import "codesnap/internal/cli"

func main() {
	cli.Execute()
}
