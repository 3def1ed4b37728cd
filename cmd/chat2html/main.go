package main

import "github.com/jasperwreed/chat2html/internal/cli"

func main() {
	cli.Execute()
}
