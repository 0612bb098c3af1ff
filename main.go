package main

import "mediafetch/cli"

func main() {
	cli.Execute()
}
