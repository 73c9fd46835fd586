package main

import "payway-adapter/internal/cli"

func main() {
	cli.Execute()
}
