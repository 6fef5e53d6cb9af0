package main

import "pricecrowd-backend/cmd/cli"

func main() {
	cli.Execute()
}
