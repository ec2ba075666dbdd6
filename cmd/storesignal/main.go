package main

import "github.com/storesignal-io/storesignal/internal/cli"

func main() {
	cli.Execute()
}
