package main

import "github.com/derickschaefer/dex/cmd"

func main() {
	cmd.Execute()
}
