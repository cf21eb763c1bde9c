package main

import "github.com/nftterminal/nftterm/cmd"

func main() {
	cmd.Execute()
}
