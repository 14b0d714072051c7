package main

import "github.com/wakeguard/wakeguard/cmd"

func main() {
	cmd.Execute()
}
