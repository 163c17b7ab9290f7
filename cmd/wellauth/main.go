package main

import "github.com/wellman-connect/wellauth/cmd/wellauth/cmd"

func main() {
	cmd.Execute()
}
