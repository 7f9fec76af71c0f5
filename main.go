package main

import "github/chapool/go-keyvault/cmd"

func main() {
	cmd.Execute()
}
