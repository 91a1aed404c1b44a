package main

import "accounting-sync/cmd"

func main() {
	cmd.Execute()
}
