package main

import "vavoo/cmd"

func main() {
	cmd.Execute()
}
