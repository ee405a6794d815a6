package main

import "github.com/openshelf/shelfd/cmd"

func main() {
	cmd.Execute()
}
