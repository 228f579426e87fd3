package main

import "github.com/naka-gawa/pr-size-dashboard/cmd"

func main() {
	cmd.Execute()
}
