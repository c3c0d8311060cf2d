package main

import "github.com/plotwise/garden/cmd/garden"

func main() {
	garden.Execute()
}
