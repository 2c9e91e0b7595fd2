package main

import "birdfolio-backend/cmd"

func main() {
	cmd.Run()
}
