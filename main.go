package main

import "secret-friends-backend/cmd"

func main() {
	cmd.Execute()
}
