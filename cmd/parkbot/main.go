package main

import (
	"github.com/joho/godotenv"

	"github.com/example/elia-parkbot/cmd"
)

func main() {
	// Secrets come from the environment; .env is the local convenience.
	_ = godotenv.Load()
	cmd.Execute()
}
