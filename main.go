package main

import (
	"github.com/joho/godotenv"

	"github.com/sendgate/sendgate/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Load a .env file if present; real environment variables win.
	_ = godotenv.Load()

	cmd.SetVersion(version)
	cmd.Execute()
}
