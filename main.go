package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mockview/mockview/cmd"
)

func main() {
	// A .env file is an optional convenience for local runs.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
