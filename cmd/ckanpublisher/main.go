package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/ckan-publisher/internal/cli"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("Failed to load .env file: " + err.Error())
	}

	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
