package main

import (
	"fmt"
	"os"

	"ove-swap/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; settings may come from the config file or the environment
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
