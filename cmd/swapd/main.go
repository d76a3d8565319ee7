package main

import (
	"github.com/joho/godotenv"

	"github.com/LeJamon/goswapd/internal/cli"
)

func main() {
	// Optional .env in the working directory feeds the SWAPD_
	// environment overrides before the config loads.
	_ = godotenv.Load()

	cli.Execute()
}
