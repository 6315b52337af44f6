package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/tillberg/autorestart"
	"github.com/IstiaqueAhmd/fitness-agent/internal/cli"
)

func main() {
	go autorestart.RestartOnChange()

	// Load .env if present; env vars feed ${VAR} config expansion.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
