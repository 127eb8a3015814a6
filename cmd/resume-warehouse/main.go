// Command resume-warehouse ingests resumes into a searchable SQLite warehouse.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/resume-warehouse/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file in the working directory may carry provider API keys.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetInitializer(wire)

	if err := cli.Execute(); err != nil {
		cli.Close()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
