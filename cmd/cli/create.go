package cli

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nwatteau/linktrap/cmd"
	"github.com/nwatteau/linktrap/internal/config"
	"github.com/nwatteau/linktrap/internal/services"
)

var (
	chatIDFlag  int64
	longURLFlag string
	shortenFlag bool
)

// CreateCmd mints a tracking link pair from the command line, without going
// through the bot.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a tracking link pair for an operator chat and a destination URL.",
	Long: `This command builds both decoy-page links for the given chat identifier and
destination URL and prints them.

Example:
  linktrap create --chat-id=12345 --url="https://example.com"`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if longURLFlag == "" {
			fmt.Println("Error: --url flag is required")
			os.Exit(1)
		}
		if chatIDFlag < 0 {
			fmt.Println("Error: --chat-id must be non-negative")
			os.Exit(1)
		}

		// Same validation the dispatcher applies to conversational input.
		if _, err := url.ParseRequestURI(longURLFlag); err != nil || !strings.HasPrefix(longURLFlag, "http") {
			fmt.Printf("Error: Invalid URL format: %q must parse and start with http\n", longURLFlag)
			os.Exit(1)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		links := services.NewLinkService(
			cfg.Server.BaseURL,
			shortenFlag,
			services.NewShortenerClient(cfg.Shortener.Endpoint, time.Duration(cfg.Shortener.TimeoutSeconds)*time.Second),
		)

		pair, err := links.ComposeLinks(context.Background(), chatIDFlag, longURLFlag)
		if err != nil {
			fmt.Printf("Error creating links: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Tracking links for chat %d:\n", chatIDFlag)
		fmt.Printf("Browser check page: %s\n", pair.Cloudflare)
		fmt.Printf("Webview page:       %s\n", pair.Webview)
	},
}

func init() {
	CreateCmd.Flags().Int64Var(&chatIDFlag, "chat-id", 0, "Operator chat identifier the links report to")
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "Destination URL to embed (required)")
	CreateCmd.Flags().BoolVar(&shortenFlag, "shorten", false, "Pass both links through the shortening service")
	cmd.RootCmd.AddCommand(CreateCmd)
}
