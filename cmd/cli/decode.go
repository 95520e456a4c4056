package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nwatteau/linktrap/cmd"
	"github.com/nwatteau/linktrap/internal/codec"
)

// DecodeCmd inspects a minted path segment: it splits the identifier and URL
// tokens and prints what they decode to.
var DecodeCmd = &cobra.Command{
	Use:   "decode [uid-token/url-token]",
	Short: "Decode a tracking path segment back to its chat identifier and URL.",
	Args:  cobra.ExactArgs(1),
	Run:   runDecode,
}

func init() {
	cmd.RootCmd.AddCommand(DecodeCmd)
}

func runDecode(cobraCmd *cobra.Command, args []string) {
	segment := strings.Trim(args[0], "/")

	parts := strings.SplitN(segment, "/", 2)
	if len(parts) != 2 {
		fmt.Println("Error: expected a segment of the form <uid-token>/<url-token>")
		os.Exit(1)
	}

	operatorID, err := codec.DecodeID(parts[0])
	if err != nil {
		fmt.Printf("Error decoding identifier token: %v\n", err)
		os.Exit(1)
	}

	decoyURL, err := codec.DecodeURL(parts[1])
	if err != nil {
		fmt.Printf("Error decoding URL token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Operator chat ID: %d\n", operatorID)
	fmt.Printf("Destination URL:  %s\n", decoyURL)
}
