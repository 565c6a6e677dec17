// Command rosterdiff extracts, compares and searches seniority rosters from
// the command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	_ "github.com/JonMunkholm/senioritydiff/internal/core/sources" // Register document formats
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes "code: message" for known failures, followed by the
// technical detail.
func printError(w io.Writer, err error) {
	if !core.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	msg := core.MapError(err)
	fmt.Fprintf(w, "%s: %s\n", msg.Code, msg.Message)
	if msg.Action != "" {
		fmt.Fprintf(w, "  %s\n", msg.Action)
	}
	fmt.Fprintf(w, "  detail: %v\n", err)
}
