package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the sendgate application
var rootCmd = &cobra.Command{
	Use:   "sendgate",
	Short: "Sends Gmail on behalf of browser users via delegated OAuth",
	Long: `sendgate is a backend-for-frontend that lets a single-page client
send email through the Gmail API on behalf of its users.

The client redirects the browser to /login for the Google consent flow,
receives the user's email back as a correlation parameter, and then posts
send requests (with optional file attachments) to /send.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "sendgate version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
