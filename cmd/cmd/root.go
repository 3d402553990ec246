package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autoblogger",
	Short: "autoblogger turns topics and YouTube videos into publishable blog posts",
	Long: `autoblogger generates Korean blog posts from a topic or a YouTube URL.

It extracts a seed (transcript, metadata or title) from video links, asks the
configured AI backends for a structured draft with automatic fallback between
them, sources a matching image from Pexels and places it into the article, and
can push the result to Blogger or WordPress.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.autoblogger.yaml)")
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
