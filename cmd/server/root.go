package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is the explicit config file path. Empty means discovery.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "azproxy",
	Short: "Azure AI Model Inference proxy for OpenAI-compatible servers",
	Long: `azproxy accepts Azure AI Model Inference requests (chat completions,
embeddings and model info), validates the api-version, applies the
extra-parameters policy and forwards them to an OpenAI-compatible upstream.

Running azproxy without a subcommand starts the server.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: discovered)")
	addServeFlags(rootCmd)
}
