package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "verifier",
		Short:        "Verify society maintenance payments against bank SMS confirmations",
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(parseCmd())
	root.AddCommand(seedCmd())

	return root
}
