package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "sughar",
		Short:        "SuGhar landlord dashboard",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		seedCmd(),
		tokenCmd(),
		listCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
