package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pawhaven/pawhaven/internal/interfaces/cli/migrate"
	"github.com/pawhaven/pawhaven/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pawhaven",
		Short: "PawHaven - animal shelter sponsorship backend",
		Long:  `PawHaven runs the donation and guardianship API together with its database migration tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
