package main

import (
	"fmt"
	"hostel/config"
	"hostel/helper"
	"hostel/shared/logger"
	"os"

	"github.com/spf13/cobra"
)

func action(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return helper.Runner(config.Get(), name)
		},
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		version, dirty, err := helper.Version(config.Get())
		if err != nil {
			return err
		}

		cmd.Printf("version %d (dirty: %t)\n", version, dirty)

		return nil
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Postgres schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.InitLoggerFor(config.Get())
		},
	}

	rootCmd.PersistentFlags().StringVar(&helper.MigrationsSource, "source", helper.MigrationsSource, "migration files location")

	rootCmd.AddCommand(
		action(helper.ActionUp, "Apply all pending migrations"),
		action(helper.ActionDown, "Roll back the last migration"),
		action(helper.ActionStepUp, "Apply the next pending migration"),
		action(helper.ActionDrop, "Roll back every migration"),
		versionCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
