// Package cmd implements the pricedrop CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/avoronov/pricedrop/internal/api/client"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pricedrop",
	Short: "Track product prices and notify subscribers on drops",
	Long: "pricedrop watches tracked products in an external catalog, re-checks\n" +
		"their prices on a schedule, and messages every subscriber when a price\n" +
		"goes down. It also serves a small admin API that the items and state\n" +
		"subcommands talk to.",
}

func init() {
	cobra.OnInitialize(initClientConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "admin API URL (client commands)")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		tickCmd(),
		itemsCmd(),
		stateCmd(),
		versionCmd(),
	)
}

// initClientConfig wires env overrides for the API client commands, so
// PRICEDROP_SERVER and PRICEDROP_OUTPUT work without flags.
func initClientConfig() {
	viper.SetEnvPrefix("PRICEDROP")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
