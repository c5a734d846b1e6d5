package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "publishctl",
	Short: "Publishctl is a command line tool for interacting with the publishplane scheduling engine",
	Long: `publishctl is the command-line interface for the PublishPlane auto-publish scheduling engine.

PublishPlane decides when content-pipeline articles go live: it checks each
article against the tenant's quality, risk, and review criteria, picks a
publish date inside the tenant's publishing calendar, and drives the publish
through the CMS with retry backoff.

Common workflows:

  Check whether an article can auto-publish (dry run):
    publishctl evaluate <article-id>

  Schedule an eligible article:
    publishctl schedule <article-id>

  Inspect a schedule:
    publishctl status <schedule-id>

  List upcoming schedules:
    publishctl schedules --status pending

  Cancel before it goes out:
    publishctl cancel <schedule-id>

  Re-arm a permanently failed schedule:
    publishctl retry <schedule-id>

  Inspect or change the tenant's auto-publish settings:
    publishctl config get
    publishctl config set --min-quality 85 --timezone Europe/Istanbul

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    PUBLISHPLANE_URL      API endpoint (default: http://localhost:7070)
    PUBLISHPLANE_TOKEN    Tenant API Token for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".publishctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".publishctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "PUBLISHPLANE_VARNAME"
	viper.SetEnvPrefix("PUBLISHPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.publishctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:7070", "PublishPlane Controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API Token for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
