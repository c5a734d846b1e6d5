package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"publishplane/pkg/api"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new tenant (admin only)",
	Long: `Provision a new tenant and print its API key.

The key is shown exactly once; store it somewhere safe.

Example:
  publishctl tenant create --name "Newsroom" --rate-limit 50`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		rateLimit, _ := flags.GetInt("rate-limit")
		burst, _ := flags.GetInt("rate-limit-burst")

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}

		client := NewPublishClient(viper.GetString("url"), viper.GetString("token"))
		result, err := client.CreateTenant(api.CreateTenantRequest{
			Name:           name,
			RateLimit:      rateLimit,
			RateLimitBurst: burst,
		})
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Tenant created!\nID: %s\nName: %s\nAPI Key: %s\n", result.ID, result.Name, result.ApiKey)
		cmd.Println("Store this key now: it will not be shown again.")
	},
}

func init() {
	flags := tenantCreateCmd.Flags()
	flags.StringP("name", "n", "", "Name of the tenant (required)")
	flags.Int("rate-limit", 0, "Requests per second, 0 for unlimited")
	flags.Int("rate-limit-burst", 0, "Burst size for the rate limit")

	tenantCmd.AddCommand(tenantCreateCmd)
	rootCmd.AddCommand(tenantCmd)
}

func printClientError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

func requireToken(cmd *cobra.Command) (string, bool) {
	token := viper.GetString("token")
	if token == "" {
		cmd.Println("API token not found. Please set it using the --token flag or the PUBLISHPLANE_TOKEN environment variable")
		return "", false
	}
	return token, true
}
