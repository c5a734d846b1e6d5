package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"publishplane/pkg/api"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the tenant's auto-publish settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the effective auto-publish configuration",
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}

		client := NewPublishClient(viper.GetString("url"), token)
		cfg, err := client.GetConfig()
		if err != nil {
			printClientError(cmd, err)
			return
		}

		printConfig(cmd, cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the tenant's auto-publish settings",
	Long: `Update the tenant's override. Only the flags you pass change; everything
else keeps its current default.

Example:
  publishctl config set --min-quality 85
  publishctl config set --max-risk medium --timezone Europe/Istanbul
  publishctl config set --days-after-ready 1 --no-review`,
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}

		flags := cmd.Flags()
		var req api.ConfigOverrideRequest

		if flags.Changed("min-quality") {
			v, _ := flags.GetInt("min-quality")
			req.MinimumQualityScore = &v
		}
		if flags.Changed("max-risk") {
			v, _ := flags.GetString("max-risk")
			req.MaximumRiskLevel = &v
		}
		if flags.Changed("days-after-ready") {
			v, _ := flags.GetInt("days-after-ready")
			req.DefaultDaysAfterReady = &v
		}
		if flags.Changed("timezone") {
			v, _ := flags.GetString("timezone")
			req.Timezone = &v
		}
		if flags.Changed("no-review") {
			v, _ := flags.GetBool("no-review")
			requireReview := !v
			req.RequireHumanReview = &requireReview
		}
		if flags.Changed("notify-hours") {
			v, _ := flags.GetInt("notify-hours")
			req.NotifyHoursBeforePublish = &v
		}

		client := NewPublishClient(viper.GetString("url"), token)
		cfg, err := client.UpdateConfig(req)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Println("✓ Configuration updated.")
		printConfig(cmd, cfg)
	},
}

func printConfig(cmd *cobra.Command, cfg *api.ConfigResponse) {
	cmd.Printf("%sDays after ready:%s   %d\n", colorDim, colorReset, cfg.DefaultDaysAfterReady)
	cmd.Printf("%sHuman review:%s       %v\n", colorDim, colorReset, cfg.RequireHumanReview)
	cmd.Printf("%sMinimum quality:%s    %d\n", colorDim, colorReset, cfg.MinimumQualityScore)
	cmd.Printf("%sMaximum risk:%s       %s\n", colorDim, colorReset, cfg.MaximumRiskLevel)
	cmd.Printf("%sNotify before:%s      %v (%dh)\n", colorDim, colorReset, cfg.NotifyBeforePublish, cfg.NotifyHoursBeforePublish)
	cmd.Printf("%sTimezone:%s           %s\n", colorDim, colorReset, cfg.Timezone)
	cmd.Printf("%sPublishing windows:%s\n", colorDim, colorReset)
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	for _, w := range cfg.PublishingWindows {
		day := "?"
		if w.DayOfWeek >= 0 && w.DayOfWeek < len(days) {
			day = days[w.DayOfWeek]
		}
		cmd.Printf("  %-10s %02d:00-%02d:00\n", day, w.StartHour, w.EndHour)
	}
}

func init() {
	flags := configSetCmd.Flags()
	flags.Int("min-quality", 0, "Minimum quality score (0-100)")
	flags.String("max-risk", "", "Maximum acceptable risk level (low, medium, high, critical)")
	flags.Int("days-after-ready", 0, "Days to wait after an article becomes ready")
	flags.String("timezone", "", "IANA timezone for the publishing calendar")
	flags.Bool("no-review", false, "Allow auto-publish without human review")
	flags.Int("notify-hours", 0, "Hours before publish to send the reminder")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
