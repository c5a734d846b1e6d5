package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "List schedules",
	Long: `List the tenant's auto-publish schedules, newest first.

Example:
  publishctl schedules
  publishctl schedules --status pending`,
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}
		status, _ := cmd.Flags().GetString("status")

		client := NewPublishClient(viper.GetString("url"), token)
		schedules, err := client.ListSchedules(status)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(schedules) == 0 {
			cmd.Println("No schedules found.")
			return
		}

		for _, s := range schedules {
			cmd.Printf("%s  %s  %s  attempts=%d\n",
				statusIcon(s.Status),
				s.ID,
				s.ScheduledFor.Format("2006-01-02 15:04 MST"),
				s.Attempts)
		}
	},
}

func init() {
	schedulesCmd.Flags().StringP("status", "s", "", "Filter by status (pending, publishing, published, failed, cancelled)")
	rootCmd.AddCommand(schedulesCmd)
}
