package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var retryCmd = &cobra.Command{
	Use:   "retry [schedule_id]",
	Short: "Re-arm a failed schedule",
	Long: `Give a permanently failed schedule a fresh attempt budget. The engine
picks the next slot in the tenant's publishing calendar as the new publish
time.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}

		client := NewPublishClient(viper.GetString("url"), token)
		result, err := client.RetrySchedule(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Schedule re-armed!\nPublishes: %s\n",
			result.ScheduledFor.Format("Mon, 02 Jan 2006 15:04 MST"))
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
