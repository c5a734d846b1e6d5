package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [schedule_id]",
	Short: "Cancel a pending schedule",
	Long: `Cancel a schedule before it publishes. Only pending schedules can be
cancelled; once the worker has started publishing, the request is rejected.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}

		client := NewPublishClient(viper.GetString("url"), token)
		if err := client.CancelSchedule(args[0]); err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Schedule %s cancelled.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
