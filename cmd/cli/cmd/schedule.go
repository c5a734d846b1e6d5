package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [article_id]",
	Short: "Schedule an article for auto-publish",
	Long: `Run the eligibility check and, when it passes, create a pending schedule
at the engine's suggested publish date. An ineligible article is rejected
with the full list of failed criteria.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}

		client := NewPublishClient(viper.GetString("url"), token)
		result, err := client.ScheduleArticle(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Article scheduled!\nSchedule ID: %s\nPublishes: %s\n",
			result.ScheduleID,
			result.ScheduledFor.Format("Mon, 02 Jan 2006 15:04 MST"))
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
