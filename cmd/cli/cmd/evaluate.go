package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [article_id]",
	Short: "Check whether an article can auto-publish",
	Long: `Run the auto-publish eligibility check for an article without creating a
schedule. Every failed criterion is listed, together with the publish date
the engine would pick if the article were scheduled now.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}

		client := NewPublishClient(viper.GetString("url"), token)
		result, err := client.EvaluateArticle(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if result.Eligible {
			cmd.Printf("%s✓ Eligible for auto-publish%s\n", colorGreen, colorReset)
			if result.SuggestedPublishDate != nil {
				cmd.Printf("%sWould publish:%s %s\n", colorDim, colorReset,
					result.SuggestedPublishDate.Format("Mon, 02 Jan 2006 15:04 MST"))
			}
		} else {
			cmd.Printf("%s✗ Not eligible for auto-publish%s\n", colorRed, colorReset)
			for _, reason := range result.Reasons {
				cmd.Printf("  - %s\n", reason.Message)
			}
		}

		if result.WithinWindowNow {
			cmd.Printf("%sPublishing window:%s open right now\n", colorDim, colorReset)
		} else {
			cmd.Printf("%sPublishing window:%s closed right now\n", colorDim, colorReset)
		}
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
