package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"publishplane/pkg/api"
)

var statusCmd = &cobra.Command{
	Use:   "status [schedule_id]",
	Short: "Get status of a schedule",
	Long:  `Retrieve detailed status information for an auto-publish schedule, including its current state (pending, publishing, published, failed, cancelled), attempt count, and timestamps.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, ok := requireToken(cmd)
		if !ok {
			return
		}

		client := NewPublishClient(viper.GetString("url"), token)
		schedule, err := client.GetSchedule(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		printStatus(cmd, schedule)
	},
}

func printStatus(cmd *cobra.Command, schedule *api.ScheduleResponse) {
	icon := statusIcon(schedule.Status)
	cmd.Printf("%s %sSchedule Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, schedule.ID)
	cmd.Printf("%sArticle:%s     %s\n", colorDim, colorReset, schedule.ArticleID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(schedule.Status))

	if schedule.Display != nil {
		cmd.Printf("%sPublishes:%s   %s at %s\n", colorDim, colorReset,
			schedule.Display.DisplayDate, schedule.Display.DisplayTime)
	} else {
		cmd.Printf("%sPublishes:%s   %s\n", colorDim, colorReset,
			schedule.ScheduledFor.Format("Mon, 02 Jan 2006 15:04 MST"))
	}

	cmd.Printf("%sAttempts:%s    %d\n", colorDim, colorReset, schedule.Attempts)

	if schedule.PublishedURL != nil {
		cmd.Printf("%sLive at:%s     %s%s%s\n", colorDim, colorReset, colorGreen, *schedule.PublishedURL, colorReset)
	}
	if schedule.ErrorMessage != nil {
		cmd.Printf("%sError:%s       %s%s%s\n", colorDim, colorReset, colorRed, *schedule.ErrorMessage, colorReset)
	}
	if schedule.NotifiedAt != nil {
		cmd.Printf("%sNotified:%s    %s\n", colorDim, colorReset, formatTimeWithRelative(schedule.NotifiedAt))
	}

	if schedule.Display != nil && schedule.Display.CanCancel {
		cmd.Printf("\n%sCancel with:%s publishctl cancel %s\n", colorDim, colorReset, schedule.ID)
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "published":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "publishing":
		return colorBlue + "⏳" + colorReset
	case "pending":
		return colorYellow + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "published":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "publishing":
		return icon + " " + colorBlue + status + colorReset
	case "pending":
		return icon + " " + colorYellow + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	relative := relativeTime(*t)
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
