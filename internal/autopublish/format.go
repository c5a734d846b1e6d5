package autopublish

import "time"

// ScheduleStatus is the lifecycle state of a scheduled article. A schedule
// is created pending; the orchestrator flips it to publishing immediately
// before invoking the transport, then to published or failed. Cancellation
// is only legal while still pending. Published and cancelled are terminal;
// failed may be re-queued to pending while retries remain.
type ScheduleStatus string

const (
	SchedulePending    ScheduleStatus = "pending"
	SchedulePublishing ScheduleStatus = "publishing"
	SchedulePublished  ScheduleStatus = "published"
	ScheduleFailed     ScheduleStatus = "failed"
	ScheduleCancelled  ScheduleStatus = "cancelled"
)

// ScheduleDisplay is the UI-agnostic presentation of a schedule.
type ScheduleDisplay struct {
	DisplayDate string `json:"display_date"`
	DisplayTime string `json:"display_time"`
	StatusColor string `json:"status_color"`
	StatusLabel string `json:"status_label"`
	CanCancel   bool   `json:"can_cancel"`
}

// Display layouts for FormatScheduled. English-only for now; a locale
// dimension would replace these per tenant.
const (
	displayDateLayout = "January 2, 2006"
	displayTimeLayout = "3:04 PM"
)

var statusColors = map[ScheduleStatus]string{
	SchedulePending:    "yellow",
	SchedulePublishing: "blue",
	SchedulePublished:  "green",
	ScheduleFailed:     "red",
	ScheduleCancelled:  "gray",
}

var statusLabels = map[ScheduleStatus]string{
	SchedulePending:    "Scheduled",
	SchedulePublishing: "Publishing",
	SchedulePublished:  "Published",
	ScheduleFailed:     "Failed",
	ScheduleCancelled:  "Cancelled",
}

// FormatScheduled maps persisted schedule state to a display record,
// rendering the timestamp in the given timezone. Only pending schedules are
// cancellable; everything else is either terminal or already in flight.
func FormatScheduled(scheduledFor time.Time, status ScheduleStatus, loc *time.Location) ScheduleDisplay {
	if loc == nil {
		loc = time.UTC
	}
	local := scheduledFor.In(loc)

	color, ok := statusColors[status]
	if !ok {
		color = "gray"
	}
	label, ok := statusLabels[status]
	if !ok {
		label = string(status)
	}

	return ScheduleDisplay{
		DisplayDate: local.Format(displayDateLayout),
		DisplayTime: local.Format(displayTimeLayout),
		StatusColor: color,
		StatusLabel: label,
		CanCancel:   status == SchedulePending,
	}
}
