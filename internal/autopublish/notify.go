package autopublish

import "time"

// NotificationTime returns when the pre-publish reminder for a schedule
// should fire. The second return is false when notifications are disabled
// for the tenant.
func (e *Engine) NotificationTime(scheduledFor time.Time) (time.Time, bool) {
	if !e.cfg.NotifyBeforePublish {
		return time.Time{}, false
	}
	return scheduledFor.Add(-time.Duration(e.cfg.NotifyHoursBeforePublish) * time.Hour), true
}

// ShouldNotify reports whether the reminder is due: the notification time
// has been reached but the scheduled publish time has not. It never fires
// once the scheduled time has passed.
func (e *Engine) ShouldNotify(scheduledFor, now time.Time) bool {
	notifyAt, ok := e.NotificationTime(scheduledFor)
	if !ok {
		return false
	}
	return !now.Before(notifyAt) && now.Before(scheduledFor)
}
