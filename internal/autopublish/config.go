package autopublish

import (
	"fmt"
	"time"
)

// PublishingWindow is a recurring weekly time range during which
// auto-publish may occur. Hours are in the tenant's timezone; the range is
// half-open, [StartHour, EndHour).
type PublishingWindow struct {
	DayOfWeek int `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Config is the tenant-scoped auto-publish configuration. It is immutable
// once handed to an Engine; per-tenant overrides are applied up front via
// Apply, never mid-evaluation.
type Config struct {
	DefaultDaysAfterReady    int                `json:"default_days_after_ready"`
	RequireHumanReview       bool               `json:"require_human_review"`
	MinimumQualityScore      int                `json:"minimum_quality_score"`
	MaximumRiskLevel         RiskLevel          `json:"maximum_risk_level"`
	NotifyBeforePublish      bool               `json:"notify_before_publish"`
	NotifyHoursBeforePublish int                `json:"notify_hours_before_publish"`
	PublishingWindows        []PublishingWindow `json:"publishing_windows"`
	Timezone                 string             `json:"timezone"`
}

// ConfigOverride carries per-tenant settings. Nil fields fall through to the
// default; set fields replace it wholesale (shallow merge, so a window list
// in an override replaces the entire default calendar).
type ConfigOverride struct {
	DefaultDaysAfterReady    *int               `json:"default_days_after_ready,omitempty"`
	RequireHumanReview       *bool              `json:"require_human_review,omitempty"`
	MinimumQualityScore      *int               `json:"minimum_quality_score,omitempty"`
	MaximumRiskLevel         *RiskLevel         `json:"maximum_risk_level,omitempty"`
	NotifyBeforePublish      *bool              `json:"notify_before_publish,omitempty"`
	NotifyHoursBeforePublish *int               `json:"notify_hours_before_publish,omitempty"`
	PublishingWindows        []PublishingWindow `json:"publishing_windows,omitempty"`
	Timezone                 *string            `json:"timezone,omitempty"`
}

// DefaultConfig returns the baseline configuration applied to every tenant:
// publish three days after ready, human review required, quality floor 75,
// low risk only, 24h reminder, Mon-Fri 09:00-17:00 Eastern.
func DefaultConfig() Config {
	return Config{
		DefaultDaysAfterReady:    3,
		RequireHumanReview:       true,
		MinimumQualityScore:      75,
		MaximumRiskLevel:         RiskLow,
		NotifyBeforePublish:      true,
		NotifyHoursBeforePublish: 24,
		PublishingWindows: []PublishingWindow{
			{DayOfWeek: 1, StartHour: 9, EndHour: 17},
			{DayOfWeek: 2, StartHour: 9, EndHour: 17},
			{DayOfWeek: 3, StartHour: 9, EndHour: 17},
			{DayOfWeek: 4, StartHour: 9, EndHour: 17},
			{DayOfWeek: 5, StartHour: 9, EndHour: 17},
		},
		Timezone: "America/New_York",
	}
}

// Apply returns a copy of c with the override's set fields merged in.
func (c Config) Apply(o ConfigOverride) Config {
	if o.DefaultDaysAfterReady != nil {
		c.DefaultDaysAfterReady = *o.DefaultDaysAfterReady
	}
	if o.RequireHumanReview != nil {
		c.RequireHumanReview = *o.RequireHumanReview
	}
	if o.MinimumQualityScore != nil {
		c.MinimumQualityScore = *o.MinimumQualityScore
	}
	if o.MaximumRiskLevel != nil {
		c.MaximumRiskLevel = *o.MaximumRiskLevel
	}
	if o.NotifyBeforePublish != nil {
		c.NotifyBeforePublish = *o.NotifyBeforePublish
	}
	if o.NotifyHoursBeforePublish != nil {
		c.NotifyHoursBeforePublish = *o.NotifyHoursBeforePublish
	}
	if o.PublishingWindows != nil {
		c.PublishingWindows = o.PublishingWindows
	}
	if o.Timezone != nil {
		c.Timezone = *o.Timezone
	}
	return c
}

// Validate checks the configuration at load time. The slot search itself
// never validates: a window with StartHour >= EndHour would silently never
// match, so malformed config must be rejected before it reaches an Engine.
func (c Config) Validate() error {
	if c.DefaultDaysAfterReady < 0 {
		return fmt.Errorf("default_days_after_ready must not be negative, got %d", c.DefaultDaysAfterReady)
	}
	if c.MinimumQualityScore < 0 || c.MinimumQualityScore > 100 {
		return fmt.Errorf("minimum_quality_score must be within 0..100, got %d", c.MinimumQualityScore)
	}
	if !c.MaximumRiskLevel.Known() {
		return fmt.Errorf("unknown maximum_risk_level %q", c.MaximumRiskLevel)
	}
	if c.NotifyHoursBeforePublish < 0 {
		return fmt.Errorf("notify_hours_before_publish must not be negative, got %d", c.NotifyHoursBeforePublish)
	}
	for i, w := range c.PublishingWindows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return fmt.Errorf("publishing window %d: day_of_week must be within 0..6, got %d", i, w.DayOfWeek)
		}
		if w.StartHour < 0 || w.StartHour > 23 {
			return fmt.Errorf("publishing window %d: start_hour must be within 0..23, got %d", i, w.StartHour)
		}
		if w.EndHour < 0 || w.EndHour > 23 {
			return fmt.Errorf("publishing window %d: end_hour must be within 0..23, got %d", i, w.EndHour)
		}
		if w.StartHour >= w.EndHour {
			return fmt.Errorf("publishing window %d: start_hour %d must be before end_hour %d", i, w.StartHour, w.EndHour)
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}
