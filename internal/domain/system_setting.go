package domain

import "time"

// Well-known system setting keys read by the SLA calendar.
const (
	SettingSlaMode          = "sla_calculation_mode"
	SettingTimezone         = "timezone"
	SettingWorkingDays      = "working_days"
	SettingWorkingHourStart = "working_hour_start"
	SettingWorkingHourEnd   = "working_hour_end"
)

// SystemSetting is one key/value pair of installation-wide configuration.
type SystemSetting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
	UpdatedBy *string
}
