package domain

import (
	"strings"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/schedule"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/timeutils"
)

type AutomationStatus string

const (
	AutomationActive  AutomationStatus = "active"
	AutomationPaused  AutomationStatus = "paused"
	AutomationDeleted AutomationStatus = "deleted"
)

// Automation is a recurring posting plan owned by one tenant.
type Automation struct {
	ID           string              `json:"id"`
	TenantID     string              `json:"tenant_id"`
	Name         string              `json:"name"`
	Topic        string              `json:"topic"`
	Provider     contentgen.Provider `json:"provider"`
	Style        string              `json:"style,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	TimeOfDay    string              `json:"time_of_day"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	Frequency    schedule.Frequency  `json:"frequency"`
	Days         []time.Weekday      `json:"days,omitempty"`
	Timezone     string              `json:"timezone"`
	Hashtags     []string            `json:"hashtags,omitempty"`
	Status       AutomationStatus    `json:"status"`
	// MaterializedThrough is the last civil day posts exist for.
	MaterializedThrough string    `json:"materialized_through,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ScheduleParams converts the stored cadence into expander input.
func (a *Automation) ScheduleParams() (schedule.Params, error) {
	start, err := timeutils.ParseDate(a.StartDate)
	if err != nil {
		return schedule.Params{}, err
	}
	end, err := timeutils.ParseDate(a.EndDate)
	if err != nil {
		return schedule.Params{}, err
	}
	clock, err := timeutils.ParseClock(a.TimeOfDay)
	if err != nil {
		return schedule.Params{}, err
	}
	loc, err := timeutils.LoadLocation(a.Timezone)
	if err != nil {
		return schedule.Params{}, err
	}
	p := schedule.Params{
		Start:     start,
		End:       end,
		TimeOfDay: clock,
		Frequency: a.Frequency,
		Days:      a.Days,
		Location:  loc,
	}
	return p, p.Validate()
}

// Ended reports whether the last scheduled day is behind now in the
// automation's location.
func (a *Automation) Ended(now time.Time) bool {
	end, err := timeutils.ParseDate(a.EndDate)
	if err != nil {
		return true
	}
	loc, err := timeutils.LoadLocation(a.Timezone)
	if err != nil {
		return true
	}
	return schedule.LocalDay(now, loc).After(end)
}

// HashtagLine renders the static tags as "#a #b".
func (a *Automation) HashtagLine() string {
	tags := make([]string, 0, len(a.Hashtags))
	for _, h := range a.Hashtags {
		h = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(h), "#"))
		if h != "" {
			tags = append(tags, "#"+h)
		}
	}
	return strings.Join(tags, " ")
}

// AutomationFilter narrows List results.
type AutomationFilter struct {
	Status         AutomationStatus
	IncludeDeleted bool
}
