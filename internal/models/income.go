package models

import (
	"fmt"
	"time"
)

// Source identifies one of the fixed income sources tracked per day.
// The set is closed: adding a source means adding a constant here plus a
// struct field on IncomeRecord, and the compiler flags every switch that
// needs updating.
type Source string

const (
	SourceZomato    Source = "zomato"
	SourceSwiggy    Source = "swiggy"
	SourceShadowFax Source = "shadow_fax"
	SourcePCRepair  Source = "pc_repair"
	SourceSettings  Source = "settings"
	SourceYouTube   Source = "youtube"
	SourceGPLinks   Source = "gp_links"
	SourceIDSales   Source = "id_sales"
	SourceOther     Source = "other_sources"
	SourceExtraWork Source = "extra_work"
)

// AllSources lists every income source in persisted column order.
var AllSources = []Source{
	SourceZomato, SourceSwiggy, SourceShadowFax, SourcePCRepair,
	SourceSettings, SourceYouTube, SourceGPLinks, SourceIDSales,
	SourceOther, SourceExtraWork,
}

// Label returns a human-readable name for a source ("shadow_fax" -> "Shadow Fax").
func (s Source) Label() string {
	switch s {
	case SourceZomato:
		return "Zomato"
	case SourceSwiggy:
		return "Swiggy"
	case SourceShadowFax:
		return "Shadow Fax"
	case SourcePCRepair:
		return "PC Repair"
	case SourceSettings:
		return "Settings"
	case SourceYouTube:
		return "YouTube"
	case SourceGPLinks:
		return "GP Links"
	case SourceIDSales:
		return "ID Sales"
	case SourceOther:
		return "Other Sources"
	case SourceExtraWork:
		return "Extra Work"
	}
	return string(s)
}

// IncomeStatus classifies a day's earnings against its goal.
type IncomeStatus string

const (
	StatusPending    IncomeStatus = "Pending"
	StatusInProgress IncomeStatus = "In Progress"
	StatusCompleted  IncomeStatus = "Completed"
	StatusExceeded   IncomeStatus = "Exceeded"
	StatusMissed     IncomeStatus = "Missed"
)

// IncomeRecord is one day's earnings across all sources. Earned, Progress,
// Extra and Status are derived from the source amounts, goal and date; they
// are recomputed by Recalculate and must never be set independently.
type IncomeRecord struct {
	ID   int       `json:"id"`
	Date time.Time `json:"date"`

	Zomato       float64 `json:"zomato"`
	Swiggy       float64 `json:"swiggy"`
	ShadowFax    float64 `json:"shadow_fax"`
	PCRepair     float64 `json:"pc_repair"`
	Settings     float64 `json:"settings"`
	YouTube      float64 `json:"youtube"`
	GPLinks      float64 `json:"gp_links"`
	IDSales      float64 `json:"id_sales"`
	OtherSources float64 `json:"other_sources"`
	ExtraWork    float64 `json:"extra_work"`

	GoalInc float64 `json:"goal_inc"`

	// Derived fields (recomputed, never stored independently)
	Earned   float64      `json:"earned"`
	Progress float64      `json:"progress"`
	Extra    float64      `json:"extra"`
	Status   IncomeStatus `json:"status"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewIncomeRecord creates a record for a date with the given daily goal and
// derived fields already computed.
func NewIncomeRecord(day time.Time, goal float64) IncomeRecord {
	now := time.Now()
	r := IncomeRecord{
		Date:      DateOnly(day),
		GoalInc:   goal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Recalculate()
	return r
}

// Amount returns the earning for one source.
func (r *IncomeRecord) Amount(s Source) float64 {
	switch s {
	case SourceZomato:
		return r.Zomato
	case SourceSwiggy:
		return r.Swiggy
	case SourceShadowFax:
		return r.ShadowFax
	case SourcePCRepair:
		return r.PCRepair
	case SourceSettings:
		return r.Settings
	case SourceYouTube:
		return r.YouTube
	case SourceGPLinks:
		return r.GPLinks
	case SourceIDSales:
		return r.IDSales
	case SourceOther:
		return r.OtherSources
	case SourceExtraWork:
		return r.ExtraWork
	}
	return 0
}

// SetAmount sets the earning for one source and recomputes derived fields.
func (r *IncomeRecord) SetAmount(s Source, v float64) {
	switch s {
	case SourceZomato:
		r.Zomato = v
	case SourceSwiggy:
		r.Swiggy = v
	case SourceShadowFax:
		r.ShadowFax = v
	case SourcePCRepair:
		r.PCRepair = v
	case SourceSettings:
		r.Settings = v
	case SourceYouTube:
		r.YouTube = v
	case SourceGPLinks:
		r.GPLinks = v
	case SourceIDSales:
		r.IDSales = v
	case SourceOther:
		r.OtherSources = v
	case SourceExtraWork:
		r.ExtraWork = v
	}
	r.Recalculate()
}

// Recalculate recomputes Earned, Progress, Extra and Status from the source
// amounts, goal and date.
func (r *IncomeRecord) Recalculate() {
	r.recalculateAt(time.Now())
}

func (r *IncomeRecord) recalculateAt(now time.Time) {
	var sum float64
	for _, s := range AllSources {
		sum += r.Amount(s)
	}
	r.Earned = sum

	if r.GoalInc > 0 {
		r.Progress = r.Earned / r.GoalInc * 100
	} else {
		r.Progress = 0
	}
	r.Extra = 0
	if r.Earned > r.GoalInc {
		r.Extra = r.Earned - r.GoalInc
	}

	switch {
	case r.Earned == 0:
		if DateOnly(r.Date).Before(DateOnly(now)) {
			r.Status = StatusMissed
		} else {
			r.Status = StatusPending
		}
	case r.Earned > r.GoalInc:
		r.Status = StatusExceeded
	case r.Earned == r.GoalInc:
		r.Status = StatusCompleted
	default:
		r.Status = StatusInProgress
	}
}

// GoalMet reports whether the day's goal was reached.
func (r *IncomeRecord) GoalMet() bool {
	return r.Status == StatusCompleted || r.Status == StatusExceeded
}

// Validate checks schema rules and returns every violation.
func (r *IncomeRecord) Validate() error {
	var errs ValidationErrors
	if r.GoalInc < 0 {
		errs = append(errs, "goal amount cannot be negative")
	}
	for _, s := range AllSources {
		if r.Amount(s) < 0 {
			errs = append(errs, fmt.Sprintf("%s amount cannot be negative", s.Label()))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidationErrors is a list of human-readable schema violations.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	out := "validation failed"
	for _, msg := range v {
		out += ": " + msg
	}
	return out
}

// DateOnly truncates a time to its calendar date in local time.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	d := DateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1).Day()
}
