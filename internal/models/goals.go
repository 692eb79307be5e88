package models

import "time"

// Default base targets when no settings record exists.
const (
	DefaultWeekdayBase  = 500.0
	DefaultSaturdayBase = 700.0
	DefaultSundayBase   = 1000.0

	// DefaultMonthlyGoal applies when no active monthly GoalSetting exists.
	DefaultMonthlyGoal = 30000.0
)

// BaseIncomeSettings holds the minimum expected daily earning per day class.
// At most one record is active at a time; changes append a new record and
// deactivate the rest, preserving history.
type BaseIncomeSettings struct {
	ID           int       `json:"id"`
	WeekdayBase  float64   `json:"weekday_base"`
	SaturdayBase float64   `json:"saturday_base"`
	SundayBase   float64   `json:"sunday_base"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultBaseIncomeSettings returns the built-in base schedule.
func DefaultBaseIncomeSettings() BaseIncomeSettings {
	now := time.Now()
	return BaseIncomeSettings{
		WeekdayBase:  DefaultWeekdayBase,
		SaturdayBase: DefaultSaturdayBase,
		SundayBase:   DefaultSundayBase,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// BaseFor returns the base target for a date from the weekday/Saturday/Sunday
// schedule.
func (b BaseIncomeSettings) BaseFor(day time.Time) float64 {
	switch day.Weekday() {
	case time.Saturday:
		return b.SaturdayBase
	case time.Sunday:
		return b.SundayBase
	default:
		return b.WeekdayBase
	}
}

// Validate checks schema rules and returns every violation.
func (b BaseIncomeSettings) Validate() error {
	var errs ValidationErrors
	if b.WeekdayBase < 0 {
		errs = append(errs, "weekday base cannot be negative")
	}
	if b.SaturdayBase < 0 {
		errs = append(errs, "saturday base cannot be negative")
	}
	if b.SundayBase < 0 {
		errs = append(errs, "sunday base cannot be negative")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WeeklyGoalTarget overrides the daily targets for one specific week,
// identified by its Monday. Where active, it takes precedence over
// BaseIncomeSettings for that week only.
type WeeklyGoalTarget struct {
	ID              int       `json:"id"`
	WeekStart       time.Time `json:"week_start"`
	MondayTarget    float64   `json:"monday_target"`
	TuesdayTarget   float64   `json:"tuesday_target"`
	WednesdayTarget float64   `json:"wednesday_target"`
	ThursdayTarget  float64   `json:"thursday_target"`
	FridayTarget    float64   `json:"friday_target"`
	SaturdayTarget  float64   `json:"saturday_target"`
	SundayTarget    float64   `json:"sunday_target"`

	// Derived: sum of the seven daily targets.
	WeeklyTarget float64 `json:"weekly_target"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultWeeklyGoalTarget returns the stock per-day targets for a week.
func DefaultWeeklyGoalTarget(weekStart time.Time) WeeklyGoalTarget {
	t := WeeklyGoalTarget{
		WeekStart:       WeekStart(weekStart),
		MondayTarget:    500,
		TuesdayTarget:   500,
		WednesdayTarget: 500,
		ThursdayTarget:  500,
		FridayTarget:    500,
		SaturdayTarget:  800,
		SundayTarget:    1000,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}
	t.Recalculate()
	return t
}

// Recalculate recomputes the derived weekly total.
func (t *WeeklyGoalTarget) Recalculate() {
	t.WeeklyTarget = t.MondayTarget + t.TuesdayTarget + t.WednesdayTarget +
		t.ThursdayTarget + t.FridayTarget + t.SaturdayTarget + t.SundayTarget
}

// TargetFor returns the configured target for a date within the week.
func (t WeeklyGoalTarget) TargetFor(day time.Time) float64 {
	switch day.Weekday() {
	case time.Monday:
		return t.MondayTarget
	case time.Tuesday:
		return t.TuesdayTarget
	case time.Wednesday:
		return t.WednesdayTarget
	case time.Thursday:
		return t.ThursdayTarget
	case time.Friday:
		return t.FridayTarget
	case time.Saturday:
		return t.SaturdayTarget
	default:
		return t.SundayTarget
	}
}

// GoalPeriod classifies a goal's time horizon.
type GoalPeriod string

const (
	PeriodDaily   GoalPeriod = "Daily"
	PeriodWeekly  GoalPeriod = "Weekly"
	PeriodMonthly GoalPeriod = "Monthly"
)

// GoalSetting is a named goal with a validity window. The engine's current
// monthly goal is the most recently created active Monthly record; daily and
// yearly goals are always derived from it, never stored.
type GoalSetting struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Period      GoalPeriod `json:"period"`
	Amount      float64    `json:"amount"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	IsActive    bool       `json:"is_active"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate checks schema rules and returns every violation.
func (g GoalSetting) Validate() error {
	var errs ValidationErrors
	if g.Name == "" {
		errs = append(errs, "goal name cannot be empty")
	}
	if g.Amount < 0 {
		errs = append(errs, "goal amount cannot be negative")
	}
	if !g.EndDate.IsZero() && g.EndDate.Before(g.StartDate) {
		errs = append(errs, "goal start date cannot be after end date")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MonthlyGoalSummary is a persisted per-month rollup: total and per-source
// earnings against the month's target. One row per month; recomputing a
// month replaces its row.
type MonthlyGoalSummary struct {
	ID            int       `json:"id"`
	Month         time.Time `json:"month"` // first day of the month
	MonthlyTarget float64   `json:"monthly_target"`
	TotalEarned   float64   `json:"total_earned"`

	ZomatoEarned    float64 `json:"zomato_earned"`
	SwiggyEarned    float64 `json:"swiggy_earned"`
	ShadowFaxEarned float64 `json:"shadow_fax_earned"`
	PCRepairEarned  float64 `json:"pc_repair_earned"`
	SettingsEarned  float64 `json:"settings_earned"`
	YouTubeEarned   float64 `json:"youtube_earned"`
	GPLinksEarned   float64 `json:"gp_links_earned"`
	IDSalesEarned   float64 `json:"id_sales_earned"`
	OtherEarned     float64 `json:"other_sources_earned"`
	ExtraWorkEarned float64 `json:"extra_work_earned"`

	// Derived fields (recomputed, never stored independently)
	Progress     float64 `json:"progress_percentage"`
	AverageDaily float64 `json:"average_daily"`

	DaysCompleted int       `json:"days_completed"`
	DaysInMonth   int       `json:"days_in_month"`
	CreatedAt     time.Time `json:"created_at"`
}

// SourceEarned returns the month's total for one source.
func (m *MonthlyGoalSummary) SourceEarned(s Source) float64 {
	switch s {
	case SourceZomato:
		return m.ZomatoEarned
	case SourceSwiggy:
		return m.SwiggyEarned
	case SourceShadowFax:
		return m.ShadowFaxEarned
	case SourcePCRepair:
		return m.PCRepairEarned
	case SourceSettings:
		return m.SettingsEarned
	case SourceYouTube:
		return m.YouTubeEarned
	case SourceGPLinks:
		return m.GPLinksEarned
	case SourceIDSales:
		return m.IDSalesEarned
	case SourceOther:
		return m.OtherEarned
	case SourceExtraWork:
		return m.ExtraWorkEarned
	}
	return 0
}

// SetSourceEarned sets the month's total for one source.
func (m *MonthlyGoalSummary) SetSourceEarned(s Source, v float64) {
	switch s {
	case SourceZomato:
		m.ZomatoEarned = v
	case SourceSwiggy:
		m.SwiggyEarned = v
	case SourceShadowFax:
		m.ShadowFaxEarned = v
	case SourcePCRepair:
		m.PCRepairEarned = v
	case SourceSettings:
		m.SettingsEarned = v
	case SourceYouTube:
		m.YouTubeEarned = v
	case SourceGPLinks:
		m.GPLinksEarned = v
	case SourceIDSales:
		m.IDSalesEarned = v
	case SourceOther:
		m.OtherEarned = v
	case SourceExtraWork:
		m.ExtraWorkEarned = v
	}
}

// Recalculate recomputes the derived progress and daily-average fields.
func (m *MonthlyGoalSummary) Recalculate() {
	m.Progress = 0
	if m.MonthlyTarget > 0 {
		m.Progress = m.TotalEarned / m.MonthlyTarget * 100
	}
	m.AverageDaily = 0
	if m.DaysCompleted > 0 {
		m.AverageDaily = m.TotalEarned / float64(m.DaysCompleted)
	}
}

// SourceWeightageHistory is one append-only audit row: a source's percentage
// contribution to total earnings for a period. Rows are never updated or
// deleted.
type SourceWeightageHistory struct {
	ID                  int       `json:"id"`
	Date                time.Time `json:"date"`
	SourceName          Source    `json:"source_name"`
	WeightagePercentage float64   `json:"weightage_percentage"`
	TotalEarned         float64   `json:"total_earned"`
	PeriodType          string    `json:"period_type"` // daily, weekly, monthly
	Notes               string    `json:"notes"`
	CreatedAt           time.Time `json:"created_at"`
}
