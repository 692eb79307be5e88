// Package policy resolves the base target for any date and decomposes
// earnings into base and bonus against it. Weekly targets, where configured,
// override the base income schedule for their week.
package policy

import (
	"math"
	"time"

	"earntrack/internal/models"
)

// TargetSource supplies the configuration a Resolver reads. *ledger.Ledger
// satisfies it.
type TargetSource interface {
	CurrentBaseIncomeSettings() models.BaseIncomeSettings
	WeeklyTargets() ([]models.WeeklyGoalTarget, error)
}

// Resolver answers target and decomposition queries.
type Resolver struct {
	source TargetSource
}

// New creates a Resolver over the given configuration source.
func New(source TargetSource) *Resolver {
	return &Resolver{source: source}
}

// TargetFor returns the base target for a date: the active weekly override
// for that date's week when one exists, otherwise the base income schedule.
func (r *Resolver) TargetFor(day time.Time) float64 {
	if t, ok := r.weeklyOverride(day); ok {
		return t.TargetFor(day)
	}
	return r.source.CurrentBaseIncomeSettings().BaseFor(day)
}

func (r *Resolver) weeklyOverride(day time.Time) (models.WeeklyGoalTarget, bool) {
	targets, err := r.source.WeeklyTargets()
	if err != nil {
		return models.WeeklyGoalTarget{}, false
	}

	weekStart := models.WeekStart(day)
	var match models.WeeklyGoalTarget
	found := false
	for _, t := range targets {
		if t.IsActive && t.WeekStart.Equal(weekStart) {
			match = t
			found = true
		}
	}
	return match, found
}

// Decompose splits one day's earnings against that day's target. Negative or
// NaN earnings are treated as zero.
func (r *Resolver) Decompose(day time.Time, earned float64) models.Decomposition {
	return decompose(r.TargetFor(day), earned)
}

// DecomposeAll decomposes a batch of day earnings in a single pass, reading
// the settings and weekly targets once, and returns per-row results plus
// column totals.
func (r *Resolver) DecomposeAll(days []models.DayEarning) models.BulkDecomposition {
	settings := r.source.CurrentBaseIncomeSettings()

	overrides := map[time.Time]models.WeeklyGoalTarget{}
	if targets, err := r.source.WeeklyTargets(); err == nil {
		for _, t := range targets {
			if t.IsActive {
				overrides[models.DateOnly(t.WeekStart)] = t
			}
		}
	}

	result := models.BulkDecomposition{
		Rows: make([]models.DayDecomposition, 0, len(days)),
	}
	for _, d := range days {
		target := settings.BaseFor(d.Date)
		if t, ok := overrides[models.WeekStart(d.Date)]; ok {
			target = t.TargetFor(d.Date)
		}

		dec := decompose(target, d.Earned)
		result.Rows = append(result.Rows, models.DayDecomposition{
			Date:          d.Date,
			Decomposition: dec,
		})
		result.TotalEarned += dec.ActualEarned
		result.TotalBaseTarget += dec.BaseTarget
		result.TotalBaseAchieved += dec.BaseAchieved
		result.TotalBonus += dec.BonusAmount
	}
	return result
}

func decompose(target, earned float64) models.Decomposition {
	if earned < 0 || math.IsNaN(earned) {
		earned = 0
	}

	d := models.Decomposition{
		BaseTarget:   target,
		ActualEarned: earned,
		BaseAchieved: math.Min(earned, target),
		BonusAmount:  math.Max(0, earned-target),
	}
	if target > 0 {
		d.BasePercentage = d.BaseAchieved / target * 100
	}
	return d
}
