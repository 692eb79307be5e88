package policy

import (
	"math"
	"testing"
	"time"

	"earntrack/internal/models"
)

type stubSource struct {
	settings models.BaseIncomeSettings
	targets  []models.WeeklyGoalTarget
}

func (s *stubSource) CurrentBaseIncomeSettings() models.BaseIncomeSettings {
	return s.settings
}

func (s *stubSource) WeeklyTargets() ([]models.WeeklyGoalTarget, error) {
	return s.targets, nil
}

func defaultStub() *stubSource {
	return &stubSource{settings: models.DefaultBaseIncomeSettings()}
}

var (
	wednesday = time.Date(2025, time.June, 11, 0, 0, 0, 0, time.Local)
	saturday  = time.Date(2025, time.June, 14, 0, 0, 0, 0, time.Local)
	sunday    = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.Local)
)

func TestDecomposeWednesday(t *testing.T) {
	r := New(defaultStub())

	d := r.Decompose(wednesday, 650)
	if d.BaseTarget != 500 {
		t.Errorf("Expected target 500, got %.2f", d.BaseTarget)
	}
	if d.BaseAchieved != 500 {
		t.Errorf("Expected achieved 500, got %.2f", d.BaseAchieved)
	}
	if d.BonusAmount != 150 {
		t.Errorf("Expected bonus 150, got %.2f", d.BonusAmount)
	}
	if d.BasePercentage != 100 {
		t.Errorf("Expected 100%%, got %.2f", d.BasePercentage)
	}
}

func TestDecomposeSundayBelowTarget(t *testing.T) {
	r := New(defaultStub())

	d := r.Decompose(sunday, 400)
	if d.BaseTarget != 1000 {
		t.Errorf("Expected target 1000, got %.2f", d.BaseTarget)
	}
	if d.BaseAchieved != 400 {
		t.Errorf("Expected achieved 400, got %.2f", d.BaseAchieved)
	}
	if d.BonusAmount != 0 {
		t.Errorf("Expected bonus 0, got %.2f", d.BonusAmount)
	}
	if d.BasePercentage != 40 {
		t.Errorf("Expected 40%%, got %.2f", d.BasePercentage)
	}
}

func TestDecomposeCoercesBadInput(t *testing.T) {
	r := New(defaultStub())

	for _, earned := range []float64{-100, math.NaN()} {
		d := r.Decompose(wednesday, earned)
		if d.ActualEarned != 0 || d.BaseAchieved != 0 || d.BonusAmount != 0 {
			t.Errorf("Expected zeroed decomposition for earned=%v, got %+v", earned, d)
		}
	}
}

func TestDecomposeZeroTarget(t *testing.T) {
	r := New(&stubSource{settings: models.BaseIncomeSettings{}})

	d := r.Decompose(wednesday, 100)
	if d.BasePercentage != 0 {
		t.Errorf("Expected 0%% for zero target, got %.2f", d.BasePercentage)
	}
	if d.BonusAmount != 100 {
		t.Errorf("Expected full bonus for zero target, got %.2f", d.BonusAmount)
	}
}

func TestDecompositionConsistency(t *testing.T) {
	r := New(defaultStub())

	for earned := 0.0; earned <= 2000; earned += 37.5 {
		d := r.Decompose(saturday, earned)
		if got := d.BaseAchieved + d.BonusAmount; math.Abs(got-earned) > 1e-9 {
			t.Errorf("achieved+bonus=%.4f, expected %.4f", got, earned)
		}
		if d.BaseAchieved > d.BaseTarget {
			t.Errorf("achieved %.2f exceeds target %.2f", d.BaseAchieved, d.BaseTarget)
		}
	}
}

func TestWeeklyOverridePrecedence(t *testing.T) {
	target := models.DefaultWeeklyGoalTarget(wednesday)
	target.WednesdayTarget = 900
	target.Recalculate()
	target.IsActive = true

	r := New(&stubSource{
		settings: models.DefaultBaseIncomeSettings(),
		targets:  []models.WeeklyGoalTarget{target},
	})

	if got := r.TargetFor(wednesday); got != 900 {
		t.Errorf("Expected override target 900, got %.2f", got)
	}
	// A date outside the overridden week falls back to the base schedule
	nextWednesday := wednesday.AddDate(0, 0, 7)
	if got := r.TargetFor(nextWednesday); got != 500 {
		t.Errorf("Expected base target 500 outside override week, got %.2f", got)
	}
}

func TestInactiveOverrideIgnored(t *testing.T) {
	target := models.DefaultWeeklyGoalTarget(wednesday)
	target.WednesdayTarget = 900
	target.IsActive = false

	r := New(&stubSource{
		settings: models.DefaultBaseIncomeSettings(),
		targets:  []models.WeeklyGoalTarget{target},
	})

	if got := r.TargetFor(wednesday); got != 500 {
		t.Errorf("Expected base target 500 for inactive override, got %.2f", got)
	}
}

func TestBulkSingleAgreement(t *testing.T) {
	target := models.DefaultWeeklyGoalTarget(wednesday)
	target.MondayTarget = 600
	target.Recalculate()
	target.IsActive = true

	r := New(&stubSource{
		settings: models.DefaultBaseIncomeSettings(),
		targets:  []models.WeeklyGoalTarget{target},
	})

	days := make([]models.DayEarning, 0, 21)
	earned := []float64{0, 120, 450, 500, 501, 700, 1500}
	start := models.WeekStart(wednesday)
	for i := 0; i < 21; i++ {
		days = append(days, models.DayEarning{
			Date:   start.AddDate(0, 0, i),
			Earned: earned[i%len(earned)],
		})
	}

	bulk := r.DecomposeAll(days)
	if len(bulk.Rows) != len(days) {
		t.Fatalf("Expected %d rows, got %d", len(days), len(bulk.Rows))
	}

	var wantEarned, wantTarget, wantAchieved, wantBonus float64
	for i, d := range days {
		single := r.Decompose(d.Date, d.Earned)
		row := bulk.Rows[i].Decomposition
		if row != single {
			t.Errorf("Row %d: bulk %+v != single %+v", i, row, single)
		}
		wantEarned += single.ActualEarned
		wantTarget += single.BaseTarget
		wantAchieved += single.BaseAchieved
		wantBonus += single.BonusAmount
	}

	if math.Abs(bulk.TotalEarned-wantEarned) > 1e-9 ||
		math.Abs(bulk.TotalBaseTarget-wantTarget) > 1e-9 ||
		math.Abs(bulk.TotalBaseAchieved-wantAchieved) > 1e-9 ||
		math.Abs(bulk.TotalBonus-wantBonus) > 1e-9 {
		t.Errorf("Bulk totals disagree with summed singles: %+v", bulk)
	}
}
