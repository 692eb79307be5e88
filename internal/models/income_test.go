package models

import (
	"testing"
	"time"
)

func TestRecalculateDerivedFields(t *testing.T) {
	r := NewIncomeRecord(time.Now(), 500)
	r.SetAmount(SourceZomato, 400)
	r.SetAmount(SourceSwiggy, 250)

	if r.Earned != 650 {
		t.Errorf("Expected earned 650, got %.2f", r.Earned)
	}
	if r.Progress != 130 {
		t.Errorf("Expected progress 130, got %.2f", r.Progress)
	}
	if r.Extra != 150 {
		t.Errorf("Expected extra 150, got %.2f", r.Extra)
	}
	if r.Status != StatusExceeded {
		t.Errorf("Expected status Exceeded, got %s", r.Status)
	}
}

func TestRecalculateZeroGoal(t *testing.T) {
	r := NewIncomeRecord(time.Now(), 0)
	r.SetAmount(SourceZomato, 100)

	if r.Progress != 0 {
		t.Errorf("Expected progress 0 for zero goal, got %.2f", r.Progress)
	}
}

func TestStatusDerivation(t *testing.T) {
	today := DateOnly(time.Now())
	yesterday := today.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		date   time.Time
		earned float64
		goal   float64
		want   IncomeStatus
	}{
		{"zero earned today", today, 0, 500, StatusPending},
		{"zero earned in the past", yesterday, 0, 500, StatusMissed},
		{"partial progress", today, 300, 500, StatusInProgress},
		{"exactly at goal", today, 500, 500, StatusCompleted},
		{"above goal", today, 650, 500, StatusExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewIncomeRecord(tt.date, tt.goal)
			r.SetAmount(SourceZomato, tt.earned)
			if r.Status != tt.want {
				t.Errorf("Expected status %s, got %s", tt.want, r.Status)
			}
		})
	}
}

func TestValidateNegativeAmounts(t *testing.T) {
	r := NewIncomeRecord(time.Now(), 500)
	r.Zomato = -10
	r.GoalInc = -5

	err := r.Validate()
	if err == nil {
		t.Fatal("Expected validation error for negative values")
	}
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Expected ValidationErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("Expected 2 violations, got %d: %v", len(errs), errs)
	}
}

func TestAmountAccessorsCoverAllSources(t *testing.T) {
	r := NewIncomeRecord(time.Now(), 500)
	for i, s := range AllSources {
		r.SetAmount(s, float64(i+1))
	}
	for i, s := range AllSources {
		if got := r.Amount(s); got != float64(i+1) {
			t.Errorf("%s: expected %.0f, got %.2f", s, float64(i+1), got)
		}
	}
	if r.Earned != 55 {
		t.Errorf("Expected earned 55, got %.2f", r.Earned)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2025-06-09", "2025-06-09"}, // Monday
		{"2025-06-11", "2025-06-09"}, // Wednesday
		{"2025-06-15", "2025-06-09"}, // Sunday
	}
	for _, tt := range tests {
		day, _ := time.ParseInLocation("2006-01-02", tt.day, time.Local)
		got := WeekStart(day).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("WeekStart(%s): expected %s, got %s", tt.day, tt.want, got)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
	}
	for _, tt := range tests {
		d := time.Date(tt.year, tt.month, 15, 0, 0, 0, 0, time.Local)
		if got := DaysInMonth(d); got != tt.want {
			t.Errorf("DaysInMonth(%d-%d): expected %d, got %d", tt.year, tt.month, tt.want, got)
		}
	}
}

func TestWeeklyGoalTargetRecalculate(t *testing.T) {
	target := DefaultWeeklyGoalTarget(time.Now())
	if target.WeeklyTarget != 4300 {
		t.Errorf("Expected weekly target 4300, got %.2f", target.WeeklyTarget)
	}

	target.SundayTarget = 1200
	target.Recalculate()
	if target.WeeklyTarget != 4500 {
		t.Errorf("Expected weekly target 4500 after change, got %.2f", target.WeeklyTarget)
	}
}

func TestBaseForSchedule(t *testing.T) {
	settings := DefaultBaseIncomeSettings()

	saturday := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.Local)
	sunday := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.Local)
	wednesday := time.Date(2025, time.June, 11, 0, 0, 0, 0, time.Local)

	if got := settings.BaseFor(wednesday); got != DefaultWeekdayBase {
		t.Errorf("Expected weekday base %.0f, got %.2f", DefaultWeekdayBase, got)
	}
	if got := settings.BaseFor(saturday); got != DefaultSaturdayBase {
		t.Errorf("Expected saturday base %.0f, got %.2f", DefaultSaturdayBase, got)
	}
	if got := settings.BaseFor(sunday); got != DefaultSundayBase {
		t.Errorf("Expected sunday base %.0f, got %.2f", DefaultSundayBase, got)
	}
}

func TestGoalSettingValidate(t *testing.T) {
	g := GoalSetting{Name: "", Amount: -1}
	g.StartDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	g.EndDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)

	err := g.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if len(err.(ValidationErrors)) != 3 {
		t.Errorf("Expected 3 violations, got %v", err)
	}
}
