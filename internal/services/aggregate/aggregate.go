// Package aggregate composes the decomposition engine over date ranges to
// produce weekly, monthly and yearly summaries plus the headline overview.
package aggregate

import (
	"time"

	"earntrack/internal/models"
	"earntrack/internal/services/policy"
)

// DataSource supplies the records and goals the summaries are built from.
// *ledger.Ledger satisfies it.
type DataSource interface {
	AllRecords() ([]models.IncomeRecord, error)
	RecordsInRange(start, end time.Time) ([]models.IncomeRecord, error)
	CurrentDailyGoal() float64
	CurrentYearlyGoal() float64
}

// Service builds period summaries.
type Service struct {
	data     DataSource
	resolver *policy.Resolver
	now      func() time.Time
}

// New creates an aggregation service.
func New(data DataSource, resolver *policy.Resolver) *Service {
	return &Service{data: data, resolver: resolver, now: time.Now}
}

// WeeklySummary summarizes the Monday-aligned week containing day. The daily
// breakdown always has exactly seven entries; days without a record carry the
// theoretical target with zero earnings.
func (s *Service) WeeklySummary(day time.Time) (models.WeeklySummary, error) {
	start := models.WeekStart(day)
	end := start.AddDate(0, 0, 6)

	byDate, err := s.recordsByDate(start, end)
	if err != nil {
		return models.WeeklySummary{}, err
	}

	days := make([]models.DayEarning, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		var earned float64
		if r, ok := byDate[d]; ok {
			earned = r.Earned
		}
		days = append(days, models.DayEarning{Date: d, Earned: earned})
	}
	bulk := s.resolver.DecomposeAll(days)

	summary := models.WeeklySummary{
		StartDate:         start,
		EndDate:           end,
		TotalEarned:       bulk.TotalEarned,
		TotalBaseTarget:   bulk.TotalBaseTarget,
		TotalBaseAchieved: bulk.TotalBaseAchieved,
		TotalBonus:        bulk.TotalBonus,
		DailyBreakdown:    make([]models.DaySummary, 0, 7),
	}
	if bulk.TotalBaseTarget > 0 {
		summary.BaseProgress = bulk.TotalBaseAchieved / bulk.TotalBaseTarget * 100
	}

	for _, row := range bulk.Rows {
		day := models.DaySummary{
			Date:           row.Date,
			DayName:        row.Date.Weekday().String(),
			BaseTarget:     row.BaseTarget,
			BaseAchieved:   row.BaseAchieved,
			BonusAmount:    row.BonusAmount,
			ActualEarned:   row.ActualEarned,
			BasePercentage: row.BasePercentage,
		}
		if r, ok := byDate[row.Date]; ok {
			day.Status = r.Status
			summary.DaysCompleted++
		} else {
			placeholder := models.NewIncomeRecord(row.Date, row.BaseTarget)
			day.Status = placeholder.Status
		}
		summary.DailyBreakdown = append(summary.DailyBreakdown, day)
	}

	return summary, nil
}

// MonthlySummary summarizes one calendar month. Every calendar day
// contributes a theoretical target whether or not a record exists, so
// progress is always measured against the full-month denominator. The weekly
// breakdown is 7-day segments anchored at the 1st; the last segment may be
// shorter.
func (s *Service) MonthlySummary(year int, month time.Month) (models.MonthlySummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := models.DaysInMonth(start)
	end := start.AddDate(0, 0, daysInMonth-1)

	byDate, err := s.recordsByDate(start, end)
	if err != nil {
		return models.MonthlySummary{}, err
	}

	days := make([]models.DayEarning, 0, daysInMonth)
	for i := 0; i < daysInMonth; i++ {
		d := start.AddDate(0, 0, i)
		var earned float64
		if r, ok := byDate[d]; ok {
			earned = r.Earned
		}
		days = append(days, models.DayEarning{Date: d, Earned: earned})
	}
	bulk := s.resolver.DecomposeAll(days)

	summary := models.MonthlySummary{
		Year:              year,
		Month:             month,
		MonthName:         month.String(),
		StartDate:         start,
		EndDate:           end,
		DaysInMonth:       daysInMonth,
		TotalEarned:       bulk.TotalEarned,
		TotalBaseTarget:   bulk.TotalBaseTarget,
		TotalBaseAchieved: bulk.TotalBaseAchieved,
		TotalBonus:        bulk.TotalBonus,
		DaysCompleted:     len(byDate),
	}
	if bulk.TotalBaseTarget > 0 {
		summary.Progress = bulk.TotalBaseAchieved / bulk.TotalBaseTarget * 100
	}
	if summary.DaysCompleted > 0 {
		summary.AverageDaily = summary.TotalEarned / float64(summary.DaysCompleted)
	}

	for offset := 0; offset < daysInMonth; offset += 7 {
		last := offset + 6
		if last >= daysInMonth {
			last = daysInMonth - 1
		}

		seg := models.WeekSegment{
			WeekNumber: offset/7 + 1,
			StartDate:  start.AddDate(0, 0, offset),
			EndDate:    start.AddDate(0, 0, last),
		}
		for i := offset; i <= last; i++ {
			row := bulk.Rows[i]
			seg.Earned += row.ActualEarned
			seg.BaseTarget += row.BaseTarget
			seg.BaseAchieved += row.BaseAchieved
			seg.Bonus += row.BonusAmount
		}
		if seg.BaseTarget > 0 {
			seg.Progress = seg.BaseAchieved / seg.BaseTarget * 100
		}
		seg.Status = segmentStatus(seg.Progress)
		summary.WeeklyBreakdown = append(summary.WeeklyBreakdown, seg)
	}

	return summary, nil
}

// MonthlyGoalSummary builds the persistable rollup for one calendar month:
// per-source totals over the month's records, with the target taken from the
// full-month theoretical base total so progress stays comparable across
// months with different day mixes.
func (s *Service) MonthlyGoalSummary(year int, month time.Month) (models.MonthlyGoalSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := models.DaysInMonth(start)
	end := start.AddDate(0, 0, daysInMonth-1)

	records, err := s.data.RecordsInRange(start, end)
	if err != nil {
		return models.MonthlyGoalSummary{}, err
	}

	days := make([]models.DayEarning, 0, daysInMonth)
	for i := 0; i < daysInMonth; i++ {
		days = append(days, models.DayEarning{Date: start.AddDate(0, 0, i)})
	}
	bulk := s.resolver.DecomposeAll(days)

	summary := models.MonthlyGoalSummary{
		Month:         start,
		MonthlyTarget: bulk.TotalBaseTarget,
		DaysCompleted: len(records),
		DaysInMonth:   daysInMonth,
	}
	for _, r := range records {
		summary.TotalEarned += r.Earned
		for _, src := range models.AllSources {
			summary.SetSourceEarned(src, summary.SourceEarned(src)+r.Amount(src))
		}
	}
	summary.Recalculate()
	return summary, nil
}

func segmentStatus(progress float64) string {
	switch {
	case progress >= 80:
		return "Good"
	case progress >= 50:
		return "Average"
	default:
		return "Low"
	}
}

// YearlySummary summarizes one calendar year as twelve month segments. Each
// month's target is the full-month theoretical total while earned and
// achieved come from actual records; the asymmetry keeps progress meaningful
// for partially elapsed months and matches the monthly view.
func (s *Service) YearlySummary(year int) (models.YearlySummary, error) {
	summary := models.YearlySummary{
		Year:             year,
		AnnualGoal:       s.data.CurrentYearlyGoal(),
		MonthlyBreakdown: make([]models.MonthSegment, 0, 12),
	}

	for month := time.January; month <= time.December; month++ {
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
		daysInMonth := models.DaysInMonth(start)
		end := start.AddDate(0, 0, daysInMonth-1)

		byDate, err := s.recordsByDate(start, end)
		if err != nil {
			return models.YearlySummary{}, err
		}

		days := make([]models.DayEarning, 0, daysInMonth)
		for i := 0; i < daysInMonth; i++ {
			d := start.AddDate(0, 0, i)
			var earned float64
			if r, ok := byDate[d]; ok {
				earned = r.Earned
			}
			days = append(days, models.DayEarning{Date: d, Earned: earned})
		}
		bulk := s.resolver.DecomposeAll(days)

		seg := models.MonthSegment{
			Month:        month,
			MonthName:    month.String(),
			Earned:       bulk.TotalEarned,
			BaseTarget:   bulk.TotalBaseTarget,
			BaseAchieved: bulk.TotalBaseAchieved,
			Bonus:        bulk.TotalBonus,
			HasData:      len(byDate) > 0,
		}
		if seg.BaseTarget > 0 {
			seg.Progress = seg.BaseAchieved / seg.BaseTarget * 100
		}

		summary.TotalEarned += seg.Earned
		summary.TotalBaseTarget += seg.BaseTarget
		summary.TotalBaseAchieved += seg.BaseAchieved
		summary.TotalBonus += seg.Bonus
		if seg.HasData {
			summary.MonthsWithData++
		}
		if seg.Earned > summary.BestMonthAmount {
			summary.BestMonthAmount = seg.Earned
		}
		summary.MonthlyBreakdown = append(summary.MonthlyBreakdown, seg)
	}

	return summary, nil
}

// Overview returns the headline statistics block over the whole history.
func (s *Service) Overview() (models.IncomeOverview, error) {
	records, err := s.data.AllRecords()
	if err != nil {
		return models.IncomeOverview{}, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	weekStart := models.WeekStart(now)

	overview := models.IncomeOverview{
		TotalRecords: len(records),
		CurrentGoal:  s.data.CurrentDailyGoal(),
	}

	byDate := make(map[time.Time]models.IncomeRecord, len(records))
	goalsMet := 0
	for _, r := range records {
		byDate[models.DateOnly(r.Date)] = r
		overview.TotalEarned += r.Earned
		if r.GoalMet() {
			goalsMet++
		}
		if r.Earned > overview.BestDayAmount {
			overview.BestDayAmount = r.Earned
		}
		if !r.Date.Before(monthStart) {
			overview.ThisMonthEarned += r.Earned
		}
		if !r.Date.Before(weekStart) {
			overview.ThisWeekEarned += r.Earned
		}
	}

	if len(records) > 0 {
		overview.AverageDaily = overview.TotalEarned / float64(len(records))
		overview.GoalAchievementRate = float64(goalsMet) / float64(len(records)) * 100
	}

	// Streak of consecutive goal-met days ending today; a not-yet-entered
	// today doesn't break a streak that ran through yesterday.
	cursor := models.DateOnly(now)
	if r, ok := byDate[cursor]; !ok || !r.GoalMet() {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for {
		r, ok := byDate[cursor]
		if !ok || !r.GoalMet() {
			break
		}
		overview.StreakDays++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return overview, nil
}

func (s *Service) recordsByDate(start, end time.Time) (map[time.Time]models.IncomeRecord, error) {
	records, err := s.data.RecordsInRange(start, end)
	if err != nil {
		return nil, err
	}
	byDate := make(map[time.Time]models.IncomeRecord, len(records))
	for _, r := range records {
		byDate[models.DateOnly(r.Date)] = r
	}
	return byDate, nil
}
