package ledger

import (
	"earntrack/internal/models"
	"earntrack/internal/services/recordstore"
)

// Row codecs between the CSV collections and the model types. Parsing is
// tolerant by design: bad numeric fields become 0 and bad dates become
// today, with a warning, so one dirty row never sinks a whole report.

func incomeFromRow(row recordstore.Row) models.IncomeRecord {
	r := models.IncomeRecord{
		ID:        recordstore.ParseID(row),
		Date:      recordstore.ParseDate(row["date"]),
		GoalInc:   recordstore.ParseAmount(row["goal_inc"]),
		Notes:     row["notes"],
		CreatedAt: recordstore.ParseTimestamp(row["created_at"]),
		UpdatedAt: recordstore.ParseTimestamp(row["updated_at"]),
	}
	for _, s := range models.AllSources {
		r.SetAmount(s, recordstore.ParseAmount(row[string(s)]))
	}
	// Derived fields are always recomputed, never trusted from disk
	r.Recalculate()
	return r
}

func incomeToRow(r models.IncomeRecord) recordstore.Row {
	row := recordstore.Row{
		"id":         recordstore.FormatID(r.ID),
		"date":       recordstore.FormatDate(r.Date),
		"goal_inc":   recordstore.FormatAmount(r.GoalInc),
		"earned":     recordstore.FormatAmount(r.Earned),
		"status":     string(r.Status),
		"progress":   recordstore.FormatFloat(r.Progress),
		"extra":      recordstore.FormatAmount(r.Extra),
		"notes":      r.Notes,
		"created_at": recordstore.FormatTimestamp(r.CreatedAt),
		"updated_at": recordstore.FormatTimestamp(r.UpdatedAt),
	}
	for _, s := range models.AllSources {
		row[string(s)] = recordstore.FormatAmount(r.Amount(s))
	}
	return row
}

func goalFromRow(row recordstore.Row) models.GoalSetting {
	g := models.GoalSetting{
		ID:          recordstore.ParseID(row),
		Name:        row["name"],
		Period:      models.GoalPeriod(row["period"]),
		Amount:      recordstore.ParseAmount(row["amount"]),
		IsActive:    recordstore.ParseBool(row["is_active"]),
		Description: row["description"],
		CreatedAt:   recordstore.ParseTimestamp(row["created_at"]),
	}
	if row["start_date"] != "" {
		g.StartDate = recordstore.ParseDate(row["start_date"])
	}
	if row["end_date"] != "" {
		g.EndDate = recordstore.ParseDate(row["end_date"])
	}
	return g
}

func goalToRow(g models.GoalSetting) recordstore.Row {
	row := recordstore.Row{
		"id":          recordstore.FormatID(g.ID),
		"name":        g.Name,
		"period":      string(g.Period),
		"amount":      recordstore.FormatAmount(g.Amount),
		"is_active":   recordstore.FormatBool(g.IsActive),
		"description": g.Description,
		"created_at":  recordstore.FormatTimestamp(g.CreatedAt),
	}
	if !g.StartDate.IsZero() {
		row["start_date"] = recordstore.FormatDate(g.StartDate)
	}
	if !g.EndDate.IsZero() {
		row["end_date"] = recordstore.FormatDate(g.EndDate)
	}
	return row
}

func weeklyTargetFromRow(row recordstore.Row) models.WeeklyGoalTarget {
	t := models.WeeklyGoalTarget{
		ID:              recordstore.ParseID(row),
		WeekStart:       recordstore.ParseDate(row["week_start"]),
		MondayTarget:    recordstore.ParseAmount(row["monday_target"]),
		TuesdayTarget:   recordstore.ParseAmount(row["tuesday_target"]),
		WednesdayTarget: recordstore.ParseAmount(row["wednesday_target"]),
		ThursdayTarget:  recordstore.ParseAmount(row["thursday_target"]),
		FridayTarget:    recordstore.ParseAmount(row["friday_target"]),
		SaturdayTarget:  recordstore.ParseAmount(row["saturday_target"]),
		SundayTarget:    recordstore.ParseAmount(row["sunday_target"]),
		IsActive:        recordstore.ParseBool(row["is_active"]),
		CreatedAt:       recordstore.ParseTimestamp(row["created_at"]),
	}
	t.Recalculate()
	return t
}

func weeklyTargetToRow(t models.WeeklyGoalTarget) recordstore.Row {
	return recordstore.Row{
		"id":               recordstore.FormatID(t.ID),
		"week_start":       recordstore.FormatDate(t.WeekStart),
		"monday_target":    recordstore.FormatAmount(t.MondayTarget),
		"tuesday_target":   recordstore.FormatAmount(t.TuesdayTarget),
		"wednesday_target": recordstore.FormatAmount(t.WednesdayTarget),
		"thursday_target":  recordstore.FormatAmount(t.ThursdayTarget),
		"friday_target":    recordstore.FormatAmount(t.FridayTarget),
		"saturday_target":  recordstore.FormatAmount(t.SaturdayTarget),
		"sunday_target":    recordstore.FormatAmount(t.SundayTarget),
		"weekly_target":    recordstore.FormatAmount(t.WeeklyTarget),
		"is_active":        recordstore.FormatBool(t.IsActive),
		"created_at":       recordstore.FormatTimestamp(t.CreatedAt),
	}
}

func baseSettingsFromRow(row recordstore.Row) models.BaseIncomeSettings {
	return models.BaseIncomeSettings{
		ID:           recordstore.ParseID(row),
		WeekdayBase:  recordstore.ParseAmount(row["weekday_base"]),
		SaturdayBase: recordstore.ParseAmount(row["saturday_base"]),
		SundayBase:   recordstore.ParseAmount(row["sunday_base"]),
		IsActive:     recordstore.ParseBool(row["is_active"]),
		CreatedAt:    recordstore.ParseTimestamp(row["created_at"]),
		UpdatedAt:    recordstore.ParseTimestamp(row["updated_at"]),
	}
}

func baseSettingsToRow(s models.BaseIncomeSettings) recordstore.Row {
	return recordstore.Row{
		"id":            recordstore.FormatID(s.ID),
		"weekday_base":  recordstore.FormatAmount(s.WeekdayBase),
		"saturday_base": recordstore.FormatAmount(s.SaturdayBase),
		"sunday_base":   recordstore.FormatAmount(s.SundayBase),
		"is_active":     recordstore.FormatBool(s.IsActive),
		"created_at":    recordstore.FormatTimestamp(s.CreatedAt),
		"updated_at":    recordstore.FormatTimestamp(s.UpdatedAt),
	}
}

func monthlySummaryFromRow(row recordstore.Row) models.MonthlyGoalSummary {
	m := models.MonthlyGoalSummary{
		ID:            recordstore.ParseID(row),
		Month:         recordstore.ParseDate(row["month"]),
		MonthlyTarget: recordstore.ParseAmount(row["monthly_target"]),
		TotalEarned:   recordstore.ParseAmount(row["total_earned"]),
		DaysCompleted: int(recordstore.ParseFloat(row["days_completed"])),
		DaysInMonth:   int(recordstore.ParseFloat(row["days_in_month"])),
		CreatedAt:     recordstore.ParseTimestamp(row["created_at"]),
	}
	for _, s := range models.AllSources {
		m.SetSourceEarned(s, recordstore.ParseAmount(row[string(s)+"_earned"]))
	}
	// Derived fields are always recomputed, never trusted from disk
	m.Recalculate()
	return m
}

func monthlySummaryToRow(m models.MonthlyGoalSummary) recordstore.Row {
	row := recordstore.Row{
		"id":                  recordstore.FormatID(m.ID),
		"month":               recordstore.FormatDate(m.Month),
		"monthly_target":      recordstore.FormatAmount(m.MonthlyTarget),
		"total_earned":        recordstore.FormatAmount(m.TotalEarned),
		"progress_percentage": recordstore.FormatFloat(m.Progress),
		"days_completed":      recordstore.FormatID(m.DaysCompleted),
		"days_in_month":       recordstore.FormatID(m.DaysInMonth),
		"average_daily":       recordstore.FormatFloat(m.AverageDaily),
		"created_at":          recordstore.FormatTimestamp(m.CreatedAt),
	}
	for _, s := range models.AllSources {
		row[string(s)+"_earned"] = recordstore.FormatAmount(m.SourceEarned(s))
	}
	return row
}

func weightageFromRow(row recordstore.Row) models.SourceWeightageHistory {
	return models.SourceWeightageHistory{
		ID:                  recordstore.ParseID(row),
		Date:                recordstore.ParseDate(row["date"]),
		SourceName:          models.Source(row["source_name"]),
		WeightagePercentage: recordstore.ParseFloat(row["weightage_percentage"]),
		TotalEarned:         recordstore.ParseAmount(row["total_earned"]),
		PeriodType:          row["period_type"],
		Notes:               row["notes"],
		CreatedAt:           recordstore.ParseTimestamp(row["created_at"]),
	}
}

func weightageToRow(r models.SourceWeightageHistory) recordstore.Row {
	return recordstore.Row{
		"id":                   recordstore.FormatID(r.ID),
		"date":                 recordstore.FormatDate(r.Date),
		"source_name":          string(r.SourceName),
		"weightage_percentage": recordstore.FormatFloat(r.WeightagePercentage),
		"total_earned":         recordstore.FormatAmount(r.TotalEarned),
		"period_type":          r.PeriodType,
		"notes":                r.Notes,
		"created_at":           recordstore.FormatTimestamp(r.CreatedAt),
	}
}
