// Package ledger is the income data model: validated CRUD over the record
// collections, TTL-cached hot reads, the single-active invariant for
// settings and goals, and goal derivation from the current monthly goal.
package ledger

import (
	"fmt"
	"log"
	"sort"
	"time"

	"earntrack/internal/models"
	"earntrack/internal/services/cache"
	"earntrack/internal/services/recordstore"
)

// Config carries the cache TTLs for the two hot read paths.
type Config struct {
	RecordCacheTTL   time.Duration
	SettingsCacheTTL time.Duration
}

// DefaultConfig returns the stock TTLs: 30s for income records, 5m for base
// income settings.
func DefaultConfig() Config {
	return Config{
		RecordCacheTTL:   30 * time.Second,
		SettingsCacheTTL: 5 * time.Minute,
	}
}

// Ledger owns the record collections and the caches in front of them.
type Ledger struct {
	store        *recordstore.Store
	records      *cache.Snapshot[[]models.IncomeRecord]
	baseSettings *cache.Snapshot[models.BaseIncomeSettings]
	now          func() time.Time
}

// New creates a Ledger and seeds a default monthly goal when the goal
// collection does not exist yet.
func New(store *recordstore.Store, cfg Config) *Ledger {
	l := &Ledger{
		store:        store,
		records:      cache.NewSnapshot[[]models.IncomeRecord](cfg.RecordCacheTTL),
		baseSettings: cache.NewSnapshot[models.BaseIncomeSettings](cfg.SettingsCacheTTL),
		now:          time.Now,
	}

	if !store.Exists(recordstore.GoalSettings) {
		defaultGoal := models.GoalSetting{
			Name:        "Default Monthly Goal",
			Period:      models.PeriodMonthly,
			Amount:      models.DefaultMonthlyGoal,
			StartDate:   models.DateOnly(l.now()),
			IsActive:    true,
			Description: "Default monthly income goal",
			CreatedAt:   l.now(),
		}
		if _, err := store.Append(recordstore.GoalSettings, goalToRow(defaultGoal)); err != nil {
			log.Printf("Warning: could not seed default goal: %v", err)
		}
	}

	return l
}

// InvalidateCaches discards both hot-read caches. Callers that write to the
// data directory outside the ledger, such as a backup restore, must invoke
// this so the next read sees the new files instead of a stale snapshot.
func (l *Ledger) InvalidateCaches() {
	l.records.Invalidate()
	l.baseSettings.Invalidate()
}

// --- Income records ---

// AllRecords returns every income record, date-ascending, via the 30s cache.
func (l *Ledger) AllRecords() ([]models.IncomeRecord, error) {
	return l.records.Get(func() ([]models.IncomeRecord, error) {
		rows, err := l.store.ReadAll(recordstore.IncomeRecords)
		if err != nil {
			return nil, err
		}
		records := make([]models.IncomeRecord, 0, len(rows))
		for _, row := range rows {
			records = append(records, incomeFromRow(row))
		}
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Date.Before(records[j].Date)
		})
		return records, nil
	})
}

// RecordByID looks up one record by id.
func (l *Ledger) RecordByID(id int) (models.IncomeRecord, bool, error) {
	records, err := l.AllRecords()
	if err != nil {
		return models.IncomeRecord{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return models.IncomeRecord{}, false, nil
}

// RecordByDate looks up the record for a calendar date.
func (l *Ledger) RecordByDate(day time.Time) (models.IncomeRecord, bool, error) {
	records, err := l.AllRecords()
	if err != nil {
		return models.IncomeRecord{}, false, err
	}
	day = models.DateOnly(day)
	for _, r := range records {
		if r.Date.Equal(day) {
			return r, true, nil
		}
	}
	return models.IncomeRecord{}, false, nil
}

// RecordsInRange returns records with start <= date <= end, date-ascending.
func (l *Ledger) RecordsInRange(start, end time.Time) ([]models.IncomeRecord, error) {
	records, err := l.AllRecords()
	if err != nil {
		return nil, err
	}
	start, end = models.DateOnly(start), models.DateOnly(end)

	var out []models.IncomeRecord
	for _, r := range records {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetOrCreateToday returns today's record, or an unsaved one seeded with the
// current daily goal when none exists; the caller decides whether to save.
func (l *Ledger) GetOrCreateToday() (models.IncomeRecord, error) {
	record, ok, err := l.RecordByDate(l.now())
	if err != nil {
		return models.IncomeRecord{}, err
	}
	if ok {
		return record, nil
	}
	return models.NewIncomeRecord(l.now(), l.CurrentDailyGoal()), nil
}

// AddRecord validates and appends a record, recomputing derived fields
// atomically with the write. Returns the assigned id.
func (l *Ledger) AddRecord(r models.IncomeRecord) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	r.Recalculate()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = l.now()
	}
	r.UpdatedAt = l.now()

	id, err := l.store.Append(recordstore.IncomeRecords, incomeToRow(r))
	if err != nil {
		return 0, err
	}
	l.records.Invalidate()
	return id, nil
}

// UpdateRecord validates and replaces the record with the given id.
func (l *Ledger) UpdateRecord(id int, r models.IncomeRecord) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	r.ID = id
	r.Recalculate()
	r.UpdatedAt = l.now()

	ok, err := l.store.Update(recordstore.IncomeRecords, id, incomeToRow(r))
	if err != nil || !ok {
		return ok, err
	}
	l.records.Invalidate()
	return true, nil
}

// DeleteRecord removes the record with the given id.
func (l *Ledger) DeleteRecord(id int) (bool, error) {
	ok, err := l.store.Delete(recordstore.IncomeRecords, id)
	if err != nil || !ok {
		return ok, err
	}
	l.records.Invalidate()
	return true, nil
}

// --- Goal settings ---

// AllGoals returns every goal setting in insertion order.
func (l *Ledger) AllGoals() ([]models.GoalSetting, error) {
	rows, err := l.store.ReadAll(recordstore.GoalSettings)
	if err != nil {
		return nil, err
	}
	goals := make([]models.GoalSetting, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, goalFromRow(row))
	}
	return goals, nil
}

// AddGoal validates and appends a goal setting.
func (l *Ledger) AddGoal(g models.GoalSetting) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = l.now()
	}
	return l.store.Append(recordstore.GoalSettings, goalToRow(g))
}

// UpdateGoal replaces the goal with the given id.
func (l *Ledger) UpdateGoal(id int, g models.GoalSetting) (bool, error) {
	if err := g.Validate(); err != nil {
		return false, err
	}
	g.ID = id
	return l.store.Update(recordstore.GoalSettings, id, goalToRow(g))
}

// DeleteGoal removes the goal with the given id.
func (l *Ledger) DeleteGoal(id int) (bool, error) {
	return l.store.Delete(recordstore.GoalSettings, id)
}

// CurrentMonthlyGoal returns the amount of the most recently created active
// monthly goal, or the default when none exists.
func (l *Ledger) CurrentMonthlyGoal() float64 {
	goals, err := l.AllGoals()
	if err != nil {
		log.Printf("Warning: could not read goals: %v", err)
		return models.DefaultMonthlyGoal
	}

	amount := models.DefaultMonthlyGoal
	found := false
	for _, g := range goals {
		if g.IsActive && g.Period == models.PeriodMonthly {
			amount = g.Amount
			found = true
		}
	}
	if !found {
		return models.DefaultMonthlyGoal
	}
	return amount
}

// CurrentDailyGoal derives the daily goal from the monthly goal and the
// number of days in the current month. Recomputed fresh on every call.
func (l *Ledger) CurrentDailyGoal() float64 {
	return l.CurrentMonthlyGoal() / float64(models.DaysInMonth(l.now()))
}

// CurrentYearlyGoal derives the yearly goal from the monthly goal.
func (l *Ledger) CurrentYearlyGoal() float64 {
	return l.CurrentMonthlyGoal() * 12
}

// ReplaceMonthlyGoal deactivates every active monthly goal and appends the
// new one as a single atomic rewrite, preserving the history trail.
func (l *Ledger) ReplaceMonthlyGoal(g models.GoalSetting) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	g.Period = models.PeriodMonthly
	g.IsActive = true
	if g.CreatedAt.IsZero() {
		g.CreatedAt = l.now()
	}

	rows, err := l.store.ReadAll(recordstore.GoalSettings)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if recordstore.ParseBool(row["is_active"]) && row["period"] == string(models.PeriodMonthly) {
			row["is_active"] = recordstore.FormatBool(false)
		}
	}

	return l.store.AppendWithRewrite(recordstore.GoalSettings, rows, goalToRow(g))
}

// --- Weekly targets ---

// WeeklyTargets returns every weekly goal target in insertion order.
func (l *Ledger) WeeklyTargets() ([]models.WeeklyGoalTarget, error) {
	rows, err := l.store.ReadAll(recordstore.WeeklyTargets)
	if err != nil {
		return nil, err
	}
	targets := make([]models.WeeklyGoalTarget, 0, len(rows))
	for _, row := range rows {
		targets = append(targets, weeklyTargetFromRow(row))
	}
	return targets, nil
}

// AddWeeklyTarget appends a weekly target, aligning its week to Monday and
// recomputing the derived weekly total.
func (l *Ledger) AddWeeklyTarget(t models.WeeklyGoalTarget) (int, error) {
	t.WeekStart = models.WeekStart(t.WeekStart)
	t.Recalculate()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = l.now()
	}
	return l.store.Append(recordstore.WeeklyTargets, weeklyTargetToRow(t))
}

// WeeklyTargetFor returns the latest active target for the Monday-aligned
// week containing day, if one is configured.
func (l *Ledger) WeeklyTargetFor(day time.Time) (models.WeeklyGoalTarget, bool) {
	targets, err := l.WeeklyTargets()
	if err != nil {
		log.Printf("Warning: could not read weekly targets: %v", err)
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

// CurrentWeeklyTarget returns this week's target, seeding the default one
// when none exists yet.
func (l *Ledger) CurrentWeeklyTarget() (models.WeeklyGoalTarget, error) {
	if t, ok := l.WeeklyTargetFor(l.now()); ok {
		return t, nil
	}
	t := models.DefaultWeeklyGoalTarget(l.now())
	id, err := l.AddWeeklyTarget(t)
	if err != nil {
		return models.WeeklyGoalTarget{}, fmt.Errorf("failed to seed weekly target: %w", err)
	}
	t.ID = id
	return t, nil
}

// --- Base income settings ---

// CurrentBaseIncomeSettings returns the most recent active settings record
// via the 5m cache, falling back to the built-in defaults. It never fails:
// reporting must keep working with no configuration at all.
func (l *Ledger) CurrentBaseIncomeSettings() models.BaseIncomeSettings {
	settings, err := l.baseSettings.Get(func() (models.BaseIncomeSettings, error) {
		rows, err := l.store.ReadAll(recordstore.BaseIncomeSettings)
		if err != nil {
			return models.BaseIncomeSettings{}, err
		}

		current := models.DefaultBaseIncomeSettings()
		for _, row := range rows {
			if recordstore.ParseBool(row["is_active"]) {
				current = baseSettingsFromRow(row)
			}
		}
		return current, nil
	})
	if err != nil {
		log.Printf("Warning: could not read base income settings: %v", err)
		return models.DefaultBaseIncomeSettings()
	}
	return settings
}

// UpdateBaseIncomeSettings deactivates all previous settings and appends the
// new record in one atomic rewrite, then invalidates the settings cache
// before returning, so the change is visible to the very next read.
func (l *Ledger) UpdateBaseIncomeSettings(s models.BaseIncomeSettings) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	s.IsActive = true
	if s.CreatedAt.IsZero() {
		s.CreatedAt = l.now()
	}
	s.UpdatedAt = l.now()

	rows, err := l.store.ReadAll(recordstore.BaseIncomeSettings)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		row["is_active"] = recordstore.FormatBool(false)
	}

	if _, err := l.store.AppendWithRewrite(recordstore.BaseIncomeSettings, rows, baseSettingsToRow(s)); err != nil {
		return false, err
	}
	l.baseSettings.Invalidate()
	return true, nil
}

// --- Monthly summaries ---

// MonthlySummaries returns every persisted monthly rollup, month-ascending.
func (l *Ledger) MonthlySummaries() ([]models.MonthlyGoalSummary, error) {
	rows, err := l.store.ReadAll(recordstore.MonthlySummaries)
	if err != nil {
		return nil, err
	}
	recordstore.SortByColumn(rows, "month")

	summaries := make([]models.MonthlyGoalSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, monthlySummaryFromRow(row))
	}
	return summaries, nil
}

// SaveMonthlySummary upserts the rollup for its month: an existing row for
// the same month is replaced in place keeping its id, otherwise a new row is
// appended. Returns the row's id.
func (l *Ledger) SaveMonthlySummary(m models.MonthlyGoalSummary) (int, error) {
	m.Month = time.Date(m.Month.Year(), m.Month.Month(), 1, 0, 0, 0, 0, m.Month.Location())
	m.Recalculate()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = l.now()
	}

	rows, err := l.store.ReadAll(recordstore.MonthlySummaries)
	if err != nil {
		return 0, err
	}

	month := recordstore.FormatDate(m.Month)
	for i, row := range rows {
		if row["month"] == month {
			m.ID = recordstore.ParseID(row)
			rows[i] = monthlySummaryToRow(m)
			return m.ID, l.store.ReplaceAll(recordstore.MonthlySummaries, rows)
		}
	}

	m.ID = recordstore.NextID(rows)
	rows = append(rows, monthlySummaryToRow(m))
	return m.ID, l.store.ReplaceAll(recordstore.MonthlySummaries, rows)
}

// --- Source weightage history ---

// WeightageFilter narrows a weightage history query. Zero values match all.
type WeightageFilter struct {
	Source     models.Source
	PeriodType string
	Start      time.Time
	End        time.Time
}

// AddWeightageRecord appends one audit row. History is append-only.
func (l *Ledger) AddWeightageRecord(r models.SourceWeightageHistory) (int, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = l.now()
	}
	return l.store.Append(recordstore.WeightageHistory, weightageToRow(r))
}

// WeightageHistory returns audit rows matching the filter, date-ascending.
func (l *Ledger) WeightageHistory(f WeightageFilter) ([]models.SourceWeightageHistory, error) {
	rows, err := l.store.ReadAll(recordstore.WeightageHistory)
	if err != nil {
		return nil, err
	}

	var out []models.SourceWeightageHistory
	for _, row := range rows {
		r := weightageFromRow(row)
		if f.Source != "" && r.SourceName != f.Source {
			continue
		}
		if f.PeriodType != "" && r.PeriodType != f.PeriodType {
			continue
		}
		if !f.Start.IsZero() && r.Date.Before(models.DateOnly(f.Start)) {
			continue
		}
		if !f.End.IsZero() && r.Date.After(models.DateOnly(f.End)) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
