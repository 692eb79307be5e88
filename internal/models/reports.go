package models

import "time"

// Decomposition splits one day's earnings into base and bonus against the
// policy target for that date.
type Decomposition struct {
	BaseTarget     float64 `json:"base_target"`
	ActualEarned   float64 `json:"actual_earned"`
	BaseAchieved   float64 `json:"base_achieved"`
	BonusAmount    float64 `json:"bonus_amount"`
	BasePercentage float64 `json:"base_percentage"`
}

// DayEarning is one (date, earned) input row for bulk decomposition.
type DayEarning struct {
	Date   time.Time `json:"date"`
	Earned float64   `json:"earned"`
}

// DayDecomposition is one decomposed row of a bulk run.
type DayDecomposition struct {
	Date time.Time `json:"date"`
	Decomposition
}

// BulkDecomposition holds per-row decompositions plus column-wise totals.
type BulkDecomposition struct {
	Rows              []DayDecomposition `json:"rows"`
	TotalEarned       float64            `json:"total_earned"`
	TotalBaseTarget   float64            `json:"total_base_target"`
	TotalBaseAchieved float64            `json:"total_base_achieved"`
	TotalBonus        float64            `json:"total_bonus"`
}

// DaySummary is one day of a weekly summary's breakdown.
type DaySummary struct {
	Date           time.Time    `json:"date"`
	DayName        string       `json:"day_name"`
	BaseTarget     float64      `json:"base_target"`
	BaseAchieved   float64      `json:"base_achieved"`
	BonusAmount    float64      `json:"bonus_amount"`
	ActualEarned   float64      `json:"actual_earned"`
	BasePercentage float64      `json:"base_percentage"`
	Status         IncomeStatus `json:"status"`
}

// WeeklySummary covers one Monday-aligned week. DailyBreakdown always has
// exactly seven entries; days without a record carry a theoretical target.
type WeeklySummary struct {
	StartDate         time.Time    `json:"start_date"`
	EndDate           time.Time    `json:"end_date"`
	TotalEarned       float64      `json:"total_earned"`
	TotalBaseTarget   float64      `json:"total_base_target"`
	TotalBaseAchieved float64      `json:"total_base_achieved"`
	TotalBonus        float64      `json:"total_bonus"`
	BaseProgress      float64      `json:"base_progress"`
	DaysCompleted     int          `json:"days_completed"`
	DailyBreakdown    []DaySummary `json:"daily_breakdown"`
}

// WeekSegment is one 7-day slice of a monthly summary (the last segment may
// be shorter).
type WeekSegment struct {
	WeekNumber   int       `json:"week_number"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Earned       float64   `json:"earned"`
	BaseTarget   float64   `json:"base_target"`
	BaseAchieved float64   `json:"base_achieved"`
	Bonus        float64   `json:"bonus"`
	Progress     float64   `json:"progress"`
	Status       string    `json:"status"` // Good, Average, Low
}

// MonthlySummary covers one calendar month. TotalBaseTarget always spans the
// full month, whether or not every day has a record.
type MonthlySummary struct {
	Year              int           `json:"year"`
	Month             time.Month    `json:"month"`
	MonthName         string        `json:"month_name"`
	StartDate         time.Time     `json:"start_date"`
	EndDate           time.Time     `json:"end_date"`
	DaysInMonth       int           `json:"days_in_month"`
	TotalEarned       float64       `json:"total_earned"`
	TotalBaseTarget   float64       `json:"total_base_target"`
	TotalBaseAchieved float64       `json:"total_base_achieved"`
	TotalBonus        float64       `json:"total_bonus"`
	Progress          float64       `json:"progress"`
	AverageDaily      float64       `json:"average_daily"`
	DaysCompleted     int           `json:"days_completed"`
	WeeklyBreakdown   []WeekSegment `json:"weekly_breakdown"`
}

// MonthSegment is one month of a yearly summary. BaseTarget is always the
// full-month theoretical target even when only part of the month has data.
type MonthSegment struct {
	Month        time.Month `json:"month"`
	MonthName    string     `json:"month_name"`
	Earned       float64    `json:"earned"`
	BaseTarget   float64    `json:"base_target"`
	BaseAchieved float64    `json:"base_achieved"`
	Bonus        float64    `json:"bonus"`
	Progress     float64    `json:"progress"`
	HasData      bool       `json:"has_data"`
}

// YearlySummary covers one calendar year across twelve month segments.
type YearlySummary struct {
	Year              int            `json:"year"`
	TotalEarned       float64        `json:"total_earned"`
	TotalBaseTarget   float64        `json:"total_base_target"`
	TotalBaseAchieved float64        `json:"total_base_achieved"`
	TotalBonus        float64        `json:"total_bonus"`
	AnnualGoal        float64        `json:"annual_goal"`
	MonthsWithData    int            `json:"months_with_data"`
	BestMonthAmount   float64        `json:"best_month_amount"`
	MonthlyBreakdown  []MonthSegment `json:"monthly_breakdown"`
}

// IncomeOverview is the headline statistics block for the whole history.
type IncomeOverview struct {
	TotalRecords        int     `json:"total_records"`
	TotalEarned         float64 `json:"total_earned"`
	AverageDaily        float64 `json:"average_daily"`
	CurrentGoal         float64 `json:"current_goal"`
	ThisMonthEarned     float64 `json:"this_month_earned"`
	ThisWeekEarned      float64 `json:"this_week_earned"`
	GoalAchievementRate float64 `json:"goal_achievement_rate"`
	BestDayAmount       float64 `json:"best_day_amount"`
	StreakDays          int     `json:"streak_days"`
}

// SourceStats is the per-source block of a source analysis.
type SourceStats struct {
	Total        float64 `json:"total"`
	AverageDaily float64 `json:"average_daily"`
	Percentage   float64 `json:"percentage"`
	Consistency  float64 `json:"consistency"`
	Trend        float64 `json:"trend"`
	DaysActive   int     `json:"days_active"`
	BestDay      float64 `json:"best_day"`
	WorstDay     float64 `json:"worst_day"`
}

// SourceRank pairs a source with its stats for an ordered ranking.
type SourceRank struct {
	Source Source      `json:"source"`
	Stats  SourceStats `json:"stats"`
}

// SourceRankings orders sources by each headline metric, descending.
type SourceRankings struct {
	ByTotal       []SourceRank `json:"by_total"`
	ByPercentage  []SourceRank `json:"by_percentage"`
	ByConsistency []SourceRank `json:"by_consistency"`
	ByTrend       []SourceRank `json:"by_trend"`
}

// Period is an inclusive date range.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SourceAnalysis is the full per-source contribution report for a range.
type SourceAnalysis struct {
	Period         Period                 `json:"period"`
	TotalEarned    float64                `json:"total_earned"`
	Sources        map[Source]SourceStats `json:"sources"`
	Rankings       SourceRankings         `json:"rankings"`
	TopPerformer   *SourceRank            `json:"top_performer"`
	MostConsistent *SourceRank            `json:"most_consistent"`
	FastestGrowing *SourceRank            `json:"fastest_growing"`
}

// SourceComparison is one source's year-over-year movement.
type SourceComparison struct {
	CurrentTotal          float64 `json:"current_total"`
	PreviousTotal         float64 `json:"previous_total"`
	TotalChange           float64 `json:"total_change"`
	TotalChangePercent    float64 `json:"total_change_percent"`
	CurrentPercentage     float64 `json:"current_percentage"`
	PreviousPercentage    float64 `json:"previous_percentage"`
	PercentagePointChange float64 `json:"percentage_point_change"`
	Status                string  `json:"status"`
}

// YoYSummary condenses a year-over-year comparison.
type YoYSummary struct {
	OverallGrowthPercent float64        `json:"overall_growth_percent"`
	BiggestGainer        Source         `json:"biggest_gainer"`
	BiggestGainerChange  float64        `json:"biggest_gainer_change"`
	BiggestLoser         Source         `json:"biggest_loser"`
	BiggestLoserChange   float64        `json:"biggest_loser_change"`
	StatusDistribution   map[string]int `json:"status_distribution"`
	DiversificationTrend string         `json:"diversification_trend"`
}

// YoYComparison compares source contributions for two consecutive years.
type YoYComparison struct {
	CurrentYear       int                         `json:"current_year"`
	PreviousYear      int                         `json:"previous_year"`
	CurrentTotal      float64                     `json:"current_total"`
	PreviousTotal     float64                     `json:"previous_total"`
	SourceComparisons map[Source]SourceComparison `json:"source_comparisons"`
	Summary           YoYSummary                  `json:"summary"`
}

// PerformanceMetrics summarizes recent daily earnings for goal analysis.
type PerformanceMetrics struct {
	AverageDaily      float64 `json:"average_daily"`
	MedianDaily       float64 `json:"median_daily"`
	StandardDeviation float64 `json:"standard_deviation"`
	AchievementRate   float64 `json:"achievement_rate"`
	Trend             float64 `json:"trend"`
}

// GoalAdjustment is one recommended goal change.
type GoalAdjustment struct {
	Type          string  `json:"type"` // increase, decrease, stabilize
	Reason        string  `json:"reason"`
	SuggestedGoal float64 `json:"suggested_goal"`
	Confidence    string  `json:"confidence"` // high, medium, low
}

// GoalSuggestions is the fixed four-tier suggestion table, always emitted.
type GoalSuggestions struct {
	Conservative float64 `json:"conservative"`
	Realistic    float64 `json:"realistic"`
	Ambitious    float64 `json:"ambitious"`
	Stretch      float64 `json:"stretch"`
}

// GoalRecommendations is the full goal recommendation report.
type GoalRecommendations struct {
	CurrentGoal     float64            `json:"current_goal"`
	Metrics         PerformanceMetrics `json:"performance_metrics"`
	Adjustments     []GoalAdjustment   `json:"recommended_adjustments"`
	Suggestions     GoalSuggestions    `json:"goal_suggestions"`
	Alerts          []string           `json:"alerts"`
	ConfidenceScore float64            `json:"confidence_score"`
}

// Auto-adjust result statuses.
const (
	AdjustStatusNoChanges  = "no_changes_needed"
	AdjustStatusSuggestion = "suggestion_only"
	AdjustStatusAdjusted   = "adjusted"
)

// AutoAdjustResult reports the outcome of an auto-adjust run.
type AutoAdjustResult struct {
	Status          string              `json:"status"`
	Message         string              `json:"message"`
	OldGoal         float64             `json:"old_goal,omitempty"`
	NewGoal         float64             `json:"new_goal,omitempty"`
	SuggestedGoal   float64             `json:"suggested_goal,omitempty"`
	Reason          string              `json:"reason,omitempty"`
	Confidence      string              `json:"confidence,omitempty"`
	Recommendations GoalRecommendations `json:"recommendations"`
}
