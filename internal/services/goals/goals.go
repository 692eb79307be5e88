// Package goals analyzes recent performance against the current daily goal
// and produces confidence-scored adjustment recommendations, optionally
// applying the best one as a new monthly goal.
package goals

import (
	"fmt"
	"math"
	"sort"
	"time"

	"earntrack/internal/models"
)

// DefaultAnalysisDays is the trailing window for performance analysis.
const DefaultAnalysisDays = 30

// DataSource supplies the records and goal state the engine works over.
// *ledger.Ledger satisfies it.
type DataSource interface {
	RecordsInRange(start, end time.Time) ([]models.IncomeRecord, error)
	CurrentDailyGoal() float64
	ReplaceMonthlyGoal(g models.GoalSetting) (int, error)
}

// Engine produces goal recommendations.
type Engine struct {
	data DataSource
	now  func() time.Time
}

// New creates a goal recommendation engine.
func New(data DataSource) *Engine {
	return &Engine{data: data, now: time.Now}
}

// Recommendations analyzes the trailing window and returns metrics, every
// applicable adjustment, the fixed four-tier suggestion table and a 0-100
// confidence score.
func (e *Engine) Recommendations(windowDays int) (models.GoalRecommendations, error) {
	if windowDays <= 0 {
		windowDays = DefaultAnalysisDays
	}

	end := models.DateOnly(e.now())
	records, err := e.data.RecordsInRange(end.AddDate(0, 0, -windowDays), end)
	if err != nil {
		return models.GoalRecommendations{}, err
	}
	if len(records) == 0 {
		return models.GoalRecommendations{
			Alerts: []string{"No sufficient data for recommendations"},
		}, nil
	}

	currentGoal := e.data.CurrentDailyGoal()

	earnings := make([]float64, 0, len(records))
	goalsMet := 0
	for _, r := range records {
		earnings = append(earnings, r.Earned)
		if r.Earned >= currentGoal {
			goalsMet++
		}
	}

	metrics := models.PerformanceMetrics{
		AverageDaily:      mean(earnings),
		MedianDaily:       median(earnings),
		StandardDeviation: stddev(earnings),
		AchievementRate:   float64(goalsMet) / float64(len(earnings)) * 100,
		Trend:             weekTrend(earnings),
	}

	rec := models.GoalRecommendations{
		CurrentGoal: currentGoal,
		Metrics:     metrics,
	}
	e.analyze(&rec, len(records))
	return rec, nil
}

func (e *Engine) analyze(rec *models.GoalRecommendations, sampleSize int) {
	avg := rec.Metrics.AverageDaily
	achievementRate := rec.Metrics.AchievementRate
	trend := rec.Metrics.Trend
	stdDev := rec.Metrics.StandardDeviation

	if achievementRate < 30 {
		rec.Adjustments = append(rec.Adjustments, models.GoalAdjustment{
			Type:          "decrease",
			Reason:        fmt.Sprintf("Low achievement rate (%.1f%%)", achievementRate),
			SuggestedGoal: avg * 1.1,
			Confidence:    "high",
		})
		rec.Alerts = append(rec.Alerts, fmt.Sprintf("Current goal may be too ambitious, only achieved %.1f%% of the time", achievementRate))
	} else if achievementRate > 80 {
		newGoal := avg * 1.2
		rec.Adjustments = append(rec.Adjustments, models.GoalAdjustment{
			Type:          "increase",
			Reason:        fmt.Sprintf("High achievement rate (%.1f%%)", achievementRate),
			SuggestedGoal: newGoal,
			Confidence:    "medium",
		})
		rec.Alerts = append(rec.Alerts, fmt.Sprintf("You're consistently exceeding your goal, consider raising it to %.0f", newGoal))
	}

	if trend > 15 {
		rec.Adjustments = append(rec.Adjustments, models.GoalAdjustment{
			Type:          "increase",
			Reason:        fmt.Sprintf("Strong positive trend (%.1f%%)", trend),
			SuggestedGoal: rec.CurrentGoal * (1 + trend/100),
			Confidence:    "medium",
		})
		rec.Alerts = append(rec.Alerts, "Strong upward trend detected, consider increasing goal")
	} else if trend < -15 {
		rec.Adjustments = append(rec.Adjustments, models.GoalAdjustment{
			Type:          "decrease",
			Reason:        fmt.Sprintf("Negative trend (%.1f%%)", trend),
			SuggestedGoal: rec.CurrentGoal * (1 + trend/100),
			Confidence:    "medium",
		})
		rec.Alerts = append(rec.Alerts, "Declining trend detected, consider adjusting goal")
	}

	var variation float64
	if avg > 0 {
		variation = stdDev / avg
	}
	if variation > 0.5 {
		rec.Adjustments = append(rec.Adjustments, models.GoalAdjustment{
			Type:          "stabilize",
			Reason:        fmt.Sprintf("High income variability (CV: %.2f)", variation),
			SuggestedGoal: avg * 0.8,
			Confidence:    "low",
		})
		rec.Alerts = append(rec.Alerts, "High income variability detected, consider a more stable goal")
	}

	rec.Suggestions = models.GoalSuggestions{
		Conservative: avg * 0.9,
		Realistic:    avg * 1.1,
		Ambitious:    avg * 1.3,
		Stretch:      avg * 1.5,
	}

	score := 0.0
	if sampleSize >= 14 {
		score += 30
	}
	if variation < 0.3 {
		score += 30
	}
	if math.Abs(trend) < 10 {
		score += 20
	}
	if achievementRate >= 40 && achievementRate <= 70 {
		score += 20
	}
	rec.ConfidenceScore = score
}

// AutoAdjust selects the single highest-confidence adjustment. With apply
// set and confidence high or medium, it replaces the active monthly goal at
// the suggested daily amount scaled to the current month; otherwise it
// returns the suggestion without mutating state.
func (e *Engine) AutoAdjust(apply bool) (models.AutoAdjustResult, error) {
	rec, err := e.Recommendations(DefaultAnalysisDays)
	if err != nil {
		return models.AutoAdjustResult{}, err
	}

	if len(rec.Adjustments) == 0 {
		return models.AutoAdjustResult{
			Status:          models.AdjustStatusNoChanges,
			Message:         "Current goals appear to be well-calibrated",
			Recommendations: rec,
		}, nil
	}

	best := rec.Adjustments[0]
	for _, a := range rec.Adjustments[1:] {
		if confidenceRank(a.Confidence) > confidenceRank(best.Confidence) {
			best = a
		}
	}

	if !apply || confidenceRank(best.Confidence) < confidenceRank("medium") {
		return models.AutoAdjustResult{
			Status:          models.AdjustStatusSuggestion,
			Message:         fmt.Sprintf("Suggested goal adjustment: %.2f", best.SuggestedGoal),
			SuggestedGoal:   best.SuggestedGoal,
			Reason:          best.Reason,
			Confidence:      best.Confidence,
			Recommendations: rec,
		}, nil
	}

	// The engine only ever stores monthly goals; daily and yearly stay
	// derived, so the suggested daily amount is scaled to the current month.
	now := e.now()
	monthlyAmount := best.SuggestedGoal * float64(models.DaysInMonth(now))
	goal := models.GoalSetting{
		Name:        fmt.Sprintf("Auto-Adjusted Goal (%s)", now.Format("2006-01-02")),
		Period:      models.PeriodMonthly,
		Amount:      monthlyAmount,
		StartDate:   models.DateOnly(now),
		Description: fmt.Sprintf("Auto-adjusted based on %s", best.Reason),
	}
	if _, err := e.data.ReplaceMonthlyGoal(goal); err != nil {
		return models.AutoAdjustResult{}, fmt.Errorf("failed to apply goal adjustment: %w", err)
	}

	return models.AutoAdjustResult{
		Status:          models.AdjustStatusAdjusted,
		Message:         fmt.Sprintf("Goal automatically adjusted to %.2f per day", best.SuggestedGoal),
		OldGoal:         rec.CurrentGoal,
		NewGoal:         best.SuggestedGoal,
		Reason:          best.Reason,
		Confidence:      best.Confidence,
		Recommendations: rec,
	}, nil
}

func confidenceRank(c string) int {
	switch c {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	}
	return 0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stddev is the sample standard deviation; fewer than two values yield 0.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// weekTrend is the percent change between the mean of the last seven and the
// first seven entries, 0 for windows shorter than seven days or a zero
// baseline.
func weekTrend(earnings []float64) float64 {
	if len(earnings) < 7 {
		return 0
	}
	first := mean(earnings[:7])
	last := mean(earnings[len(earnings)-7:])
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}
