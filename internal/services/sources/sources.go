// Package sources analyzes per-source income contribution: stats and
// rankings over a range, optimal target allocation, year-over-year movement
// and append-only weightage snapshots.
package sources

import (
	"fmt"
	"math"
	"sort"
	"time"

	"earntrack/internal/models"
)

// DefaultAnalysisDays is the trailing window used when no range is given.
const DefaultAnalysisDays = 30

// DataSource supplies the records and audit sink the analyses run over.
// *ledger.Ledger satisfies it.
type DataSource interface {
	RecordsInRange(start, end time.Time) ([]models.IncomeRecord, error)
	AddWeightageRecord(models.SourceWeightageHistory) (int, error)
}

// Service computes source analytics.
type Service struct {
	data DataSource
	now  func() time.Time
}

// New creates a source analysis service.
func New(data DataSource) *Service {
	return &Service{data: data, now: time.Now}
}

// Analysis computes per-source stats, rankings and headline pointers over an
// inclusive date range. Consistency is measured against every calendar day
// of the range; averages are over recorded days only.
func (s *Service) Analysis(start, end time.Time) (models.SourceAnalysis, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)

	analysis := models.SourceAnalysis{
		Period:  models.Period{Start: start, End: end},
		Sources: map[models.Source]models.SourceStats{},
	}

	records, err := s.data.RecordsInRange(start, end)
	if err != nil {
		return models.SourceAnalysis{}, err
	}
	if len(records) == 0 {
		return analysis, nil
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1
	for _, r := range records {
		analysis.TotalEarned += r.Earned
	}

	for _, src := range models.AllSources {
		stats := models.SourceStats{WorstDay: math.Inf(1)}
		for _, r := range records {
			v := r.Amount(src)
			stats.Total += v
			if v > 0 {
				stats.DaysActive++
			}
			if v > stats.BestDay {
				stats.BestDay = v
			}
			if v < stats.WorstDay {
				stats.WorstDay = v
			}
		}
		stats.AverageDaily = stats.Total / float64(len(records))
		if analysis.TotalEarned > 0 {
			stats.Percentage = stats.Total / analysis.TotalEarned * 100
		}
		if totalDays > 0 {
			stats.Consistency = float64(stats.DaysActive) / float64(totalDays) * 100
		}
		stats.Trend = s.sourceTrend(src, records, start, totalDays)
		analysis.Sources[src] = stats
	}

	analysis.Rankings = models.SourceRankings{
		ByTotal:       rank(analysis.Sources, func(st models.SourceStats) float64 { return st.Total }),
		ByPercentage:  rank(analysis.Sources, func(st models.SourceStats) float64 { return st.Percentage }),
		ByConsistency: rank(analysis.Sources, func(st models.SourceStats) float64 { return st.Consistency }),
		ByTrend:       rank(analysis.Sources, func(st models.SourceStats) float64 { return st.Trend }),
	}
	analysis.TopPerformer = first(analysis.Rankings.ByTotal)
	analysis.MostConsistent = first(analysis.Rankings.ByConsistency)
	analysis.FastestGrowing = first(analysis.Rankings.ByTrend)

	return analysis, nil
}

// sourceTrend is the percent change between the mean of the first and second
// calendar halves of the range, with missing days counted as zero. A zero
// first-half mean yields 0.
func (s *Service) sourceTrend(src models.Source, records []models.IncomeRecord, start time.Time, totalDays int) float64 {
	mid := totalDays / 2
	if mid == 0 {
		return 0
	}
	split := start.AddDate(0, 0, mid)

	var firstSum, secondSum float64
	for _, r := range records {
		if models.DateOnly(r.Date).Before(split) {
			firstSum += r.Amount(src)
		} else {
			secondSum += r.Amount(src)
		}
	}

	firstAvg := firstSum / float64(mid)
	secondAvg := secondSum / float64(totalDays-mid)
	if firstAvg == 0 {
		return 0
	}
	return (secondAvg - firstAvg) / firstAvg * 100
}

func rank(stats map[models.Source]models.SourceStats, key func(models.SourceStats) float64) []models.SourceRank {
	ranks := make([]models.SourceRank, 0, len(stats))
	for _, src := range models.AllSources {
		if st, ok := stats[src]; ok {
			ranks = append(ranks, models.SourceRank{Source: src, Stats: st})
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return key(ranks[i].Stats) > key(ranks[j].Stats)
	})
	return ranks
}

func first(ranks []models.SourceRank) *models.SourceRank {
	if len(ranks) == 0 {
		return nil
	}
	r := ranks[0]
	return &r
}

// defaultTargetWeights allocates a daily goal when no history exists.
var defaultTargetWeights = map[models.Source]float64{
	models.SourceZomato:    0.35,
	models.SourceSwiggy:    0.30,
	models.SourceShadowFax: 0.15,
	models.SourcePCRepair:  0.05,
	models.SourceSettings:  0.02,
	models.SourceYouTube:   0.03,
	models.SourceGPLinks:   0.02,
	models.SourceIDSales:   0.03,
	models.SourceOther:     0.03,
	models.SourceExtraWork: 0.02,
}

// OptimalTargets allocates totalDailyGoal across sources by historical
// weight, with up to +10% for consistency and a trend adjustment clamped to
// +/-20%, then normalizes so the allocations sum exactly to the goal. With
// no history the fixed default weight table applies.
func (s *Service) OptimalTargets(totalDailyGoal float64) (map[models.Source]float64, error) {
	end := models.DateOnly(s.now())
	analysis, err := s.Analysis(end.AddDate(0, 0, -DefaultAnalysisDays), end)
	if err != nil {
		return nil, err
	}

	var totalAvg float64
	for _, st := range analysis.Sources {
		totalAvg += st.AverageDaily
	}
	if len(analysis.Sources) == 0 || totalAvg == 0 {
		targets := make(map[models.Source]float64, len(defaultTargetWeights))
		for src, w := range defaultTargetWeights {
			targets[src] = totalDailyGoal * w
		}
		return targets, nil
	}

	targets := make(map[models.Source]float64, len(analysis.Sources))
	var allocated float64
	for src, st := range analysis.Sources {
		weight := st.AverageDaily / totalAvg
		weight *= 1 + st.Consistency/100*0.1
		weight *= 1 + math.Max(-0.2, math.Min(0.2, st.Trend/100))
		targets[src] = totalDailyGoal * weight
		allocated += targets[src]
	}

	if allocated > 0 {
		scale := totalDailyGoal / allocated
		for src := range targets {
			targets[src] *= scale
		}
	}
	return targets, nil
}

// PerformanceRecommendations returns textual advice for the trailing window:
// inconsistent sources, declining sources, the strongest grower,
// over-dependence and a diversification nudge.
func (s *Service) PerformanceRecommendations(windowDays int) ([]string, error) {
	if windowDays <= 0 {
		windowDays = DefaultAnalysisDays
	}
	end := models.DateOnly(s.now())
	analysis, err := s.Analysis(end.AddDate(0, 0, -windowDays), end)
	if err != nil {
		return nil, err
	}
	if len(analysis.Sources) == 0 {
		return []string{"Start tracking income sources to get personalized recommendations"}, nil
	}

	var recs []string

	var avgConsistency float64
	for _, st := range analysis.Sources {
		avgConsistency += st.Consistency
	}
	avgConsistency /= float64(len(analysis.Sources))

	for _, src := range models.AllSources {
		st := analysis.Sources[src]
		if st.Consistency < avgConsistency*0.7 {
			recs = append(recs, fmt.Sprintf("%s: low consistency (%.1f%%), try to earn from this source more regularly", src.Label(), st.Consistency))
		}
	}

	for _, src := range models.AllSources {
		st := analysis.Sources[src]
		if st.Trend < -10 {
			recs = append(recs, fmt.Sprintf("%s: declining trend (%.1f%%), investigate what's causing the decrease", src.Label(), st.Trend))
		}
	}

	if g := analysis.FastestGrowing; g != nil && g.Stats.Trend > 10 {
		recs = append(recs, fmt.Sprintf("%s: strong growth (%.1f%%), consider focusing more effort here", g.Source.Label(), g.Stats.Trend))
	}

	if top := analysis.TopPerformer; top != nil && top.Stats.Percentage > 60 {
		recs = append(recs, fmt.Sprintf("Over-dependence on %s (%.1f%% of income), diversify income sources for stability", top.Source.Label(), top.Stats.Percentage))
	}

	consistent := 0
	for _, st := range analysis.Sources {
		if st.Consistency > 80 {
			consistent++
		}
	}
	if consistent < 3 {
		recs = append(recs, "Focus on building consistency in at least 3 income sources")
	}

	if len(recs) == 0 {
		recs = append(recs, "Income sources are well balanced and performing consistently")
	}
	return recs, nil
}

// YearOverYear compares source contributions for year and year-1.
func (s *Service) YearOverYear(year int) (models.YoYComparison, error) {
	current, err := s.yearAnalysis(year)
	if err != nil {
		return models.YoYComparison{}, err
	}
	previous, err := s.yearAnalysis(year - 1)
	if err != nil {
		return models.YoYComparison{}, err
	}

	cmp := models.YoYComparison{
		CurrentYear:       year,
		PreviousYear:      year - 1,
		CurrentTotal:      current.TotalEarned,
		PreviousTotal:     previous.TotalEarned,
		SourceComparisons: map[models.Source]models.SourceComparison{},
	}

	for _, src := range models.AllSources {
		cur := current.Sources[src]
		prev := previous.Sources[src]

		sc := models.SourceComparison{
			CurrentTotal:          cur.Total,
			PreviousTotal:         prev.Total,
			TotalChange:           cur.Total - prev.Total,
			CurrentPercentage:     cur.Percentage,
			PreviousPercentage:    prev.Percentage,
			PercentagePointChange: cur.Percentage - prev.Percentage,
		}
		if prev.Total > 0 {
			sc.TotalChangePercent = (cur.Total - prev.Total) / prev.Total * 100
		}
		sc.Status = changeStatus(sc.TotalChangePercent, sc.PercentagePointChange)
		cmp.SourceComparisons[src] = sc
	}

	cmp.Summary = summarize(cmp)
	return cmp, nil
}

func (s *Service) yearAnalysis(year int) (models.SourceAnalysis, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.Local)
	return s.Analysis(start, end)
}

func changeStatus(totalChangePercent, ppChange float64) string {
	switch {
	case totalChangePercent > 20 && ppChange > 5:
		return "Significantly Growing"
	case totalChangePercent > 10 && ppChange > 2:
		return "Growing"
	case totalChangePercent < -20 && ppChange < -5:
		return "Significantly Declining"
	case totalChangePercent < -10 && ppChange < -2:
		return "Declining"
	case totalChangePercent > -10 && math.Abs(ppChange) < 2:
		return "Stable"
	default:
		return "Mixed"
	}
}

func summarize(cmp models.YoYComparison) models.YoYSummary {
	summary := models.YoYSummary{
		StatusDistribution: map[string]int{},
	}
	if cmp.PreviousTotal > 0 {
		summary.OverallGrowthPercent = (cmp.CurrentTotal - cmp.PreviousTotal) / cmp.PreviousTotal * 100
	}

	first := true
	for _, src := range models.AllSources {
		sc, ok := cmp.SourceComparisons[src]
		if !ok {
			continue
		}
		summary.StatusDistribution[sc.Status]++

		if first || sc.TotalChangePercent > summary.BiggestGainerChange {
			summary.BiggestGainer = src
			summary.BiggestGainerChange = sc.TotalChangePercent
		}
		if first || sc.TotalChangePercent < summary.BiggestLoserChange {
			summary.BiggestLoser = src
			summary.BiggestLoserChange = sc.TotalChangePercent
		}
		first = false
	}

	summary.DiversificationTrend = diversificationTrend(cmp)
	return summary
}

// diversificationTrend compares source concentration year over year using a
// Herfindahl-style sum of squared percentages; lower concentration means a
// more diversified income mix.
func diversificationTrend(cmp models.YoYComparison) string {
	var current, previous float64
	for _, sc := range cmp.SourceComparisons {
		current += sc.CurrentPercentage * sc.CurrentPercentage
		previous += sc.PreviousPercentage * sc.PreviousPercentage
	}
	current /= 100
	previous /= 100

	switch {
	case current < previous*0.9:
		return "More Diversified"
	case current > previous*1.1:
		return "Less Diversified"
	default:
		return "Similar Diversification"
	}
}

// RecordWeightageSnapshot computes the analysis for the named period type
// ("daily", "weekly" or "monthly") and appends one audit row per source.
// Returns the number of rows written.
func (s *Service) RecordWeightageSnapshot(periodType, notes string) (int, error) {
	today := models.DateOnly(s.now())

	var start, end time.Time
	switch periodType {
	case "daily":
		start, end = today, today
	case "weekly":
		start = models.WeekStart(today)
		end = start.AddDate(0, 0, 6)
	case "monthly":
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.Local)
		end = start.AddDate(0, 1, -1)
	default:
		return 0, fmt.Errorf("unknown period type %q", periodType)
	}

	analysis, err := s.Analysis(start, end)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, src := range models.AllSources {
		st, ok := analysis.Sources[src]
		if !ok {
			continue
		}
		_, err := s.data.AddWeightageRecord(models.SourceWeightageHistory{
			Date:                today,
			SourceName:          src,
			WeightagePercentage: st.Percentage,
			TotalEarned:         analysis.TotalEarned,
			PeriodType:          periodType,
			Notes:               notes,
		})
		if err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
