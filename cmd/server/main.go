package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/term"

	"earntrack/internal/config"
	"earntrack/internal/handlers/backup"
	httpx "earntrack/internal/http"
	"earntrack/internal/models"
	"earntrack/internal/services/aggregate"
	"earntrack/internal/services/goals"
	"earntrack/internal/services/ledger"
	"earntrack/internal/services/policy"
	"earntrack/internal/services/recordstore"
	"earntrack/internal/services/sources"
	"earntrack/internal/services/storage"
	"earntrack/internal/version"
)

var (
	cfg      *config.Config
	store    *storage.Storage
	ldg      *ledger.Ledger
	resolver *policy.Resolver
	agg      *aggregate.Service
	src      *sources.Service
	rec      *goals.Engine
)

func main() {
	cfg = config.Load()
	log.Printf("Starting earntrack on %s (%s)", cfg.ListenAddr, version.Get())
	log.Printf("Data directory: %s", cfg.DataDirectory)

	st, err := storage.New(cfg.DataDirectory)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	if st.IsEncrypted() {
		if err := unlockStorage(st); err != nil {
			log.Fatalf("Failed to unlock storage: %v", err)
		}
		log.Println("Storage unlocked")
	}

	initServices(st)

	log.Printf("Server starting on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, newRouter()))
}

// initServices wires the engine stack over the given storage layer.
func initServices(st *storage.Storage) {
	store = st
	ldg = ledger.New(recordstore.New(store), ledger.Config{
		RecordCacheTTL:   cfg.RecordCacheTTL(),
		SettingsCacheTTL: cfg.SettingsCacheTTL(),
	})
	resolver = policy.New(ldg)
	agg = aggregate.New(ldg, resolver)
	src = sources.New(ldg)
	rec = goals.New(ldg)

	backup.Initialize(cfg, store, ldg)
}

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/api/health", handleHealth)

	r.Route("/api/records", func(r chi.Router) {
		r.Get("/", handleListRecords)
		r.Post("/", handleAddRecord)
		r.Get("/today", handleTodayRecord)
		r.Get("/{id}", handleGetRecord)
		r.Put("/{id}", handleUpdateRecord)
		r.Delete("/{id}", handleDeleteRecord)
	})

	r.Route("/api/summary", func(r chi.Router) {
		r.Get("/weekly", handleWeeklySummary)
		r.Get("/monthly", handleMonthlySummary)
		r.Post("/monthly", handleSaveMonthlySummary)
		r.Get("/monthly/history", handleMonthlySummaryHistory)
		r.Get("/yearly", handleYearlySummary)
		r.Get("/overview", handleOverview)
	})

	r.Get("/api/decompose", handleDecompose)

	r.Route("/api/sources", func(r chi.Router) {
		r.Get("/analysis", handleSourceAnalysis)
		r.Get("/targets", handleSourceTargets)
		r.Get("/recommendations", handleSourceRecommendations)
		r.Get("/yoy", handleYearOverYear)
		r.Post("/snapshot", handleWeightageSnapshot)
		r.Get("/weightage-history", handleWeightageHistory)
	})

	r.Route("/api/goals", func(r chi.Router) {
		r.Get("/", handleListGoals)
		r.Post("/", handleAddGoal)
		r.Put("/{id}", handleUpdateGoal)
		r.Delete("/{id}", handleDeleteGoal)
		r.Get("/current", handleCurrentGoals)
		r.Get("/recommendations", handleGoalRecommendations)
		r.Post("/auto-adjust", handleAutoAdjust)
	})

	r.Get("/api/settings/base-income", handleGetBaseSettings)
	r.Put("/api/settings/base-income", handleUpdateBaseSettings)

	r.Get("/api/targets/weekly", handleWeeklyTarget)
	r.Post("/api/targets/weekly", handleAddWeeklyTarget)

	r.Get("/api/backup", backup.HandleBackup)
	r.Post("/api/restore", backup.HandleRestore)

	r.Route("/api/encryption", func(r chi.Router) {
		r.Get("/status", handleEncryptionStatus)
		r.Post("/enable", handleEnableEncryption)
		r.Post("/disable", handleDisableEncryption)
	})

	return r
}

// unlockStorage takes the passphrase from the environment or, when attached
// to a terminal, prompts for it.
func unlockStorage(store *storage.Storage) error {
	if pass := os.Getenv("EARNTRACK_PASSWORD"); pass != "" {
		return store.Unlock(pass)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("data is encrypted: set EARNTRACK_PASSWORD or run interactively")
	}

	fmt.Print("Data passphrase: ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	return store.Unlock(string(pass))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Get(),
	})
}

// --- Income records ---

func handleListRecords(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	var (
		records []models.IncomeRecord
		err     error
	)
	if startStr == "" && endStr == "" {
		records, err = ldg.AllRecords()
	} else {
		start, end := httpx.ParseDateRange(startStr, endStr, 30)
		records, err = ldg.RecordsInRange(start, end)
	}
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func handleAddRecord(w http.ResponseWriter, r *http.Request) {
	var record models.IncomeRecord
	if err := httpx.Decode(r, &record); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if record.Date.IsZero() {
		record.Date = time.Now()
	}
	if record.GoalInc == 0 {
		record.GoalInc = ldg.CurrentDailyGoal()
	}

	id, err := ldg.AddRecord(record)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	record.ID = id
	record.Recalculate()
	httpx.JSON(w, http.StatusCreated, record)
}

func handleTodayRecord(w http.ResponseWriter, r *http.Request) {
	record, err := ldg.GetOrCreateToday()
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, "Invalid record id", http.StatusBadRequest)
		return
	}

	record, ok, err := ldg.RecordByID(id)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		httpx.Error(w, "Record not found", http.StatusNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, "Invalid record id", http.StatusBadRequest)
		return
	}

	var record models.IncomeRecord
	if err := httpx.Decode(r, &record); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ok, err := ldg.UpdateRecord(id, record)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		httpx.Error(w, "Record not found", http.StatusNotFound)
		return
	}
	record.ID = id
	record.Recalculate()
	httpx.JSON(w, http.StatusOK, record)
}

func handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, "Invalid record id", http.StatusBadRequest)
		return
	}

	ok, err := ldg.DeleteRecord(id)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		httpx.Error(w, "Record not found", http.StatusNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Summaries ---

func handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if d, ok := httpx.ParseDate(r.URL.Query().Get("date")); ok {
		day = d
	}

	summary, err := agg.WeeklySummary(day)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		httpx.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}

	summary, err := agg.MonthlySummary(year, time.Month(month))
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func handleSaveMonthlySummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		httpx.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}

	summary, err := agg.MonthlyGoalSummary(year, time.Month(month))
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id, err := ldg.SaveMonthlySummary(summary)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summary.ID = id
	httpx.JSON(w, http.StatusCreated, summary)
}

func handleMonthlySummaryHistory(w http.ResponseWriter, r *http.Request) {
	summaries, err := ldg.MonthlySummaries()
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, summaries)
}

func handleYearlySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := agg.YearlySummary(queryInt(r, "year", time.Now().Year()))
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := agg.Overview()
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func handleDecompose(w http.ResponseWriter, r *http.Request) {
	day, ok := httpx.ParseDate(r.URL.Query().Get("date"))
	if !ok {
		day = time.Now()
	}
	earned, _ := strconv.ParseFloat(r.URL.Query().Get("earned"), 64)
	httpx.JSON(w, http.StatusOK, resolver.Decompose(day, earned))
}

// --- Source analytics ---

func handleSourceAnalysis(w http.ResponseWriter, r *http.Request) {
	start, end := httpx.ParseDateRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"), sources.DefaultAnalysisDays)

	analysis, err := src.Analysis(start, end)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func handleSourceTargets(w http.ResponseWriter, r *http.Request) {
	goal := ldg.CurrentDailyGoal()
	if g, err := strconv.ParseFloat(r.URL.Query().Get("goal"), 64); err == nil && g > 0 {
		goal = g
	}

	targets, err := src.OptimalTargets(goal)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"total_daily_goal": goal,
		"targets":          targets,
	})
}

func handleSourceRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := src.PerformanceRecommendations(queryInt(r, "days", sources.DefaultAnalysisDays))
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

func handleYearOverYear(w http.ResponseWriter, r *http.Request) {
	cmp, err := src.YearOverYear(queryInt(r, "year", time.Now().Year()))
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, cmp)
}

func handleWeightageSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodType string `json:"period_type"`
		Notes      string `json:"notes"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PeriodType == "" {
		req.PeriodType = "monthly"
	}

	written, err := src.RecordWeightageSnapshot(req.PeriodType, req.Notes)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]interface{}{"rows_written": written})
}

func handleWeightageHistory(w http.ResponseWriter, r *http.Request) {
	filter := ledger.WeightageFilter{
		Source:     models.Source(r.URL.Query().Get("source")),
		PeriodType: r.URL.Query().Get("period"),
	}
	if t, ok := httpx.ParseDate(r.URL.Query().Get("start")); ok {
		filter.Start = t
	}
	if t, ok := httpx.ParseDate(r.URL.Query().Get("end")); ok {
		filter.End = t
	}

	history, err := ldg.WeightageHistory(filter)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

// --- Goals ---

func handleListGoals(w http.ResponseWriter, r *http.Request) {
	all, err := ldg.AllGoals()
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

func handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var goal models.GoalSetting
	if err := httpx.Decode(r, &goal); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		id  int
		err error
	)
	if goal.Period == models.PeriodMonthly && goal.IsActive {
		id, err = ldg.ReplaceMonthlyGoal(goal)
	} else {
		id, err = ldg.AddGoal(goal)
	}
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	goal.ID = id
	httpx.JSON(w, http.StatusCreated, goal)
}

func handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, "Invalid goal id", http.StatusBadRequest)
		return
	}

	var goal models.GoalSetting
	if err := httpx.Decode(r, &goal); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ok, err := ldg.UpdateGoal(id, goal)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		httpx.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	goal.ID = id
	httpx.JSON(w, http.StatusOK, goal)
}

func handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, "Invalid goal id", http.StatusBadRequest)
		return
	}

	ok, err := ldg.DeleteGoal(id)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		httpx.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func handleCurrentGoals(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]float64{
		"daily":   ldg.CurrentDailyGoal(),
		"monthly": ldg.CurrentMonthlyGoal(),
		"yearly":  ldg.CurrentYearlyGoal(),
	})
}

func handleGoalRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := rec.Recommendations(queryInt(r, "days", goals.DefaultAnalysisDays))
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, recs)
}

func handleAutoAdjust(w http.ResponseWriter, r *http.Request) {
	apply := r.URL.Query().Get("apply") == "true"

	result, err := rec.AutoAdjust(apply)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// --- Settings and targets ---

func handleGetBaseSettings(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, ldg.CurrentBaseIncomeSettings())
}

func handleUpdateBaseSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.BaseIncomeSettings
	if err := httpx.Decode(r, &settings); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := ldg.UpdateBaseIncomeSettings(settings); err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httpx.JSON(w, http.StatusOK, ldg.CurrentBaseIncomeSettings())
}

func handleWeeklyTarget(w http.ResponseWriter, r *http.Request) {
	if d, ok := httpx.ParseDate(r.URL.Query().Get("date")); ok {
		target, found := ldg.WeeklyTargetFor(d)
		if !found {
			httpx.Error(w, "No target configured for that week", http.StatusNotFound)
			return
		}
		httpx.JSON(w, http.StatusOK, target)
		return
	}

	target, err := ldg.CurrentWeeklyTarget()
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httpx.JSON(w, http.StatusOK, target)
}

func handleAddWeeklyTarget(w http.ResponseWriter, r *http.Request) {
	var target models.WeeklyGoalTarget
	if err := httpx.Decode(r, &target); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if target.WeekStart.IsZero() {
		target.WeekStart = time.Now()
	}
	target.IsActive = true

	id, err := ldg.AddWeeklyTarget(target)
	if err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	target.ID = id
	target.WeekStart = models.WeekStart(target.WeekStart)
	target.Recalculate()
	httpx.JSON(w, http.StatusCreated, target)
}

// --- Encryption administration ---

func handleEncryptionStatus(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]bool{
		"encrypted": store.IsEncrypted(),
		"unlocked":  store.IsUnlocked(),
	})
}

func handleEnableEncryption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := store.EnableEncryption(req.Passphrase); err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Println("Encryption enabled")
	httpx.JSON(w, http.StatusOK, map[string]bool{
		"encrypted": store.IsEncrypted(),
		"unlocked":  store.IsUnlocked(),
	})
}

func handleDisableEncryption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := store.DisableEncryption(req.Passphrase); err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Println("Encryption disabled")
	httpx.JSON(w, http.StatusOK, map[string]bool{
		"encrypted": store.IsEncrypted(),
		"unlocked":  store.IsUnlocked(),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return fallback
}
