package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"earntrack/internal/config"
	"earntrack/internal/models"
	"earntrack/internal/services/storage"
	"earntrack/internal/testutil"
)

// newTestApp wires the full service stack over a temporary data directory
// and returns a running test server.
func newTestApp(t *testing.T) *testutil.TestServer {
	t.Helper()

	cfg = config.DefaultConfig()
	cfg.DataDirectory = t.TempDir()
	cfg.BackupDirectory = t.TempDir()

	store, err := storage.New(cfg.DataDirectory)
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	initServices(store)

	ts := testutil.NewTestServer(t, newRouter())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestApp(t)

	testutil.AssertResponse(t, ts.GET("/api/health")).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(`"status":"ok"`, `"version"`)
}

func TestRecordLifecycle(t *testing.T) {
	ts := newTestApp(t)

	record := models.IncomeRecord{
		Date:   time.Now(),
		Zomato: 400,
		Swiggy: 250,
	}

	var created models.IncomeRecord
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", record)).
		Status(http.StatusCreated).
		ContentTypeJSON().
		JSON(&created)

	if created.ID == 0 {
		t.Fatal("Expected assigned id")
	}
	if created.Earned != 650 {
		t.Errorf("Expected earned 650, got %.2f", created.Earned)
	}
	// Goal was omitted, so the server fills in the current daily goal
	if created.GoalInc <= 0 {
		t.Errorf("Expected defaulted daily goal, got %.2f", created.GoalInc)
	}

	path := fmt.Sprintf("/api/records/%d", created.ID)
	var fetched models.IncomeRecord
	testutil.AssertResponse(t, ts.GET(path)).
		StatusOK().
		JSON(&fetched)
	if fetched.Earned != 650 || fetched.ID != created.ID {
		t.Errorf("Unexpected fetched record: %+v", fetched)
	}

	fetched.Swiggy = 350
	var updated models.IncomeRecord
	testutil.AssertResponse(t, ts.PUTJSON(path, fetched)).
		StatusOK().
		JSON(&updated)
	if updated.Earned != 750 {
		t.Errorf("Expected earned 750 after update, got %.2f", updated.Earned)
	}

	testutil.AssertResponse(t, ts.DELETE(path)).
		StatusOK().
		Contains(`"status":"deleted"`)

	testutil.AssertResponse(t, ts.GET(path)).
		Status(http.StatusNotFound).
		Contains("Record not found")
}

func TestAddRecordRejectsNegative(t *testing.T) {
	ts := newTestApp(t)

	record := models.IncomeRecord{Date: time.Now(), Zomato: -50}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", record)).
		Status(http.StatusBadRequest).
		Contains("error")
}

func TestTodayRecord(t *testing.T) {
	ts := newTestApp(t)

	// With no data yet, today's record is an unsaved placeholder
	var record models.IncomeRecord
	testutil.AssertResponse(t, ts.GET("/api/records/today")).
		StatusOK().
		JSON(&record)
	if record.ID != 0 || record.GoalInc <= 0 {
		t.Errorf("Unexpected placeholder record: %+v", record)
	}
}

func TestSummaryEndpoints(t *testing.T) {
	ts := newTestApp(t)

	record := models.IncomeRecord{Date: time.Now(), Zomato: 650, GoalInc: 500}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", record)).
		Status(http.StatusCreated)

	var weekly models.WeeklySummary
	testutil.AssertResponse(t, ts.GET("/api/summary/weekly")).
		StatusOK().
		ContentTypeJSON().
		JSON(&weekly)
	if len(weekly.DailyBreakdown) != 7 {
		t.Errorf("Expected 7 daily entries, got %d", len(weekly.DailyBreakdown))
	}
	if weekly.TotalEarned != 650 {
		t.Errorf("Expected week total 650, got %.2f", weekly.TotalEarned)
	}

	now := time.Now()
	var monthly models.MonthlySummary
	testutil.AssertResponse(t, ts.GET(fmt.Sprintf("/api/summary/monthly?year=%d&month=%d", now.Year(), int(now.Month())))).
		StatusOK().
		JSON(&monthly)
	if monthly.DaysInMonth != models.DaysInMonth(now) {
		t.Errorf("Unexpected month length: %d", monthly.DaysInMonth)
	}
	if monthly.TotalEarned != 650 {
		t.Errorf("Expected month total 650, got %.2f", monthly.TotalEarned)
	}

	testutil.AssertResponse(t, ts.GET("/api/summary/monthly?month=13")).
		Status(http.StatusBadRequest)

	var yearly models.YearlySummary
	testutil.AssertResponse(t, ts.GET("/api/summary/yearly")).
		StatusOK().
		JSON(&yearly)
	if len(yearly.MonthlyBreakdown) != 12 {
		t.Errorf("Expected 12 month segments, got %d", len(yearly.MonthlyBreakdown))
	}

	testutil.AssertResponse(t, ts.GET("/api/summary/overview")).
		StatusOK().
		ContainsAll(`"total_records":1`, `"total_earned":650`)
}

func TestDecomposeEndpoint(t *testing.T) {
	ts := newTestApp(t)

	// A Wednesday against the default 500 weekday base
	var d models.Decomposition
	testutil.AssertResponse(t, ts.GET("/api/decompose?date=2025-06-11&earned=650")).
		StatusOK().
		JSON(&d)
	if d.BaseTarget != 500 || d.BaseAchieved != 500 || d.BonusAmount != 150 {
		t.Errorf("Unexpected decomposition: %+v", d)
	}
}

func TestSourceEndpoints(t *testing.T) {
	ts := newTestApp(t)

	record := models.IncomeRecord{Date: time.Now(), Zomato: 600, Swiggy: 400, GoalInc: 500}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", record)).
		Status(http.StatusCreated)

	testutil.AssertResponse(t, ts.GET("/api/sources/analysis")).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(`"total_earned":1000`, `"zomato"`, `"rankings"`)

	testutil.AssertResponse(t, ts.GET("/api/sources/targets?goal=1000")).
		StatusOK().
		ContainsAll(`"total_daily_goal":1000`, `"targets"`)

	testutil.AssertResponse(t, ts.GET("/api/sources/recommendations")).
		StatusOK().
		Contains(`"recommendations"`)

	testutil.AssertResponse(t, ts.GET("/api/sources/yoy")).
		StatusOK().
		ContainsAll(`"current_year"`, `"source_comparisons"`)

	testutil.AssertResponse(t, ts.POSTJSON("/api/sources/snapshot", map[string]string{
		"period_type": "daily",
		"notes":       "test snapshot",
	})).
		Status(http.StatusCreated).
		Contains(`"rows_written"`)

	var history []models.SourceWeightageHistory
	testutil.AssertResponse(t, ts.GET("/api/sources/weightage-history?source=zomato")).
		StatusOK().
		JSON(&history)
	if len(history) != 1 {
		t.Fatalf("Expected 1 zomato history row, got %d", len(history))
	}
	if history[0].WeightagePercentage != 60 {
		t.Errorf("Expected zomato weightage 60, got %.2f", history[0].WeightagePercentage)
	}

	testutil.AssertResponse(t, ts.POSTJSON("/api/sources/snapshot", map[string]string{
		"period_type": "quarterly",
	})).
		Status(http.StatusBadRequest)
}

func TestGoalEndpoints(t *testing.T) {
	ts := newTestApp(t)

	// The default goal is seeded at startup
	testutil.AssertResponse(t, ts.GET("/api/goals")).
		StatusOK().
		Contains("Default Monthly Goal")

	goal := models.GoalSetting{
		Name:      "Festival push",
		Period:    models.PeriodMonthly,
		Amount:    45000,
		StartDate: time.Now(),
		IsActive:  true,
	}
	testutil.AssertResponse(t, ts.POSTJSON("/api/goals", goal)).
		Status(http.StatusCreated)

	var current map[string]float64
	testutil.AssertResponse(t, ts.GET("/api/goals/current")).
		StatusOK().
		JSON(&current)
	if current["monthly"] != 45000 {
		t.Errorf("Expected monthly goal 45000, got %.2f", current["monthly"])
	}
	if current["yearly"] != 540000 {
		t.Errorf("Expected yearly goal 540000, got %.2f", current["yearly"])
	}
	wantDaily := 45000 / float64(models.DaysInMonth(time.Now()))
	if diff := current["daily"] - wantDaily; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Expected daily goal %.4f, got %.4f", wantDaily, current["daily"])
	}

	// Replacing keeps history but only one active monthly goal
	var goals []models.GoalSetting
	testutil.AssertResponse(t, ts.GET("/api/goals")).
		StatusOK().
		JSON(&goals)
	active := 0
	for _, g := range goals {
		if g.IsActive && g.Period == models.PeriodMonthly {
			active++
		}
	}
	if active != 1 {
		t.Errorf("Expected exactly 1 active monthly goal, got %d", active)
	}

	testutil.AssertResponse(t, ts.GET("/api/goals/recommendations")).
		StatusOK().
		Contains("No sufficient data for recommendations")

	testutil.AssertResponse(t, ts.POSTJSON("/api/goals/auto-adjust", nil)).
		StatusOK().
		Contains(`"status"`)
}

func TestBaseSettingsEndpoints(t *testing.T) {
	ts := newTestApp(t)

	var settings models.BaseIncomeSettings
	testutil.AssertResponse(t, ts.GET("/api/settings/base-income")).
		StatusOK().
		JSON(&settings)
	if settings.WeekdayBase != 500 || settings.SaturdayBase != 700 || settings.SundayBase != 1000 {
		t.Errorf("Unexpected default schedule: %+v", settings)
	}

	update := models.BaseIncomeSettings{WeekdayBase: 550, SaturdayBase: 750, SundayBase: 1100}
	testutil.AssertResponse(t, ts.PUTJSON("/api/settings/base-income", update)).
		StatusOK().
		JSON(&settings)
	if settings.WeekdayBase != 550 {
		t.Errorf("Expected updated weekday base 550, got %.2f", settings.WeekdayBase)
	}

	// The change flows straight into decomposition targets
	var d models.Decomposition
	testutil.AssertResponse(t, ts.GET("/api/decompose?date=2025-06-11&earned=650")).
		StatusOK().
		JSON(&d)
	if d.BaseTarget != 550 {
		t.Errorf("Expected decomposition against 550, got %.2f", d.BaseTarget)
	}
}

func TestWeeklyTargetEndpoints(t *testing.T) {
	ts := newTestApp(t)

	// First read seeds the default week
	var target models.WeeklyGoalTarget
	testutil.AssertResponse(t, ts.GET("/api/targets/weekly")).
		StatusOK().
		JSON(&target)
	if target.WeeklyTarget != 4300 {
		t.Errorf("Expected default weekly total 4300, got %.2f", target.WeeklyTarget)
	}

	custom := models.WeeklyGoalTarget{
		WeekStart:       time.Date(2025, time.June, 11, 0, 0, 0, 0, time.Local),
		MondayTarget:    600,
		TuesdayTarget:   600,
		WednesdayTarget: 600,
		ThursdayTarget:  600,
		FridayTarget:    600,
		SaturdayTarget:  800,
		SundayTarget:    1200,
	}
	var created models.WeeklyGoalTarget
	testutil.AssertResponse(t, ts.POSTJSON("/api/targets/weekly", custom)).
		Status(http.StatusCreated).
		JSON(&created)
	if created.WeeklyTarget != 5000 {
		t.Errorf("Expected derived total 5000, got %.2f", created.WeeklyTarget)
	}
	if created.WeekStart.Weekday() != time.Monday {
		t.Errorf("Expected Monday-aligned week start, got %s", created.WeekStart.Weekday())
	}

	testutil.AssertResponse(t, ts.GET("/api/targets/weekly?date=2025-06-13")).
		StatusOK().
		Contains(`"weekly_target":5000`)

	testutil.AssertResponse(t, ts.GET("/api/targets/weekly?date=2030-01-01")).
		Status(http.StatusNotFound)
}

func TestBackupEndpoint(t *testing.T) {
	ts := newTestApp(t)

	record := models.IncomeRecord{Date: time.Now(), Zomato: 500, GoalInc: 500}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", record)).
		Status(http.StatusCreated)

	resp := ts.GET("/api/backup")
	testutil.AssertResponse(t, resp).StatusOK().ContentType("application/zip")
}

// postRestoreZip uploads a zip containing the given files to /api/restore.
func postRestoreZip(t *testing.T, ts *testutil.TestServer, files map[string]string) *http.Response {
	t.Helper()

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for name, content := range files {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s to zip: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "backup.zip")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(archive.Bytes()); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart body: %v", err)
	}

	resp, err := http.Post(ts.BaseURL+"/api/restore", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /api/restore failed: %v", err)
	}
	return resp
}

func TestRestoreRefreshesRecords(t *testing.T) {
	ts := newTestApp(t)

	// Prime the record cache with the empty state
	var records []models.IncomeRecord
	testutil.AssertResponse(t, ts.GET("/api/records")).
		StatusOK().
		JSON(&records)
	if len(records) != 0 {
		t.Fatalf("Expected empty ledger, got %d records", len(records))
	}

	csv := "id,date,zomato,swiggy,shadow_fax,pc_repair,settings,youtube,gp_links,id_sales,other_sources,extra_work,earned,status,goal_inc,progress,extra,notes,created_at,updated_at\n" +
		"1,2025-06-11,650.00,0.00,0.00,0.00,0.00,0.00,0.00,0.00,0.00,0.00,650.00,Exceeded,500.00,130,150.00,,2025-06-11 20:00:00,2025-06-11 20:00:00\n"
	testutil.AssertResponse(t, postRestoreZip(t, ts, map[string]string{"income_records.csv": csv})).
		StatusOK().
		Contains("Restored 1 files")

	// The restored record must be visible immediately, not after cache expiry
	testutil.AssertResponse(t, ts.GET("/api/records")).
		StatusOK().
		JSON(&records)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record after restore, got %d", len(records))
	}
	if records[0].Zomato != 650 {
		t.Errorf("Expected restored zomato 650, got %.2f", records[0].Zomato)
	}
}

func TestMonthlySummaryEndpoints(t *testing.T) {
	ts := newTestApp(t)

	record := models.IncomeRecord{Date: time.Now(), Zomato: 600, Swiggy: 300, GoalInc: 500}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", record)).
		Status(http.StatusCreated)

	var saved models.MonthlyGoalSummary
	testutil.AssertResponse(t, ts.POSTJSON("/api/summary/monthly", nil)).
		Status(http.StatusCreated).
		ContentTypeJSON().
		JSON(&saved)
	if saved.ID == 0 {
		t.Fatal("Expected assigned id")
	}
	if saved.TotalEarned != 900 || saved.ZomatoEarned != 600 || saved.SwiggyEarned != 300 {
		t.Errorf("Unexpected totals: %+v", saved)
	}
	if saved.Month.Day() != 1 {
		t.Errorf("Expected first-of-month key, got %s", saved.Month)
	}
	if saved.DaysCompleted != 1 || saved.DaysInMonth != models.DaysInMonth(time.Now()) {
		t.Errorf("Unexpected day counts: %+v", saved)
	}

	// Recomputing the same month replaces the row instead of appending
	testutil.AssertResponse(t, ts.POSTJSON("/api/summary/monthly", nil)).
		Status(http.StatusCreated)

	var history []models.MonthlyGoalSummary
	testutil.AssertResponse(t, ts.GET("/api/summary/monthly/history")).
		StatusOK().
		JSON(&history)
	if len(history) != 1 {
		t.Fatalf("Expected 1 summary row, got %d", len(history))
	}
	if history[0].ID != saved.ID {
		t.Errorf("Expected stable id %d, got %d", saved.ID, history[0].ID)
	}

	testutil.AssertResponse(t, ts.POSTJSON("/api/summary/monthly?month=13", nil)).
		Status(http.StatusBadRequest)
}

func TestEncryptionEndpoints(t *testing.T) {
	ts := newTestApp(t)

	record := models.IncomeRecord{Date: time.Now(), Zomato: 650, GoalInc: 500}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", record)).
		Status(http.StatusCreated)

	testutil.AssertResponse(t, ts.GET("/api/encryption/status")).
		StatusOK().
		ContainsAll(`"encrypted":false`, `"unlocked":true`)

	testutil.AssertResponse(t, ts.POSTJSON("/api/encryption/enable", map[string]string{
		"passphrase": "short",
	})).
		Status(http.StatusBadRequest).
		Contains("at least 8 characters")

	testutil.AssertResponse(t, ts.POSTJSON("/api/encryption/enable", map[string]string{
		"passphrase": "correct horse battery",
	})).
		StatusOK().
		ContainsAll(`"encrypted":true`, `"unlocked":true`)

	// Data stays readable through the API once encrypted
	var records []models.IncomeRecord
	testutil.AssertResponse(t, ts.GET("/api/records")).
		StatusOK().
		JSON(&records)
	if len(records) != 1 || records[0].Zomato != 650 {
		t.Fatalf("Expected record to survive encryption, got %+v", records)
	}

	testutil.AssertResponse(t, ts.POSTJSON("/api/encryption/disable", map[string]string{
		"passphrase": "wrong passphrase",
	})).
		Status(http.StatusBadRequest)

	testutil.AssertResponse(t, ts.POSTJSON("/api/encryption/disable", map[string]string{
		"passphrase": "correct horse battery",
	})).
		StatusOK().
		Contains(`"encrypted":false`)
}
