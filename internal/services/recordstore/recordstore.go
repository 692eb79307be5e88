// Package recordstore persists typed record collections as flat CSV files,
// one file per collection, with integer ids assigned on append. It is the
// only component that touches the storage layer directly.
package recordstore

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"earntrack/internal/services/storage"
)

// Row is one record as column name -> serialized value.
type Row map[string]string

// Collection names a record file and its column set.
type Collection struct {
	Filename string
	Columns  []string
}

// The engine's record collections.
var (
	IncomeRecords = Collection{
		Filename: "income_records.csv",
		Columns: []string{
			"id", "date", "zomato", "swiggy", "shadow_fax", "pc_repair",
			"settings", "youtube", "gp_links", "id_sales", "other_sources",
			"extra_work", "earned", "status", "goal_inc", "progress", "extra",
			"notes", "created_at", "updated_at",
		},
	}

	GoalSettings = Collection{
		Filename: "goal_settings.csv",
		Columns: []string{
			"id", "name", "period", "amount", "start_date", "end_date",
			"is_active", "description", "created_at",
		},
	}

	WeeklyTargets = Collection{
		Filename: "weekly_targets.csv",
		Columns: []string{
			"id", "week_start", "monday_target", "tuesday_target",
			"wednesday_target", "thursday_target", "friday_target",
			"saturday_target", "sunday_target", "weekly_target",
			"is_active", "created_at",
		},
	}

	BaseIncomeSettings = Collection{
		Filename: "base_income_settings.csv",
		Columns: []string{
			"id", "weekday_base", "saturday_base", "sunday_base",
			"is_active", "created_at", "updated_at",
		},
	}

	MonthlySummaries = Collection{
		Filename: "monthly_summary.csv",
		Columns: []string{
			"id", "month", "monthly_target", "total_earned",
			"zomato_earned", "swiggy_earned", "shadow_fax_earned",
			"pc_repair_earned", "settings_earned", "youtube_earned",
			"gp_links_earned", "id_sales_earned", "other_sources_earned",
			"extra_work_earned", "progress_percentage", "days_completed",
			"days_in_month", "average_daily", "created_at",
		},
	}

	WeightageHistory = Collection{
		Filename: "source_weightage_history.csv",
		Columns: []string{
			"id", "date", "source_name", "weightage_percentage",
			"total_earned", "period_type", "notes", "created_at",
		},
	}
)

// Store reads and writes record collections. A single mutex serializes every
// read-modify-write so id assignment and whole-file rewrites stay consistent.
type Store struct {
	files *storage.Storage
	mu    sync.Mutex
}

// New creates a Store over the given storage layer.
func New(files *storage.Storage) *Store {
	return &Store{files: files}
}

func (s *Store) path(c Collection) string {
	return filepath.Join(s.files.DataDir(), c.Filename)
}

// Exists reports whether a collection file has been created.
func (s *Store) Exists(c Collection) bool {
	_, err := s.files.Stat(s.path(c))
	return err == nil
}

// ReadAll returns every row of a collection. A missing file yields an empty
// result, not an error. Rows with an unparseable id are recovered with the
// next sequential id and a warning, never dropped.
func (s *Store) ReadAll(c Collection) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readRows(c)
}

// Append adds one row, assigns it the next sequential id and returns it.
func (s *Store) Append(c Collection, row Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(c)
	if err != nil {
		return 0, err
	}

	id := nextID(rows)
	row["id"] = strconv.Itoa(id)
	rows = append(rows, row)

	if err := s.writeRows(c, rows); err != nil {
		return 0, err
	}
	return id, nil
}

// Update replaces the row with the given id. Returns false when no row
// matches.
func (s *Store) Update(c Collection, id int, row Row) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(c)
	if err != nil {
		return false, err
	}

	found := false
	for i, existing := range rows {
		if existing["id"] == strconv.Itoa(id) {
			row["id"] = strconv.Itoa(id)
			rows[i] = row
			found = true
			break
		}
	}
	if !found {
		log.Printf("Warning: %s: no record with id %d to update", c.Filename, id)
		return false, nil
	}

	return true, s.writeRows(c, rows)
}

// Delete removes the row with the given id. Returns false when no row
// matches.
func (s *Store) Delete(c Collection, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(c)
	if err != nil {
		return false, err
	}

	kept := rows[:0]
	found := false
	for _, existing := range rows {
		if existing["id"] == strconv.Itoa(id) {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		log.Printf("Warning: %s: no record with id %d to delete", c.Filename, id)
		return false, nil
	}

	return true, s.writeRows(c, kept)
}

// ReplaceAll atomically rewrites the whole collection. Used for upserts
// that must land as one file swap.
func (s *Store) ReplaceAll(c Collection, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeRows(c, rows)
}

// AppendWithRewrite rewrites the collection from modified rows and appends a
// new row with a fresh id in the same atomic write. Returns the new id.
func (s *Store) AppendWithRewrite(c Collection, rows []Row, row Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := nextID(rows)
	row["id"] = strconv.Itoa(id)
	rows = append(rows, row)

	if err := s.writeRows(c, rows); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) readRows(c Collection) ([]Row, error) {
	data, err := s.files.ReadFile(s.path(c))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", c.Filename, err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", c.Filename, err)
	}

	var rows []Row
	maxID := 0
	lineNum := 1
	type badID struct{ idx, line int }
	var recovered []badID
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			log.Printf("Warning: %s line %d: %v", c.Filename, lineNum, err)
			continue
		}

		row := make(Row, len(c.Columns))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		for _, col := range c.Columns {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}

		if id, err := strconv.Atoi(row["id"]); err == nil && id > 0 {
			if id > maxID {
				maxID = id
			}
		} else {
			recovered = append(recovered, badID{idx: len(rows), line: lineNum})
		}

		rows = append(rows, row)
	}

	// Assign replacement ids only after the whole file has been scanned, so a
	// recovered id can never collide with a valid id further down.
	for _, b := range recovered {
		maxID++
		log.Printf("Warning: %s line %d: bad record id %q, assigning %d", c.Filename, b.line, rows[b.idx]["id"], maxID)
		rows[b.idx]["id"] = strconv.Itoa(maxID)
	}

	return rows, nil
}

func (s *Store) writeRows(c Collection, rows []Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(c.Columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return s.files.WriteFile(s.path(c), buf.Bytes(), 0644)
}

// NextID returns the id an appended row would receive.
func NextID(rows []Row) int {
	return nextID(rows)
}

func nextID(rows []Row) int {
	maxID := 0
	for _, row := range rows {
		if id, err := strconv.Atoi(row["id"]); err == nil && id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// SortByColumn orders rows by a column's string value (dates in YYYY-MM-DD
// order sort correctly as strings).
func SortByColumn(rows []Row, col string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][col] < rows[j][col]
	})
}
