package recordstore

import (
	"os"
	"path/filepath"
	"testing"

	"earntrack/internal/services/storage"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return New(files), dir
}

var testCollection = Collection{
	Filename: "test_records.csv",
	Columns:  []string{"id", "name", "amount"},
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 1; i <= 3; i++ {
		id, err := store.Append(testCollection, Row{"name": "row", "amount": "10.00"})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if id != i {
			t.Errorf("Expected id %d, got %d", i, id)
		}
	}

	rows, err := store.ReadAll(testCollection)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(rows))
	}
}

func TestReadAllMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	rows, err := store.ReadAll(testCollection)
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if rows != nil {
		t.Errorf("Expected nil rows, got %v", rows)
	}
	if store.Exists(testCollection) {
		t.Error("Exists should be false before first write")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	store, _ := newTestStore(t)

	id, _ := store.Append(testCollection, Row{"name": "before", "amount": "1.00"})

	ok, err := store.Update(testCollection, id, Row{"name": "after", "amount": "2.00"})
	if err != nil || !ok {
		t.Fatalf("Update failed: ok=%v err=%v", ok, err)
	}

	rows, _ := store.ReadAll(testCollection)
	if rows[0]["name"] != "after" {
		t.Errorf("Expected updated name, got %q", rows[0]["name"])
	}

	ok, err = store.Delete(testCollection, id)
	if err != nil || !ok {
		t.Fatalf("Delete failed: ok=%v err=%v", ok, err)
	}
	rows, _ = store.ReadAll(testCollection)
	if len(rows) != 0 {
		t.Errorf("Expected empty collection after delete, got %d rows", len(rows))
	}
}

func TestUpdateMissingIDReturnsFalse(t *testing.T) {
	store, _ := newTestStore(t)
	store.Append(testCollection, Row{"name": "only", "amount": "1.00"})

	ok, err := store.Update(testCollection, 99, Row{"name": "x"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected false for missing id")
	}

	ok, err = store.Delete(testCollection, 99)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected false for missing id")
	}
}

func TestAppendWithRewrite(t *testing.T) {
	store, _ := newTestStore(t)

	store.Append(testCollection, Row{"name": "a", "amount": "1.00"})
	store.Append(testCollection, Row{"name": "b", "amount": "2.00"})

	rows, _ := store.ReadAll(testCollection)
	for _, row := range rows {
		row["amount"] = "0.00"
	}

	id, err := store.AppendWithRewrite(testCollection, rows, Row{"name": "c", "amount": "3.00"})
	if err != nil {
		t.Fatalf("AppendWithRewrite failed: %v", err)
	}
	if id != 3 {
		t.Errorf("Expected id 3, got %d", id)
	}

	rows, _ = store.ReadAll(testCollection)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0]["amount"] != "0.00" || rows[1]["amount"] != "0.00" {
		t.Error("Expected rewritten rows to carry modified amounts")
	}
	if rows[2]["name"] != "c" {
		t.Errorf("Expected appended row last, got %q", rows[2]["name"])
	}
}

func TestMalformedIDRecovered(t *testing.T) {
	store, dir := newTestStore(t)

	csv := "id,name,amount\nnot-a-number,broken,5.00\n2,fine,6.00\n"
	if err := os.WriteFile(filepath.Join(dir, testCollection.Filename), []byte(csv), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	rows, err := store.ReadAll(testCollection)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected both rows kept, got %d", len(rows))
	}
	if rows[0]["id"] != "3" {
		t.Errorf("Expected recovered id above the file's max, got %q", rows[0]["id"])
	}
	if rows[1]["id"] != "2" {
		t.Errorf("Expected valid id untouched, got %q", rows[1]["id"])
	}
}

func TestParseAmountTolerant(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{" 1,234.50 ", 1234.5},
		{"$99", 99},
		{"₹250.00", 250},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.in); got != tt.want {
			t.Errorf("ParseAmount(%q): expected %.2f, got %.2f", tt.in, tt.want, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{650, "650.00"},
		{0.1, "0.10"},
		{1107.142857, "1107.14"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestBoolRoundTrip(t *testing.T) {
	if FormatBool(true) != "True" || FormatBool(false) != "False" {
		t.Error("Unexpected bool serialization")
	}
	for _, s := range []string{"True", "true", "1", "yes"} {
		if !ParseBool(s) {
			t.Errorf("Expected ParseBool(%q) true", s)
		}
	}
	if ParseBool("False") || ParseBool("") || ParseBool("0") {
		t.Error("Expected false values to parse false")
	}
}
