package xlsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/tabular"
)

func TestWriteReadTable_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extracted_data.xlsx")

	table := tabular.NewTable()
	table.Append([]string{"1", "2021-01-01 00:00:00", "101", "CAR"})
	table.Append([]string{"2", "2021-01-01 00:05:00", "102", "TRUCK"})

	headers := []string{"Rowid", "Timestamp", "Vehicle number", "Vehicle type"}
	if err := WriteTable(table, path, "TollData", headers); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	got, err := ReadTable(path, "TollData", true)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if got.RowCount() != 2 {
		t.Fatalf("Expected 2 data rows, got %d", got.RowCount())
	}
	if got.Rows[0][3] != "CAR" {
		t.Errorf("Expected CAR, got %q", got.Rows[0][3])
	}
	if got.Rows[1][2] != "102" {
		t.Errorf("Expected 102, got %q", got.Rows[1][2])
	}
}

func TestWriteTable_NoHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")

	table := tabular.NewTable()
	table.Append([]string{"a", "b"})

	if err := WriteTable(table, path, "", nil); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	got, err := ReadTable(path, "", false)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if got.RowCount() != 1 {
		t.Fatalf("Expected 1 row, got %d", got.RowCount())
	}
}

func TestWriteTable_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")

	first := tabular.NewTable()
	first.Append([]string{"old", "old", "old"})
	if err := WriteTable(first, path, "TollData", nil); err != nil {
		t.Fatalf("First WriteTable failed: %v", err)
	}

	second := tabular.NewTable()
	second.Append([]string{"new"})
	if err := WriteTable(second, path, "TollData", nil); err != nil {
		t.Fatalf("Second WriteTable failed: %v", err)
	}

	got, err := ReadTable(path, "TollData", false)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if got.RowCount() != 1 {
		t.Fatalf("Expected overwrite with 1 row, got %d", got.RowCount())
	}
	if got.Rows[0][0] != "new" {
		t.Errorf("Expected new contents, got %q", got.Rows[0][0])
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Output file missing: %v", err)
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
	}

	for _, tt := range tests {
		if got := columnName(tt.col); got != tt.want {
			t.Errorf("columnName(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}
