package tabular

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteCSV_ReadCSV_RoundTrip(t *testing.T) {
	table := &Table{Rows: [][]string{
		{"1", "Mon", "car", "small"},
		{"2", "Tue", "truck, heavy", "large"}, // запятая внутри поля
	}}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := table.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if !reflect.DeepEqual(got.Rows, table.Rows) {
		t.Errorf("Round trip mismatch: %v != %v", got.Rows, table.Rows)
	}
}

func TestWriteCSV_Headerless(t *testing.T) {
	table := &Table{Rows: [][]string{{"a", "b"}}}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := table.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(data) != "a,b\n" {
		t.Errorf("Expected headerless 'a,b\\n', got %q", string(data))
	}
}

func TestWriteCSV_OverwritesOnRerun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	first := &Table{Rows: [][]string{{"old", "data"}, {"more", "rows"}}}
	if err := first.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	// Повторный запуск шага перезаписывает артефакт, а не дописывает
	second := &Table{Rows: [][]string{{"new", "data"}}}
	if err := second.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if !reflect.DeepEqual(got.Rows, second.Rows) {
		t.Errorf("Expected overwrite, got %v", got.Rows)
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	if _, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
