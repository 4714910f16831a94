package archive

import (
	"archive/tar"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// makeTarGz собирает тестовый .tgz из набора имя → содержимое
func makeTarGz(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, "tolldata.tgz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content := files[name]
		hdr := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("Failed to write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write tar content: %v", err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}
	return path
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archivePath := makeTarGz(t, dir, map[string]string{
		"vehicle-data.csv":   "1,Mon,car\n",
		"tollplaza-data.tsv": "1\tMon\tPL-101\n",
		"payment-data.txt":   "fixed width line\n",
	})

	dest := filepath.Join(dir, "work")
	result, err := ExtractTarGz(archivePath, dest)
	if err != nil {
		t.Fatalf("ExtractTarGz failed: %v", err)
	}

	if len(result.Files) != 3 {
		t.Errorf("Expected 3 files, got %d: %v", len(result.Files), result.Files)
	}

	data, err := os.ReadFile(filepath.Join(dest, "vehicle-data.csv"))
	if err != nil {
		t.Fatalf("Extracted file missing: %v", err)
	}
	if string(data) != "1,Mon,car\n" {
		t.Errorf("Unexpected content: %q", string(data))
	}
}

func TestExtractTarGz_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "work")
	if err := os.MkdirAll(dest, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "vehicle-data.csv"), []byte("stale\n"), 0644); err != nil {
		t.Fatal(err)
	}

	archivePath := makeTarGz(t, dir, map[string]string{"vehicle-data.csv": "fresh\n"})
	if _, err := ExtractTarGz(archivePath, dest); err != nil {
		t.Fatalf("ExtractTarGz failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dest, "vehicle-data.csv"))
	if string(data) != "fresh\n" {
		t.Errorf("Expected overwrite with 'fresh', got %q", string(data))
	}
}

func TestExtractTarGz_PathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := makeTarGz(t, dir, map[string]string{"../escape.txt": "bad\n"})

	if _, err := ExtractTarGz(archivePath, filepath.Join(dir, "work")); err == nil {
		t.Error("Expected path traversal error, got nil")
	}
}

func TestExtractTarGz_NotGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.tgz")
	if err := os.WriteFile(path, []byte("not a gzip stream"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractTarGz(path, filepath.Join(dir, "work")); err == nil {
		t.Error("Expected gzip error, got nil")
	}
}

func TestVerifyMembers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vehicle-data.csv"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := VerifyMembers(dir, []string{"vehicle-data.csv"}); err != nil {
		t.Errorf("Expected present member to verify, got: %v", err)
	}
	if err := VerifyMembers(dir, []string{"vehicle-data.csv", "payment-data.txt"}); err == nil {
		t.Error("Expected missing member error, got nil")
	}
	// Пустой список — проверка отключена
	if err := VerifyMembers(dir, nil); err != nil {
		t.Errorf("Expected nil for empty expected list, got: %v", err)
	}
}
