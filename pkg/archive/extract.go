package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ExtractResult содержит результат распаковки архива
type ExtractResult struct {
	Files      []string // Распакованные файлы (относительные пути)
	TotalBytes int64    // Суммарный размер распакованных данных
}

// ExtractTarGz распаковывает .tgz архив в destDir.
// Существующие файлы молча перезаписываются — повторная распаковка
// идемпотентна. Имена членов с path traversal отклоняются.
func ExtractTarGz(archivePath, destDir string) (*ExtractResult, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	result := &ExtractResult{}
	tr := tar.NewReader(gz)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}

		name := filepath.Clean(hdr.Name)
		if name == "." {
			continue
		}
		if filepath.IsAbs(name) || strings.HasPrefix(name, ".."+string(os.PathSeparator)) || name == ".." {
			return nil, fmt.Errorf("archive member %q escapes destination directory", hdr.Name)
		}

		target := filepath.Join(destDir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", name, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, fmt.Errorf("failed to create parent directory for %s: %w", name, err)
			}
			n, err := writeMember(target, tr)
			if err != nil {
				return nil, fmt.Errorf("failed to extract %s: %w", name, err)
			}
			result.Files = append(result.Files, name)
			result.TotalBytes += n

		default:
			// Симлинки и спецфайлы в архиве данных не ожидаются
			return nil, fmt.Errorf("archive member %q has unsupported type %d", hdr.Name, hdr.Typeflag)
		}
	}

	return result, nil
}

// writeMember записывает один член архива, перезаписывая существующий файл
func writeMember(target string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, r)
	if err != nil {
		return n, err
	}
	return n, out.Sync()
}

// VerifyMembers проверяет, что все ожидаемые файлы присутствуют в destDir.
// Пустой список expected — проверка отключена (поведение оригинала,
// который не валидировал состав архива).
func VerifyMembers(destDir string, expected []string) error {
	var missing []string
	for _, name := range expected {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("archive is missing expected members: %s", strings.Join(missing, ", "))
	}
	return nil
}
