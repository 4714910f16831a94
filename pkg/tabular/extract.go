package tabular

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// SelectColumns выбирает фиксированное подмножество колонок по позициям (0-based).
// Порядок строк сохраняется, порядок колонок — как в indexes.
//
// strict = true: строка короче максимального индекса — ошибка.
// strict = false: отсутствующие колонки становятся пустыми полями
// (поведение оригинального конвейера, где короткая строка молча
// давала смещенные или отсутствующие колонки).
func SelectColumns(t *Table, indexes []int, strict bool) (*Table, error) {
	if len(indexes) == 0 {
		return nil, fmt.Errorf("at least one column index is required")
	}
	for _, idx := range indexes {
		if idx < 0 {
			return nil, fmt.Errorf("column index must be >= 0, got %d", idx)
		}
	}

	result := NewTable()
	for i, row := range t.Rows {
		selected := make([]string, len(indexes))
		for j, idx := range indexes {
			if idx >= len(row) {
				if strict {
					return nil, fmt.Errorf("row %d has %d fields, column %d requested", i, len(row), idx)
				}
				selected[j] = ""
				continue
			}
			selected[j] = row[idx]
		}
		result.Append(selected)
	}

	return result, nil
}

// CharRange задает диапазон символов фиксированной ширины, 1-based,
// обе границы включительно — семантика `cut -c FROM-TO`.
type CharRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Validate проверяет корректность диапазона
func (r CharRange) Validate() error {
	if r.From < 1 {
		return fmt.Errorf("from must be >= 1, got %d", r.From)
	}
	if r.To < r.From {
		return fmt.Errorf("to (%d) must be >= from (%d)", r.To, r.From)
	}
	return nil
}

// CutRanges вырезает диапазоны символов из одной строки.
// Строка короче диапазона дает то, что в ней есть; диапазон целиком за
// концом строки дает пустое поле. Padding-пробелы по краям поля обрезаются.
func CutRanges(line string, ranges []CharRange) []string {
	fields := make([]string, len(ranges))
	for i, r := range ranges {
		from := r.From - 1
		to := r.To
		if from >= len(line) {
			fields[i] = ""
			continue
		}
		if to > len(line) {
			to = len(line)
		}
		fields[i] = strings.TrimSpace(line[from:to])
	}
	return fields
}

// ReadFixedWidth читает fixed-width файл, вырезая заданные диапазоны символов
// из каждой строки. Пустые строки пропускаются, порядок строк сохраняется.
func ReadFixedWidth(path string, ranges []CharRange) (*Table, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("at least one character range is required")
	}
	for i, r := range ranges {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("range[%d]: %w", i, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table := NewTable()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		table.Append(CutRanges(line, ranges))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return table, nil
}
