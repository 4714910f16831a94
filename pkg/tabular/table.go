package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Table представляет headerless таблицу: упорядоченный список строк,
// каждая строка — упорядоченный список текстовых полей.
// Поля трактуются как opaque text, типизация не применяется.
type Table struct {
	Rows [][]string
}

// NewTable создает пустую таблицу
func NewTable() *Table {
	return &Table{}
}

// RowCount возвращает количество строк
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Append добавляет строку в конец таблицы
func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, row)
}

// ReadDelimited читает headerless файл с разделителем sep (',' для CSV, '\t' для TSV).
// Порядок строк сохраняется. Строки могут иметь разное число полей —
// выравнивание проверяется позже, на этапе consolidation.
func ReadDelimited(path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1 // длина строк не фиксирована
	r.LazyQuotes = true

	table := NewTable()
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		table.Append(record)
	}

	return table, nil
}

// ReadCSV читает headerless CSV файл
func ReadCSV(path string) (*Table, error) {
	return ReadDelimited(path, ',')
}

// WriteCSV записывает таблицу как headerless CSV.
// Файл перезаписывается целиком (O_TRUNC) — повторный запуск шага
// не дописывает и не дублирует данные.
func (t *Table) WriteCSV(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Sync()
}
