package tabular

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UppercaseColumn переводит одну колонку (0-based) в верхний регистр.
// Остальные колонки не меняются. Операция идемпотентна: повторное
// применение дает тот же результат. Строка, у которой колонки с таким
// индексом нет, остается без изменений.
func UppercaseColumn(t *Table, column int) (*Table, error) {
	if column < 0 {
		return nil, fmt.Errorf("column index must be >= 0, got %d", column)
	}

	upper := cases.Upper(language.Und)

	result := NewTable()
	for _, row := range t.Rows {
		out := make([]string, len(row))
		copy(out, row)
		if column < len(out) {
			out[column] = upper.String(out[column])
		}
		result.Append(out)
	}

	return result, nil
}
