package tabular

import (
	"fmt"
)

// Consolidate объединяет таблицы column-wise: строка i результата — это
// конкатенация строк i всех входных таблиц в заданном порядке.
// Ключ выравнивания отсутствует — корректность зависит от того, что все
// экстракторы сохранили исходный порядок строк.
//
// allowRagged = false (по умолчанию): расхождение числа строк — ошибка.
// allowRagged = true: результат имеет длину самой длинной таблицы,
// отсутствующие ячейки заполняются пустыми полями.
func Consolidate(tables []*Table, allowRagged bool) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("at least one table is required")
	}

	rows := tables[0].RowCount()
	maxRows := rows
	for i, tbl := range tables {
		n := tbl.RowCount()
		if n > maxRows {
			maxRows = n
		}
		if n != rows && !allowRagged {
			return nil, fmt.Errorf(
				"row count mismatch: table 0 has %d rows, table %d has %d rows (sources are misaligned)",
				rows, i, n,
			)
		}
	}

	// Ширина каждой таблицы фиксируется по ее первой строке, чтобы
	// padding в ragged-режиме сохранял выравнивание колонок.
	widths := make([]int, len(tables))
	for i, tbl := range tables {
		if tbl.RowCount() > 0 {
			widths[i] = len(tbl.Rows[0])
		}
	}

	result := NewTable()
	for i := 0; i < maxRows; i++ {
		var row []string
		for j, tbl := range tables {
			if i < tbl.RowCount() {
				row = append(row, tbl.Rows[i]...)
				// Короткая строка дополняется до ширины таблицы
				for k := len(tbl.Rows[i]); k < widths[j]; k++ {
					row = append(row, "")
				}
			} else {
				for k := 0; k < widths[j]; k++ {
					row = append(row, "")
				}
			}
		}
		result.Append(row)
	}

	return result, nil
}
