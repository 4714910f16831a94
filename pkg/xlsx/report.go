package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/tabular"
)

// WriteTable - выгрузка консолидированной таблицы в XLSX файл
//
// Создает Excel файл с форматированной строкой заголовков (если headers
// не пустой) и строками данных. Существующий файл перезаписывается,
// повторный запуск дает тот же результат.
//
// Пример:
//
//	err := xlsx.WriteTable(table, "extracted_data.xlsx", "TollData", headers)
func WriteTable(t *tabular.Table, filePath string, sheetName string, headers []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	dataStart := 1
	width := 0

	if len(headers) > 0 {
		headerStyle, _ := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})

		for col, header := range headers {
			cell := columnName(col+1) + "1"
			f.SetCellValue(sheetName, cell, header)
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}
		dataStart = 2
		width = len(headers)
	}

	for rowIdx, row := range t.Rows {
		for col, value := range row {
			cell := fmt.Sprintf("%s%d", columnName(col+1), rowIdx+dataStart)
			f.SetCellValue(sheetName, cell, value)
		}
		if len(row) > width {
			width = len(row)
		}
	}

	for col := 0; col < width; col++ {
		name := columnName(col + 1)
		f.SetColWidth(sheetName, name, name, 18)
	}

	return f.SaveAs(filePath)
}

// ReadTable - чтение XLSX листа обратно в таблицу
//
// Если skipHeader установлен, первая строка листа отбрасывается.
func ReadTable(filePath string, sheetName string, skipHeader bool) (*tabular.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	t := tabular.NewTable()
	for _, row := range rows {
		t.Append(row)
	}
	return t, nil
}

// columnName - индекс колонки в Excel имя (1 → A, 27 → AA)
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
