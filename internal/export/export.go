// Package export генерирует файлы выгрузки леджера для администраторов.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/xuri/excelize/v2"
)

// utf8BOM нужен, чтобы Excel корректно показывал кириллицу в CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const (
	sheetName  = "Заявки"
	timeLayout = "2006-01-02 15:04:05"
)

var columns = []string{"id", "created_at", "user_id", "username", "oil", "volume", "price", "currency", "contact"}

// WriteCSV сериализует заявки (по возрастанию id) в CSV с UTF-8 BOM.
func WriteCSV(orders []domain.Order) ([]byte, error) {
	const op = "export.WriteCSV"

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, e.Wrap(op, err)
	}

	for _, o := range orders {
		if err := w.Write(orderRow(&o)); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return buf.Bytes(), nil
}

// WriteXLSX сериализует заявки в книгу Excel с одним листом и авто-шириной колонок.
func WriteXLSX(orders []domain.Order) ([]byte, error) {
	const op = "export.WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, e.Wrap(op, err)
	}

	widths := make([]int, len(columns))
	for col, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return nil, e.Wrap(op, err)
		}
		widths[col] = len([]rune(name))
	}

	for row, o := range orders {
		for col, val := range orderRow(&o) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, e.Wrap(op, err)
			}
			if n := len([]rune(val)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, float64(width)+2); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return buf.Bytes(), nil
}

func orderRow(o *domain.Order) []string {
	return []string{
		strconv.FormatInt(o.ID, 10),
		o.CreatedAt.Format(timeLayout),
		strconv.FormatInt(o.UserID, 10),
		o.Username,
		o.Oil,
		o.Volume,
		o.Price,
		o.Currency,
		o.Contact,
	}
}
