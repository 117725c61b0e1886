package yield

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"agroplan.io/agroplan/internal/domain"
)

// ConfigSheetName is the worksheet written by WriteConfigSheet. ReadConfigSheet
// falls back to the first sheet when it is absent.
const ConfigSheetName = "Yield Configs"

// ConfigSheetHeader is the column layout of yield config spreadsheets.
var ConfigSheetHeader = []string{
	"Crop",
	"Soil Type",
	"Season",
	"Irrigation Type",
	"Yield (quintals/acre)",
	"Active",
}

var configColumnWidths = []float64{18, 14, 22, 16, 22, 10}

// WriteConfigSheet renders configs as an .xlsx workbook.
func WriteConfigSheet(configs []domain.CropYieldConfig) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ConfigSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range ConfigSheetHeader {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(ConfigSheetName, name, name, configColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(ConfigSheetHeader), 1)
	if err := f.SetCellStyle(ConfigSheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}

	for i, c := range configs {
		row := i + 2
		active := "No"
		if c.IsActive {
			active = "Yes"
		}
		values := []any{c.CropName, c.SoilType, c.Season, c.IrrigationType, c.YieldQuintalsPerAcre, active}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(ConfigSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(ConfigSheetName, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}

// SheetRow is one data row of an imported spreadsheet. Row is the 1-based
// sheet row. Err is set when the row cannot be used; Config is then partial.
type SheetRow struct {
	Row    int
	Config domain.CropYieldConfig
	Err    string
}

// ReadConfigSheet parses a yield config workbook. Columns are matched by
// header name, case-insensitively and in any order; Crop and the yield column
// are required. Blank rows are skipped. The Active column is ignored: imports
// always write active rows.
func ReadConfigSheet(r io.Reader) ([]SheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := ConfigSheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	cols, err := headerColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var out []SheetRow
	for i, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		out = append(out, parseRow(i+2, cells, cols))
	}
	return out, nil
}

type sheetColumns struct {
	crop, soil, season, irrigation, yield int
}

func headerColumns(header []string) (sheetColumns, error) {
	cols := sheetColumns{crop: -1, soil: -1, season: -1, irrigation: -1, yield: -1}
	for i, h := range header {
		switch key := strings.ToLower(strings.TrimSpace(h)); {
		case key == "crop" || key == "crop name":
			cols.crop = i
		case key == "soil type":
			cols.soil = i
		case key == "season":
			cols.season = i
		case key == "irrigation type":
			cols.irrigation = i
		case strings.HasPrefix(key, "yield"):
			cols.yield = i
		}
	}
	if cols.crop < 0 || cols.yield < 0 {
		return cols, fmt.Errorf("header must contain Crop and Yield columns")
	}
	return cols, nil
}

func parseRow(row int, cells []string, cols sheetColumns) SheetRow {
	cell := func(i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}
	out := SheetRow{Row: row, Config: domain.CropYieldConfig{
		CropName:       cell(cols.crop),
		SoilType:       cell(cols.soil),
		Season:         cell(cols.season),
		IrrigationType: cell(cols.irrigation),
		IsActive:       true,
	}}
	if out.Config.CropName == "" {
		out.Err = "crop is required"
		return out
	}
	raw := cell(cols.yield)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		out.Err = fmt.Sprintf("yield %q is not a number", raw)
		return out
	}
	if v < 0 {
		out.Err = "yield must not be negative"
		return out
	}
	out.Config.YieldQuintalsPerAcre = round(v, 2)
	return out
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
