// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workbook turns normalized statement tables into a spreadsheet:
// one sheet per statement (metrics as rows, fiscal years as columns), a
// real-time quote sheet, an optional sales-to-capital breakdown, and a
// valuation template sheet merged in with its formulas and formatting intact.
package workbook

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/penny-vault/import-tikr/quotes"
	"github.com/penny-vault/import-tikr/statements"
)

const (
	SheetQuote          = "yahoo_finance_realtime"
	SheetSalesToCapital = "sales_to_capital"
	SheetValuation      = "valuation_base"
)

// Workbook wraps the spreadsheet under assembly for one ticker
type Workbook struct {
	file   *excelize.File
	ticker string
}

// New starts an empty workbook for ticker
func New(ticker string) *Workbook {
	return &Workbook{file: excelize.NewFile(), ticker: ticker}
}

// File exposes the underlying spreadsheet
func (wb *Workbook) File() *excelize.File {
	return wb.file
}

// Assemble builds the full workbook: statement sheets, the quote sheet, and
// the sales-to-capital breakdown when one was computed. The valuation
// template is merged separately so assembly does not depend on the template
// asset being present.
func Assemble(ticker string, set *statements.Set, quote *quotes.Snapshot, stc *statements.SalesToCapital) (*Workbook, error) {
	wb := New(ticker)
	for _, kind := range statements.Kinds() {
		rows := set.Rows(kind)
		if len(rows) == 0 {
			log.Warn().Str("Statement", string(kind)).Msg("no data for statement")
			continue
		}
		if err := wb.addStatement(kind, rows); err != nil {
			return nil, err
		}
	}
	if quote != nil {
		if err := wb.addQuote(quote); err != nil {
			return nil, err
		}
	}
	if stc != nil {
		if err := wb.addSalesToCapital(stc); err != nil {
			return nil, err
		}
	}

	// drop the placeholder sheet excelize creates
	if idx, err := wb.file.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		if err := wb.file.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	wb.file.SetActiveSheet(0)
	return wb, nil
}

// addStatement writes one statement table: the ticker in A1, fiscal years
// across the header with the final column relabeled LTM, and schema rows down
// column A. Schema entries absent from every period are skipped.
func (wb *Workbook) addStatement(kind statements.Kind, rows []statements.Row) error {
	sheet := string(kind)
	if _, err := wb.file.NewSheet(sheet); err != nil {
		return err
	}

	if err := wb.file.SetCellStr(sheet, "A1", wb.ticker); err != nil {
		return err
	}
	for colIdx, row := range rows {
		header := row.Year.String()
		if colIdx == len(rows)-1 {
			header = "LTM"
		}
		cell, err := excelize.CoordinatesToCellName(colIdx+2, 1)
		if err != nil {
			return err
		}
		if err := wb.file.SetCellStr(sheet, cell, header); err != nil {
			return err
		}
	}

	sheetRow := 2
	for _, entry := range statements.Schema[kind] {
		if !anyPeriodHas(rows, entry.Name) {
			continue
		}
		labelCell, err := excelize.CoordinatesToCellName(1, sheetRow)
		if err != nil {
			return err
		}
		if err := wb.file.SetCellStr(sheet, labelCell, entry.Name); err != nil {
			return err
		}
		for colIdx, row := range rows {
			v, ok := row.Get(entry.Name)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+2, sheetRow)
			if err != nil {
				return err
			}
			if err := wb.file.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		sheetRow++
	}

	if err := wb.file.SetColWidth(sheet, "A", "A", 45); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(rows) + 1)
	if err != nil {
		return err
	}
	if err := wb.file.SetColWidth(sheet, "B", lastCol, 15); err != nil {
		return err
	}

	log.Info().Str("Statement", sheet).Int("Years", len(rows)).Msg("wrote statement sheet")
	return nil
}

func anyPeriodHas(rows []statements.Row, name string) bool {
	for _, row := range rows {
		if _, ok := row.Values[name]; ok {
			return true
		}
	}
	return false
}

// addQuote writes the real-time quote snapshot as label/value pairs
func (wb *Workbook) addQuote(quote *quotes.Snapshot) error {
	if _, err := wb.file.NewSheet(SheetQuote); err != nil {
		return err
	}
	if err := wb.file.SetCellStr(SheetQuote, "A1", "Yahoo Finance Real-Time Data"); err != nil {
		return err
	}
	if err := wb.file.SetCellStr(SheetQuote, "A2", "Metric"); err != nil {
		return err
	}
	if err := wb.file.SetCellStr(SheetQuote, "B2", "Value"); err != nil {
		return err
	}
	for idx, label := range quote.Labels {
		if err := wb.file.SetCellStr(SheetQuote, fmt.Sprintf("A%d", idx+3), label); err != nil {
			return err
		}
		if err := wb.file.SetCellStr(SheetQuote, fmt.Sprintf("B%d", idx+3), quote.Fields[label]); err != nil {
			return err
		}
	}
	if err := wb.file.SetColWidth(SheetQuote, "A", "B", 25); err != nil {
		return err
	}
	return nil
}

// addSalesToCapital presents the ratio, its input years, and every
// intermediate component with a textual description of the formula
func (wb *Workbook) addSalesToCapital(stc *statements.SalesToCapital) error {
	if _, err := wb.file.NewSheet(SheetSalesToCapital); err != nil {
		return err
	}

	c := stc.Components
	lines := [][2]any{
		{fmt.Sprintf("Sales to Capital Analysis - %s", wb.ticker), "Value"},
		{"Sales to Capital Ratio", stc.Ratio},
		{"Net Revenue (M)", stc.NetRevenue},
		{"Net Invested Capital (M)", stc.NetInvestedCapital},
		{"Latest Year", stc.LatestYear.String()},
		{"Previous Year", stc.PreviousYear.String()},
		{"", ""},
		{"CALCULATION COMPONENTS:", ""},
		{"Latest Revenue (M)", c.LatestRevenue},
		{"Previous Revenue (M)", c.PreviousRevenue},
		{"Latest Invested Capital (M)", c.LatestInvestedCapital},
		{"Previous Invested Capital (M)", c.PreviousInvestedCapital},
		{"", ""},
		{"BALANCE SHEET COMPONENTS:", ""},
		{"Latest Debt (M)", c.LatestDebt},
		{"Latest Equity (M)", c.LatestEquity},
		{"Latest Cash (M)", c.LatestCash},
		{"Previous Debt (M)", c.PreviousDebt},
		{"Previous Equity (M)", c.PreviousEquity},
		{"Previous Cash (M)", c.PreviousCash},
		{"", ""},
		{"FORMULA:", "Net Revenue / Net Invested Capital"},
		{"WHERE:", ""},
		{"Net Revenue =", "Latest Revenue - Previous Revenue"},
		{"Invested Capital =", "Debt + Equity - Cash"},
		{"Net Invested Capital =", "Latest Invested Capital - Previous Invested Capital"},
	}
	for idx, line := range lines {
		if err := wb.file.SetCellValue(SheetSalesToCapital, fmt.Sprintf("A%d", idx+1), line[0]); err != nil {
			return err
		}
		if err := wb.file.SetCellValue(SheetSalesToCapital, fmt.Sprintf("B%d", idx+1), line[1]); err != nil {
			return err
		}
	}
	if err := wb.file.SetColWidth(SheetSalesToCapital, "A", "A", 35); err != nil {
		return err
	}
	if err := wb.file.SetColWidth(SheetSalesToCapital, "B", "B", 25); err != nil {
		return err
	}
	return nil
}

// MergeTemplate copies the first sheet of the workbook at templatePath into
// this workbook as the valuation sheet, cell-for-cell: formulas, cell styles,
// column widths, row heights, and merged ranges all survive the copy.
func (wb *Workbook) MergeTemplate(templatePath string) error {
	src, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("open valuation template: %w", err)
	}
	defer src.Close()

	srcSheet := src.GetSheetName(0)
	if _, err := wb.file.NewSheet(SheetValuation); err != nil {
		return err
	}

	srcRows, err := src.GetRows(srcSheet)
	if err != nil {
		return err
	}

	maxCol := 0
	styleIDs := make(map[int]int)
	for rowIdx, srcRow := range srcRows {
		if len(srcRow) > maxCol {
			maxCol = len(srcRow)
		}
		for colIdx := range srcRow {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return err
			}
			if err := wb.copyCell(src, srcSheet, cell, styleIDs); err != nil {
				return err
			}
		}
	}

	for colIdx := 1; colIdx <= maxCol; colIdx++ {
		colName, err := excelize.ColumnNumberToName(colIdx)
		if err != nil {
			return err
		}
		width, err := src.GetColWidth(srcSheet, colName)
		if err != nil {
			continue
		}
		if err := wb.file.SetColWidth(SheetValuation, colName, colName, width); err != nil {
			return err
		}
	}
	for rowIdx := 1; rowIdx <= len(srcRows); rowIdx++ {
		height, err := src.GetRowHeight(srcSheet, rowIdx)
		if err != nil {
			continue
		}
		if err := wb.file.SetRowHeight(SheetValuation, rowIdx, height); err != nil {
			return err
		}
	}

	merged, err := src.GetMergeCells(srcSheet)
	if err != nil {
		return err
	}
	for _, mc := range merged {
		if err := wb.file.MergeCell(SheetValuation, mc.GetStartAxis(), mc.GetEndAxis()); err != nil {
			return err
		}
	}

	log.Info().Str("Template", templatePath).Msg("merged valuation template sheet")
	return nil
}

// copyCell transfers one cell: a formula when present, otherwise the value
// with numbers kept numeric. Styles are translated between files through the
// styleIDs cache.
func (wb *Workbook) copyCell(src *excelize.File, srcSheet string, cell string, styleIDs map[int]int) error {
	formula, err := src.GetCellFormula(srcSheet, cell)
	if err != nil {
		return err
	}
	if formula != "" {
		if err := wb.file.SetCellFormula(SheetValuation, cell, formula); err != nil {
			return err
		}
	} else {
		value, err := src.GetCellValue(srcSheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return err
		}
		if value != "" {
			if num, err := strconv.ParseFloat(value, 64); err == nil {
				if err := wb.file.SetCellValue(SheetValuation, cell, num); err != nil {
					return err
				}
			} else if err := wb.file.SetCellStr(SheetValuation, cell, value); err != nil {
				return err
			}
		}
	}

	srcStyle, err := src.GetCellStyle(srcSheet, cell)
	if err != nil || srcStyle == 0 {
		return nil
	}
	dstStyle, ok := styleIDs[srcStyle]
	if !ok {
		style, err := src.GetStyle(srcStyle)
		if err != nil {
			return nil
		}
		dstStyle, err = wb.file.NewStyle(style)
		if err != nil {
			return nil
		}
		styleIDs[srcStyle] = dstStyle
	}
	return wb.file.SetCellStyle(SheetValuation, cell, cell, dstStyle)
}

// SaveAs writes the workbook to disk
func (wb *Workbook) SaveAs(path string) error {
	if err := wb.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.Info().Str("File", path).Msg("saved workbook")
	return nil
}
