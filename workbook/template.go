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

package workbook

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/penny-vault/import-tikr/quotes"
	"github.com/penny-vault/import-tikr/statements"
)

// Valuation sheet target cells. The template's own formulas read these
// inputs, so projecting fresh data here recomputes the whole valuation.
const (
	cellOperatingMargin = "O12"
	cellTaxEffective    = "O14"
	cellSalesToCapital  = "O15"
	cellTaxMarginal     = "O16"
	cellRevenue         = "O18"
	cellCurrentPrice    = "O19"
	cellDebt            = "O23"
	cellCash            = "O25"
	cellShares          = "O28"
)

// averagingYears is how many trailing non-LTM years feed the margin and
// tax-rate averages; with fewer years available the range clamps to what
// the sheet holds
const averagingYears = 4

var (
	priceRe  = regexp.MustCompile(`\$?([\d,.]+)`)
	sharesRe = regexp.MustCompile(`([\d.]+)`)
)

// Project writes the eight valuation inputs into the valuation sheet:
// cross-sheet formulas for margins, tax rates, revenue, debt, and cash;
// literal numbers for the sales-to-capital ratio, current price, and share
// count. Each cell is projected independently, so a missing source leaves
// only its own cell at the template default.
func (wb *Workbook) Project(stc *statements.SalesToCapital, quote *quotes.Snapshot) {
	if idx, err := wb.file.GetSheetIndex(SheetValuation); err != nil || idx < 0 {
		if _, err := wb.file.NewSheet(SheetValuation); err != nil {
			log.Warn().Err(err).Msg("could not create valuation sheet; skipping projection")
			return
		}
	}

	incomeSheet := string(statements.IncomeStatement)
	balanceSheet := string(statements.BalanceSheetStatement)

	if rng, ok := wb.averageRange(incomeSheet, "% Operating Margins", averagingYears); ok {
		formula := fmt.Sprintf("AVERAGE(%s!%s)/100", incomeSheet, rng)
		wb.setFormula(cellOperatingMargin, formula)
	} else {
		log.Warn().Msg("could not find '% Operating Margins' data for operating margin calculation")
	}

	if rng, ok := wb.averageRange(incomeSheet, "Effective Tax Rate %", averagingYears); ok {
		formula := fmt.Sprintf("AVERAGE(%s!%s)/100", incomeSheet, rng)
		wb.setFormula(cellTaxEffective, formula)
		wb.setFormula(cellTaxMarginal, formula)
	} else {
		log.Warn().Msg("could not find 'Effective Tax Rate %' data for tax calculations")
	}

	if cell, ok := wb.latestYearCell(incomeSheet, "Total Revenues"); ok {
		wb.setFormula(cellRevenue, fmt.Sprintf("%s!%s", incomeSheet, cell))
	} else {
		log.Warn().Msg("could not find 'Total Revenues' data for latest year")
	}

	debtCell, debtOK := wb.ltmCell(balanceSheet, "Total Debt")
	if !debtOK {
		debtCell, debtOK = wb.ltmCell(balanceSheet, "Long-Term Debt")
	}
	if debtOK {
		wb.setFormula(cellDebt, fmt.Sprintf("%s!%s", balanceSheet, debtCell))
	} else {
		log.Warn().Msg("could not find 'Total Debt' or 'Long-Term Debt' data")
	}

	if cell, ok := wb.ltmCell(balanceSheet, "Cash And Equivalents"); ok {
		wb.setFormula(cellCash, fmt.Sprintf("%s!%s", balanceSheet, cell))
	} else {
		log.Warn().Msg("could not find 'Cash And Equivalents' data")
	}

	if stc != nil {
		wb.setLiteral(cellSalesToCapital, stc.Ratio)
	} else {
		log.Warn().Msg("sales-to-capital ratio unavailable; leaving cell at template default")
	}

	if quote != nil {
		if price, ok := parsePrice(quote.Fields["Current Price"]); ok {
			wb.setLiteral(cellCurrentPrice, price)
		} else {
			log.Warn().Msg("current price not available for projection")
		}
		if shares, ok := parseShares(quote.Fields["Shares Outstanding"]); ok {
			wb.setLiteral(cellShares, shares)
		} else {
			log.Warn().Msg("shares outstanding not available for projection")
		}
	} else {
		log.Warn().Msg("no quote snapshot; price and share cells left at template default")
	}
}

func (wb *Workbook) setFormula(cell string, formula string) {
	if err := wb.file.SetCellFormula(SheetValuation, cell, formula); err != nil {
		log.Warn().Err(err).Str("Cell", cell).Msg("failed to project formula")
		return
	}
	log.Info().Str("Cell", cell).Str("Formula", formula).Msg("projected formula")
}

func (wb *Workbook) setLiteral(cell string, value float64) {
	if err := wb.file.SetCellValue(SheetValuation, cell, value); err != nil {
		log.Warn().Err(err).Str("Cell", cell).Msg("failed to project value")
		return
	}
	log.Info().Str("Cell", cell).Float64("Value", value).Msg("projected value")
}

// sheetRows returns the sheet's populated grid, or nil when the sheet is
// missing or empty
func (wb *Workbook) sheetRows(sheet string) [][]string {
	rows, err := wb.file.GetRows(sheet)
	if err != nil {
		log.Warn().Err(err).Str("Sheet", sheet).Msg("could not read sheet")
		return nil
	}
	return rows
}

// findRow scans column A for an exact trimmed match against label and
// returns the 1-based row index plus the sheet's last populated column
func findRow(rows [][]string, label string) (rowIdx int, maxCol int, found bool) {
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	for idx, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == label {
			return idx + 1, maxCol, true
		}
	}
	return 0, 0, false
}

// averageRange returns a range like B5:E5 covering up to nYears trailing
// year columns for the labelled row, excluding the LTM column
func (wb *Workbook) averageRange(sheet string, label string, nYears int) (string, bool) {
	rows := wb.sheetRows(sheet)
	rowIdx, maxCol, found := findRow(rows, label)
	if !found {
		return "", false
	}
	startCol := maxCol - nYears
	if startCol < 2 {
		startCol = 2
	}
	endCol := maxCol - 1
	startName, err := excelize.ColumnNumberToName(startCol)
	if err != nil {
		return "", false
	}
	endName, err := excelize.ColumnNumberToName(endCol)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s%d:%s%d", startName, rowIdx, endName, rowIdx), true
}

// latestYearCell returns the labelled row's cell in the most recent non-LTM
// column
func (wb *Workbook) latestYearCell(sheet string, label string) (string, bool) {
	rows := wb.sheetRows(sheet)
	rowIdx, maxCol, found := findRow(rows, label)
	if !found {
		return "", false
	}
	latestCol := maxCol
	if maxCol > 2 {
		latestCol = maxCol - 1
	}
	colName, err := excelize.ColumnNumberToName(latestCol)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s%d", colName, rowIdx), true
}

// ltmCell returns the labelled row's cell in the last column
func (wb *Workbook) ltmCell(sheet string, label string) (string, bool) {
	rows := wb.sheetRows(sheet)
	rowIdx, maxCol, found := findRow(rows, label)
	if !found {
		return "", false
	}
	colName, err := excelize.ColumnNumberToName(maxCol)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s%d", colName, rowIdx), true
}

// parsePrice extracts a number from a formatted price like "$1,234.56"
func parsePrice(text string) (float64, bool) {
	match := priceRe.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	clean := strings.NewReplacer("$", "", ",", "").Replace(match[1])
	price, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// parseShares extracts a raw share count like "15,204,100,000" and converts
// it to millions, rounded to 2 decimals
func parseShares(text string) (float64, bool) {
	clean := strings.ReplaceAll(text, ",", "")
	match := sharesRe.FindStringSubmatch(clean)
	if match == nil {
		return 0, false
	}
	shares, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return math.Round(shares/1_000_000*100) / 100, true
}
