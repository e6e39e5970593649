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

package workbook_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/penny-vault/import-tikr/quotes"
	"github.com/penny-vault/import-tikr/statements"
	"github.com/penny-vault/import-tikr/workbook"
)

func row(year string, values map[string]float64) statements.Row {
	r := statements.Row{Year: statements.Year(year), Values: make(map[string]statements.Value)}
	for name, v := range values {
		r.Values[name] = statements.Num(v)
	}
	return r
}

// fixtureSet builds a 3-period statement set with enough fields for the
// valuation projection
func fixtureSet() *statements.Set {
	return &statements.Set{
		Income: []statements.Row{
			row("2021", map[string]float64{"Total Revenues": 800, "% Operating Margins": 18, "Effective Tax Rate %": 20}),
			row("2022", map[string]float64{"Total Revenues": 1000, "% Operating Margins": 20, "Effective Tax Rate %": 21}),
			row("2023", map[string]float64{"Total Revenues": 1200, "% Operating Margins": 22, "Effective Tax Rate %": 22}),
		},
		Balance: []statements.Row{
			row("2021", map[string]float64{"Cash And Equivalents": 60, "Total Debt ": 200}),
			row("2022", map[string]float64{"Cash And Equivalents": 80, "Total Debt ": 250}),
			row("2023", map[string]float64{"Cash And Equivalents": 100, "Total Debt ": 300}),
		},
	}
}

func fixtureQuote() *quotes.Snapshot {
	return &quotes.Snapshot{
		Labels: []string{"Company Name", "Current Price", "Shares Outstanding"},
		Fields: map[string]string{
			"Company Name":       "Apple Inc.",
			"Current Price":      "$150.25",
			"Shares Outstanding": "15,204,100,000",
		},
	}
}

var _ = Describe("Assemble", func() {
	var (
		set   *statements.Set
		quote *quotes.Snapshot
		wb    *workbook.Workbook
		f     *excelize.File
	)

	BeforeEach(func() {
		set = fixtureSet()
		quote = fixtureQuote()

		var err error
		wb, err = workbook.Assemble("AAPL", set, quote, nil)
		Expect(err).To(BeNil())
		f = wb.File()
	})

	It("writes the ticker and year headers with the last year relabeled LTM", func() {
		Expect(f.GetCellValue("income_statement", "A1")).To(Equal("AAPL"))
		Expect(f.GetCellValue("income_statement", "B1")).To(Equal("2021"))
		Expect(f.GetCellValue("income_statement", "C1")).To(Equal("2022"))
		Expect(f.GetCellValue("income_statement", "D1")).To(Equal("LTM"))
	})

	It("lays out metrics as rows in schema order", func() {
		Expect(f.GetCellValue("income_statement", "A2")).To(Equal("Total Revenues"))
		Expect(f.GetCellValue("income_statement", "A3")).To(Equal("% Operating Margins"))
		Expect(f.GetCellValue("income_statement", "A4")).To(Equal("Effective Tax Rate %"))

		Expect(f.GetCellValue("income_statement", "B2")).To(Equal("800"))
		Expect(f.GetCellValue("income_statement", "D2")).To(Equal("1200"))
	})

	It("skips statements with no rows", func() {
		idx, err := f.GetSheetIndex("cashflow_statement")
		Expect(err).To(BeNil())
		Expect(idx).To(Equal(-1))
	})

	It("writes the quote sheet as label/value pairs", func() {
		Expect(f.GetCellValue("yahoo_finance_realtime", "A1")).To(Equal("Yahoo Finance Real-Time Data"))
		Expect(f.GetCellValue("yahoo_finance_realtime", "A3")).To(Equal("Company Name"))
		Expect(f.GetCellValue("yahoo_finance_realtime", "B3")).To(Equal("Apple Inc."))
		Expect(f.GetCellValue("yahoo_finance_realtime", "B4")).To(Equal("$150.25"))
	})

	It("omits the sales-to-capital sheet when no ratio was computed", func() {
		idx, err := f.GetSheetIndex("sales_to_capital")
		Expect(err).To(BeNil())
		Expect(idx).To(Equal(-1))
	})

	It("adds a sales-to-capital breakdown when one exists", func() {
		stc := statements.ComputeSalesToCapital(set.Income, set.Balance)
		Expect(stc).ToNot(BeNil())

		wb, err := workbook.Assemble("AAPL", set, quote, stc)
		Expect(err).To(BeNil())
		f := wb.File()

		Expect(f.GetCellValue("sales_to_capital", "A1")).To(Equal("Sales to Capital Analysis - AAPL"))
		Expect(f.GetCellValue("sales_to_capital", "A2")).To(Equal("Sales to Capital Ratio"))
		Expect(f.GetCellValue("sales_to_capital", "B22")).To(Equal("Net Revenue / Net Invested Capital"))
	})
})

var _ = Describe("MergeTemplate", func() {
	It("copies values, formulas, and merged ranges from the template", func() {
		dir := GinkgoT().TempDir()
		templatePath := filepath.Join(dir, "template.xlsx")

		tmpl := excelize.NewFile()
		Expect(tmpl.SetCellStr("Sheet1", "A1", "Valuation")).To(Succeed())
		Expect(tmpl.SetCellValue("Sheet1", "B2", 42.5)).To(Succeed())
		Expect(tmpl.SetCellFormula("Sheet1", "C3", "B2*2")).To(Succeed())
		Expect(tmpl.MergeCell("Sheet1", "A1", "B1")).To(Succeed())
		Expect(tmpl.SaveAs(templatePath)).To(Succeed())

		wb, err := workbook.Assemble("AAPL", fixtureSet(), nil, nil)
		Expect(err).To(BeNil())
		Expect(wb.MergeTemplate(templatePath)).To(Succeed())

		f := wb.File()
		Expect(f.GetCellValue("valuation_base", "A1")).To(Equal("Valuation"))
		Expect(f.GetCellValue("valuation_base", "B2")).To(Equal("42.5"))
		Expect(f.GetCellFormula("valuation_base", "C3")).To(Equal("B2*2"))

		merged, err := f.GetMergeCells("valuation_base")
		Expect(err).To(BeNil())
		Expect(merged).To(HaveLen(1))
		Expect(merged[0].GetStartAxis()).To(Equal("A1"))
	})
})
