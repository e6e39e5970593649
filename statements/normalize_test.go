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

package statements_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/import-tikr/statements"
)

// point is shorthand for building raw feed fixtures
func point(periodID int, itemID int, value string) statements.RawDataPoint {
	return statements.RawDataPoint{PeriodID: periodID, ItemID: itemID, Value: value}
}

var _ = Describe("Normalize", func() {
	var periods []statements.FiscalPeriod

	BeforeEach(func() {
		periods = []statements.FiscalPeriod{
			{PeriodID: 101, CalendarYear: "2023"},
		}
	})

	Context("with access-denied values", func() {
		It("stores a blank for the denied field", func() {
			set := statements.Normalize(periods, []statements.RawDataPoint{
				point(101, 10, statements.AccessDenied),
				point(101, 34, "250"),
			})

			Expect(set.Income).To(HaveLen(1))
			row := set.Income[0]

			_, ok := row.Get("Gross Profit")
			Expect(ok).To(BeFalse(), "denied field must be blank")
			Expect(row.Values).To(HaveKey("Gross Profit"))

			cogs, ok := row.Get("Cost of Goods Sold")
			Expect(ok).To(BeTrue())
			Expect(cogs).To(Equal(250.0))
		})

		It("retains a row with exactly 10 denied fields", func() {
			// ten distinct balance-sheet items denied
			deniedItems := []int{1096, 1069, 1002, 1021, 1043, 1057, 1008, 1004, 1171, 1040}
			points := make([]statements.RawDataPoint, 0, len(deniedItems)+1)
			for _, itemID := range deniedItems {
				points = append(points, point(101, itemID, statements.AccessDenied))
			}
			points = append(points, point(101, 1007, "5000"))

			set := statements.Normalize(periods, points)
			Expect(set.Balance).To(HaveLen(1))

			total, ok := set.Balance[0].Get("Total Assets")
			Expect(ok).To(BeTrue())
			Expect(total).To(Equal(5000.0))
		})

		It("drops a row with 11 denied fields", func() {
			deniedItems := []int{1096, 1069, 1002, 1021, 1043, 1057, 1008, 1004, 1171, 1040, 1060}
			points := make([]statements.RawDataPoint, 0, len(deniedItems))
			for _, itemID := range deniedItems {
				points = append(points, point(101, itemID, statements.AccessDenied))
			}

			set := statements.Normalize(periods, points)
			Expect(set.Balance).To(BeEmpty())

			// other statements for the same period are unaffected
			Expect(set.Income).To(HaveLen(1))
			Expect(set.CashFlow).To(HaveLen(1))
		})
	})

	Context("with sign conventions", func() {
		It("negates income tax expense and leaves other fields alone", func() {
			set := statements.Normalize(periods, []statements.RawDataPoint{
				point(101, 75, "500000"),
				point(101, 15, "500000"),
			})

			tax, ok := set.Income[0].Get("Income Tax Expense")
			Expect(ok).To(BeTrue())
			Expect(tax).To(Equal(-500000.0))

			netIncome, ok := set.Income[0].Get("Net Income")
			Expect(ok).To(BeTrue())
			Expect(netIncome).To(Equal(500000.0))
		})
	})

	Context("with derived free cash flow", func() {
		It("nets already-negative capex against cash from operations", func() {
			set := statements.Normalize(periods, []statements.RawDataPoint{
				point(101, statements.ItemCashFromOperations, "1000"),
				point(101, statements.ItemCapitalExpenditure, "-200"),
				point(101, statements.ItemRevenues, "4000"),
			})

			fcf, ok := set.CashFlow[0].Get("Free Cash Flow")
			Expect(ok).To(BeTrue())
			Expect(fcf).To(Equal(800.0))

			margin, ok := set.CashFlow[0].Get("% Free Cash Flow Margins")
			Expect(ok).To(BeTrue())
			Expect(margin).To(Equal(20.0))
		})

		It("leaves free cash flow and its margin unset when capex is absent", func() {
			set := statements.Normalize(periods, []statements.RawDataPoint{
				point(101, statements.ItemCashFromOperations, "1000"),
				point(101, statements.ItemRevenues, "4000"),
			})

			_, ok := set.CashFlow[0].Get("Free Cash Flow")
			Expect(ok).To(BeFalse())
			_, ok = set.CashFlow[0].Get("% Free Cash Flow Margins")
			Expect(ok).To(BeFalse())
		})

		It("leaves the margin unset when revenue is zero", func() {
			set := statements.Normalize(periods, []statements.RawDataPoint{
				point(101, statements.ItemCashFromOperations, "1000"),
				point(101, statements.ItemCapitalExpenditure, "-200"),
				point(101, statements.ItemRevenues, "0"),
			})

			_, ok := set.CashFlow[0].Get("Free Cash Flow")
			Expect(ok).To(BeTrue())
			_, ok = set.CashFlow[0].Get("% Free Cash Flow Margins")
			Expect(ok).To(BeFalse())
		})
	})

	Context("with multiple periods", func() {
		It("keeps rows in feed order with their calendar years", func() {
			multiPeriods := []statements.FiscalPeriod{
				{PeriodID: 101, CalendarYear: "2021"},
				{PeriodID: 102, CalendarYear: "2022"},
				{PeriodID: 103, CalendarYear: "2023"},
			}
			set := statements.Normalize(multiPeriods, []statements.RawDataPoint{
				point(101, statements.ItemRevenues, "100"),
				point(102, statements.ItemRevenues, "150"),
				point(103, statements.ItemRevenues, "175"),
			})

			Expect(set.Income).To(HaveLen(3))
			Expect(set.Income[0].Year.String()).To(Equal("2021"))
			Expect(set.Income[2].Year.String()).To(Equal("2023"))

			rev, ok := set.Income[1].Get("Total Revenues")
			Expect(ok).To(BeTrue())
			Expect(rev).To(Equal(150.0))
		})
	})

	Context("with unparseable values", func() {
		It("stores a blank without failing", func() {
			set := statements.Normalize(periods, []statements.RawDataPoint{
				point(101, statements.ItemRevenues, "n/a"),
			})

			_, ok := set.Income[0].Get("Total Revenues")
			Expect(ok).To(BeFalse())
		})
	})
})
