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

func incomeRow(year string, values map[string]float64) statements.Row {
	row := statements.Row{Year: statements.Year(year), Values: make(map[string]statements.Value)}
	for name, v := range values {
		row.Values[name] = statements.Num(v)
	}
	return row
}

var _ = Describe("AnnotateYoY", func() {
	It("computes year-over-year change for interior rows only", func() {
		set := &statements.Set{
			Income: []statements.Row{
				incomeRow("2021", map[string]float64{"Total Revenues": 100}),
				incomeRow("2022", map[string]float64{"Total Revenues": 150}),
				incomeRow("2023", map[string]float64{"Total Revenues": 300}),
			},
		}

		annotated := statements.AnnotateYoY(set)

		change, ok := annotated.Income[1].Get("Total Revenues YoY")
		Expect(ok).To(BeTrue())
		Expect(change).To(Equal(50.0))

		// the trailing-twelve-month row is never annotated
		_, ok = annotated.Income[2].Get("Total Revenues YoY")
		Expect(ok).To(BeFalse())
		// neither is the first row; it has no prior year
		_, ok = annotated.Income[0].Get("Total Revenues YoY")
		Expect(ok).To(BeFalse())
	})

	It("uses the absolute value of the prior year in the denominator", func() {
		set := &statements.Set{
			Income: []statements.Row{
				incomeRow("2021", map[string]float64{"Net Income": 100}),
				incomeRow("2022", map[string]float64{"Net Income": -50}),
				incomeRow("2023", map[string]float64{"Net Income": 25}),
			},
		}

		annotated := statements.AnnotateYoY(set)

		change, ok := annotated.Income[1].Get("Net Income YoY")
		Expect(ok).To(BeTrue())
		Expect(change).To(Equal(-150.0))
	})

	It("leaves the field unset when the prior year is zero", func() {
		set := &statements.Set{
			Income: []statements.Row{
				incomeRow("2021", map[string]float64{"Total Revenues": 0}),
				incomeRow("2022", map[string]float64{"Total Revenues": 50}),
				incomeRow("2023", map[string]float64{"Total Revenues": 75}),
			},
		}

		annotated := statements.AnnotateYoY(set)

		_, ok := annotated.Income[1].Get("Total Revenues YoY")
		Expect(ok).To(BeFalse())
	})

	It("does not mutate the input rows", func() {
		set := &statements.Set{
			Income: []statements.Row{
				incomeRow("2021", map[string]float64{"Total Revenues": 100}),
				incomeRow("2022", map[string]float64{"Total Revenues": 150}),
				incomeRow("2023", map[string]float64{"Total Revenues": 300}),
			},
		}

		_ = statements.AnnotateYoY(set)

		_, ok := set.Income[1].Get("Total Revenues YoY")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ComputeSalesToCapital", func() {
	var income, balance []statements.Row

	BeforeEach(func() {
		income = []statements.Row{
			incomeRow("2022", map[string]float64{"Total Revenues": 1000}),
			incomeRow("2023", map[string]float64{"Total Revenues": 1200}),
		}
		balance = []statements.Row{
			incomeRow("2022", map[string]float64{
				"Total Debt ":          250,
				"Total Equity ":        650,
				"Cash And Equivalents": 80,
			}),
			incomeRow("2023", map[string]float64{
				"Total Debt ":          300,
				"Total Equity ":        700,
				"Cash And Equivalents": 100,
			}),
		}
	})

	It("computes the ratio from net revenue and net invested capital", func() {
		stc := statements.ComputeSalesToCapital(income, balance)
		Expect(stc).ToNot(BeNil())

		Expect(stc.NetRevenue).To(Equal(200.0))
		Expect(stc.NetInvestedCapital).To(Equal(80.0))
		Expect(stc.Ratio).To(Equal(2.5))
		Expect(stc.LatestYear.String()).To(Equal("2023"))
		Expect(stc.PreviousYear.String()).To(Equal("2022"))

		Expect(stc.Components.LatestInvestedCapital).To(Equal(900.0))
		Expect(stc.Components.PreviousInvestedCapital).To(Equal(820.0))
	})

	It("returns nil when the net invested capital is zero", func() {
		// latest invested capital now equals the previous year's 820
		balance[1].Values["Cash And Equivalents"] = statements.Num(180)

		Expect(statements.ComputeSalesToCapital(income, balance)).To(BeNil())
	})

	It("returns nil with fewer than two years of data", func() {
		Expect(statements.ComputeSalesToCapital(income[:1], balance)).To(BeNil())
		Expect(statements.ComputeSalesToCapital(income, balance[:1])).To(BeNil())
	})

	It("returns nil when a component cannot be resolved", func() {
		delete(balance[1].Values, "Total Equity ")

		Expect(statements.ComputeSalesToCapital(income, balance)).To(BeNil())
	})

	It("prefers the first alias in the list", func() {
		balance[1].Values["Long-Term Debt"] = statements.Num(9999)

		stc := statements.ComputeSalesToCapital(income, balance)
		Expect(stc).ToNot(BeNil())
		Expect(stc.Components.LatestDebt).To(Equal(300.0))
	})

	It("falls back through the alias list when the first is absent", func() {
		delete(balance[0].Values, "Total Debt ")
		delete(balance[1].Values, "Total Debt ")
		balance[0].Values["Long-Term Debt"] = statements.Num(250)
		balance[1].Values["Long-Term Debt"] = statements.Num(300)

		stc := statements.ComputeSalesToCapital(income, balance)
		Expect(stc).ToNot(BeNil())
		Expect(stc.Ratio).To(Equal(2.5))
	})
})
