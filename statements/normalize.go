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

package statements

import (
	"strconv"

	"github.com/rs/zerolog/log"
)

// Normalize converts one company's raw feed response into per-statement rows,
// ordered the same as the input periods. Rows with more than DeniedBudget
// access-denied fields are dropped; everything else is best-effort and never
// fails.
func Normalize(periods []FiscalPeriod, points []RawDataPoint) *Set {
	byPeriod := make(map[int]map[int]RawDataPoint, len(periods))
	for _, dp := range points {
		items, ok := byPeriod[dp.PeriodID]
		if !ok {
			items = make(map[int]RawDataPoint)
			byPeriod[dp.PeriodID] = items
		}
		// first observation per item wins
		if _, ok := items[dp.ItemID]; !ok {
			items[dp.ItemID] = dp
		}
	}

	set := &Set{}
	for _, period := range periods {
		items := byPeriod[period.PeriodID]
		for _, kind := range Kinds() {
			row, denied := buildRow(kind, period, items)
			if denied > DeniedBudget {
				log.Warn().Str("Statement", string(kind)).Str("Year", period.CalendarYear.String()).
					Int("DeniedFields", denied).Msg("dropping row; too many access-denied fields")
				continue
			}
			set.setRows(kind, append(set.Rows(kind), row))
		}
	}
	return set
}

func buildRow(kind Kind, period FiscalPeriod, items map[int]RawDataPoint) (Row, int) {
	row := Row{Year: period.CalendarYear, Values: make(map[string]Value)}
	denied := 0

	for _, entry := range Schema[kind] {
		switch entry.Kind {
		case DerivedFreeCashFlow:
			ops, opsOK := itemValue(items, ItemCashFromOperations)
			capex, capexOK := itemValue(items, ItemCapitalExpenditure)
			if opsOK && capexOK {
				// capex is reported as a negative number so addition nets it out
				row.Values[entry.Name] = Num(ops + capex)
			}
		case DerivedFcfMargin:
			fcf, fcfOK := row.Get("Free Cash Flow")
			revenue, revOK := itemValue(items, ItemRevenues)
			if fcfOK && revOK && revenue != 0 {
				row.Values[entry.Name] = Num(fcf / revenue * 100)
			}
		case DerivedYoY:
			// filled in by the cross-period metrics pass
			row.Values[entry.Name] = Blank()
		case Direct:
			dp, ok := items[entry.ItemID]
			if !ok {
				row.Values[entry.Name] = Blank()
				continue
			}
			if dp.Value == AccessDenied {
				denied++
				row.Values[entry.Name] = Blank()
				continue
			}
			v, err := strconv.ParseFloat(dp.Value, 64)
			if err != nil {
				log.Debug().Str("Field", entry.Name).Str("Value", dp.Value).Msg("unparseable data point")
				row.Values[entry.Name] = Blank()
				continue
			}
			if entry.Name == "Income Tax Expense" {
				// upstream reports tax expense as a positive debit
				v = -v
			}
			row.Values[entry.Name] = Num(v)
		}
	}

	return row, denied
}

// itemValue looks up a feed item for the period and parses it, treating the
// access-denied placeholder as missing
func itemValue(items map[int]RawDataPoint, itemID int) (float64, bool) {
	dp, ok := items[itemID]
	if !ok || dp.Value == AccessDenied {
		return 0, false
	}
	v, err := strconv.ParseFloat(dp.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
