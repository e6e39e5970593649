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

import "strings"

// Year is a fiscal period's calendar-year label; the feed reports it either as
// a JSON number or a string depending on the company
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	*y = Year(strings.Trim(string(data), `"`))
	return nil
}

func (y Year) String() string {
	return string(y)
}

// FiscalPeriod identifies one reporting period. The feed returns periods
// ordered oldest to newest; the final period covers the last twelve months.
type FiscalPeriod struct {
	PeriodID     int  `json:"financialperiodid"`
	CalendarYear Year `json:"calendaryear"`
}

// RawDataPoint is a single observation from the upstream feed. Values arrive
// as strings; AccessDenied is a reserved value signalling the subscriber's
// data tier excludes the line item.
type RawDataPoint struct {
	PeriodID int    `json:"financialperiodid"`
	ItemID   int    `json:"dataitemid"`
	Value    string `json:"dataitemvalue"`
}

// Value is one cell of a statement row. Present=false is the blank
// placeholder written for absent or access-denied line items.
type Value struct {
	Num     float64
	Present bool
}

func Num(v float64) Value {
	return Value{Num: v, Present: true}
}

func Blank() Value {
	return Value{}
}

// Row holds one fiscal period's values for a single statement, keyed by the
// schema's display names. A display name missing from Values means the field
// could not be derived for this period.
type Row struct {
	Year   Year
	Values map[string]Value
}

// Get returns the named value when it is present (not blank)
func (r Row) Get(name string) (float64, bool) {
	v, ok := r.Values[name]
	if !ok || !v.Present {
		return 0, false
	}
	return v.Num, true
}

// Clone returns a deep copy of the row so later pipeline stages can annotate
// their own copy instead of mutating shared state
func (r Row) Clone() Row {
	values := make(map[string]Value, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Row{Year: r.Year, Values: values}
}

// Set holds the normalized rows for every statement kind, ordered oldest to
// newest
type Set struct {
	Income   []Row
	CashFlow []Row
	Balance  []Row
}

func (s *Set) Rows(kind Kind) []Row {
	switch kind {
	case IncomeStatement:
		return s.Income
	case CashFlowStatement:
		return s.CashFlow
	case BalanceSheetStatement:
		return s.Balance
	}
	return nil
}

func (s *Set) setRows(kind Kind, rows []Row) {
	switch kind {
	case IncomeStatement:
		s.Income = rows
	case CashFlowStatement:
		s.CashFlow = rows
	case BalanceSheetStatement:
		s.Balance = rows
	}
}
