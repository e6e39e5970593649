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
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// AnnotateYoY returns a copy of the statement set with year-over-year
// percentage changes filled in. The final row (the trailing-twelve-month
// period) is never annotated, and a zero or missing prior-year value leaves
// the field blank.
func AnnotateYoY(set *Set) *Set {
	out := &Set{}
	for _, kind := range Kinds() {
		rows := set.Rows(kind)
		annotated := make([]Row, 0, len(rows))
		for _, row := range rows {
			annotated = append(annotated, row.Clone())
		}

		for idx := 1; idx < len(annotated)-1; idx++ {
			for _, entry := range Schema[kind] {
				if entry.Kind != DerivedYoY {
					continue
				}
				cur, curOK := annotated[idx].Get(entry.Base)
				prev, prevOK := annotated[idx-1].Get(entry.Base)
				if !curOK || !prevOK || prev == 0 {
					continue
				}
				change := (cur - prev) / math.Abs(prev) * 100
				annotated[idx].Values[entry.Name] = Num(round2(change))
			}
		}
		out.setRows(kind, annotated)
	}
	return out
}

// SalesToCapitalComponents records every input to the ratio for auditability
type SalesToCapitalComponents struct {
	LatestRevenue           float64
	PreviousRevenue         float64
	LatestInvestedCapital   float64
	PreviousInvestedCapital float64
	LatestDebt              float64
	LatestEquity            float64
	LatestCash              float64
	PreviousDebt            float64
	PreviousEquity          float64
	PreviousCash            float64
}

// SalesToCapital is net revenue growth divided by net invested-capital growth
// between the two most recent retained fiscal years
type SalesToCapital struct {
	Ratio              float64
	NetRevenue         float64
	NetInvestedCapital float64
	LatestYear         Year
	PreviousYear       Year
	Components         SalesToCapitalComponents
}

// ComputeSalesToCapital derives the sales-to-capital ratio from the two most
// recent income and balance-sheet rows. It returns nil when fewer than two
// years of data exist, when any component cannot be resolved under its
// aliases, or when the net invested capital is zero.
func ComputeSalesToCapital(income []Row, balance []Row) *SalesToCapital {
	if len(income) < 2 || len(balance) < 2 {
		log.Warn().Int("IncomeRows", len(income)).Int("BalanceRows", len(balance)).
			Msg("insufficient data for sales-to-capital; need at least 2 years")
		return nil
	}

	latestIncome := income[len(income)-1]
	previousIncome := income[len(income)-2]
	latestBalance := balance[len(balance)-1]
	previousBalance := balance[len(balance)-2]

	latestRevenue, latestOK := resolveAlias(latestIncome, RevenueAliases)
	previousRevenue, previousOK := resolveAlias(previousIncome, RevenueAliases)
	if !latestOK || !previousOK {
		log.Warn().Msg("could not find revenue data for sales-to-capital")
		return nil
	}

	latestDebt, latestDebtOK := resolveAlias(latestBalance, DebtAliases)
	previousDebt, previousDebtOK := resolveAlias(previousBalance, DebtAliases)
	latestEquity, latestEquityOK := resolveAlias(latestBalance, EquityAliases)
	previousEquity, previousEquityOK := resolveAlias(previousBalance, EquityAliases)
	latestCash, latestCashOK := resolveAlias(latestBalance, CashAliases)
	previousCash, previousCashOK := resolveAlias(previousBalance, CashAliases)

	missing := make([]string, 0, 3)
	if !latestDebtOK || !previousDebtOK {
		missing = append(missing, "debt")
	}
	if !latestEquityOK || !previousEquityOK {
		missing = append(missing, "equity")
	}
	if !latestCashOK || !previousCashOK {
		missing = append(missing, "cash")
	}
	if len(missing) > 0 {
		log.Warn().Str("Components", strings.Join(missing, ", ")).
			Msg("missing components for sales-to-capital")
		return nil
	}

	latestInvestedCapital := latestDebt + latestEquity - latestCash
	previousInvestedCapital := previousDebt + previousEquity - previousCash

	netRevenue := latestRevenue - previousRevenue
	netInvestedCapital := latestInvestedCapital - previousInvestedCapital
	if netInvestedCapital == 0 {
		log.Warn().Msg("net invested capital is zero; sales-to-capital ratio undefined")
		return nil
	}

	return &SalesToCapital{
		Ratio:              round4(netRevenue / netInvestedCapital),
		NetRevenue:         round2(netRevenue),
		NetInvestedCapital: round2(netInvestedCapital),
		LatestYear:         latestIncome.Year,
		PreviousYear:       previousIncome.Year,
		Components: SalesToCapitalComponents{
			LatestRevenue:           round2(latestRevenue),
			PreviousRevenue:         round2(previousRevenue),
			LatestInvestedCapital:   round2(latestInvestedCapital),
			PreviousInvestedCapital: round2(previousInvestedCapital),
			LatestDebt:              round2(latestDebt),
			LatestEquity:            round2(latestEquity),
			LatestCash:              round2(latestCash),
			PreviousDebt:            round2(previousDebt),
			PreviousEquity:          round2(previousEquity),
			PreviousCash:            round2(previousCash),
		},
	}
}

// resolveAlias returns the first alias present in the row with a non-blank
// value; alias order decides precedence
func resolveAlias(row Row, aliases []string) (float64, bool) {
	for _, name := range aliases {
		if v, ok := row.Get(name); ok {
			return v, true
		}
	}
	return 0, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
