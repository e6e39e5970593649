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

// Kind names a statement type; the values double as sheet names in the
// exported workbook
type Kind string

const (
	IncomeStatement       Kind = "income_statement"
	CashFlowStatement     Kind = "cashflow_statement"
	BalanceSheetStatement Kind = "balancesheet_statement"
)

// Kinds returns all statement kinds in presentation order
func Kinds() []Kind {
	return []Kind{IncomeStatement, CashFlowStatement, BalanceSheetStatement}
}

// EntryKind tags how a schema entry's value is produced
type EntryKind int

const (
	// Direct entries are looked up in the feed by data-item ID
	Direct EntryKind = iota
	// DerivedFreeCashFlow is cash from operations plus capital expenditure
	DerivedFreeCashFlow
	// DerivedFcfMargin is free cash flow as a percentage of revenue
	DerivedFcfMargin
	// DerivedYoY is the year-over-year percentage change of a base field
	DerivedYoY
)

// Entry is one line of a statement schema
type Entry struct {
	// Name is the display name used as the row label in the workbook. Some
	// upstream names carry a trailing space; they are preserved verbatim
	// because the alias lists below depend on them.
	Name string
	Kind EntryKind

	// ItemID is the opaque feed identifier; only set for Direct entries
	ItemID int

	// Base is the field a DerivedYoY entry is computed from
	Base string
}

func direct(name string, itemID int) Entry {
	return Entry{Name: name, Kind: Direct, ItemID: itemID}
}

func yoy(name string) Entry {
	return Entry{Name: name, Kind: DerivedYoY, Base: strings.TrimSuffix(name, " YoY")}
}

// Feed item IDs referenced outside the schema tables
const (
	ItemCashFromOperations = 2006
	ItemCapitalExpenditure = 2021
	ItemRevenues           = 28
)

// AccessDenied is the reserved feed value meaning the subscriber's tier does
// not include a line item; it must never be treated as a real number
const AccessDenied = "1.11"

// DeniedBudget is the maximum number of access-denied fields a row may carry
// and still be retained
const DeniedBudget = 10

// Schema maps each statement kind to its ordered display rows. Free Cash Flow
// precedes % Free Cash Flow Margins; the margin computation requires it.
var Schema = map[Kind][]Entry{
	IncomeStatement: {
		direct("Revenues", ItemRevenues),
		direct("Other Revenues", 357),
		direct("Total Revenues", ItemRevenues),
		yoy("Total Revenues YoY"),
		direct("Cost of Goods Sold", 34),
		direct("Gross Profit", 10),
		yoy("Gross Profit YoY"),
		direct("% Gross Margins", 40),
		direct("Selling General & Admin Expenses", 102),
		direct("R&D Expenses", 100),
		direct("Depreciation & Amortization", 41),
		direct("Other Operating Expenses", 260),
		direct("Operating Income", 21),
		yoy("Operating Income YoY"),
		direct("% Operating Margins", 359),
		direct("Interest Expense", 82),
		direct("Interest And Investment Income", 65),
		direct("Currency Exchange Gains (Loss)", 372),
		direct("Other Non Operating Income (Expenses)", 85),
		direct("EBT Excl. Unusual Items", 4),
		direct("Merger & Restructuring Charges", 363),
		direct("Impairment of Goodwill", 209),
		direct("Gain (Loss) On Sale Of Investments", 56),
		direct("Gain (Loss) On Sale Of Assets", 62),
		direct("Other Unusual Items", 87),
		direct("EBT Incl. Unusual Items", 139),
		direct("Income Tax Expense", 75),
		direct("Net Income", 15),
		yoy("Net Income YoY"),
		direct("% Net Income Margins", 368),
		direct("Diluted EPS", 142),
		yoy("Diluted EPS YoY"),
		direct("Weighted Average Diluted Shares Outstanding", 342),
		direct("Effective Tax Rate %", 4376),
		direct("EBITDA", 4051),
		yoy("EBITDA YoY"),
	},
	CashFlowStatement: {
		direct("Net Income", 2150),
		direct("Depreciation & Amortization", 2143),
		direct("Stock-Based Compensation", 2127),
		direct("Change In Net Working Capital", 2010),
		direct("Cash from Operations", ItemCashFromOperations),
		yoy("Cash from Operations YoY"),
		direct("Capital Expenditure", ItemCapitalExpenditure),
		direct("Sale (Purchase) of Intangible Assets", 2025),
		direct("Cash from Investing", 2005),
		direct("Total Debt Issued", 2161),
		direct("Total Debt Repaid", 2166),
		direct("Issuance of Common Stock", 2169),
		direct("Repurchase of Common Stock", 2164),
		direct("Common Dividends Paid", 2074),
		direct("Cash from Financing", 2004),
		direct("Foreign Exchange Rate Adjustments", 2144),
		direct("Net Change in Cash", 2093),
		{Name: "Free Cash Flow", Kind: DerivedFreeCashFlow},
		yoy("Free Cash Flow YoY"),
		{Name: "% Free Cash Flow Margins", Kind: DerivedFcfMargin},
	},
	BalanceSheetStatement: {
		direct("Cash And Equivalents", 1096),
		direct("Short Term Investments", 1069),
		direct("Total Cash And Short Term Investments ", 1002),
		direct("Accounts Receivable", 1021),
		direct("Inventory", 1043),
		direct("Other Current Assets", 1057),
		direct("Total Current Assets", 1008),
		direct("Net Property Plant And Equipment", 1004),
		direct("Goodwill", 1171),
		direct("Other Intangibles", 1040),
		direct("Other Long-Term Assets", 1060),
		direct("Total Assets", 1007),
		direct("Accounts Payable", 1018),
		direct("Accrued Expenses", 1016),
		direct("Short-Term Debt", 1046),
		direct("Current Portion of Long-Term Debt", 1297),
		direct("Total Current Liabilities", 1009),
		direct("Long-Term Debt", 1049),
		direct("Other Long-Term Liabilities", 1062),
		direct("Total Liabilities ", 1276),
		direct("Common Stock", 1103),
		direct("Additional Paid In Capital", 1084),
		direct("Retained Earnings", 1222),
		direct("Comprehensive Income and Other", 1028),
		direct("Total Common Equity ", 1006),
		direct("Total Equity ", 1275),
		direct("Total Liabilities And Equity", 1013),
		direct("Total Debt ", 4173),
		direct("Net Debt", 4364),
		direct("Total Shares Out. on Filing Date", 1342),
		direct("Book Value/Share", 4020),
		direct("Tangible Book Value", 4156),
	},
}

// Alias lists used by the sales-to-capital computation. Order is
// load-bearing: the first alias present in a row wins, and several upstream
// display names carry trailing spaces. Do not sort or dedupe.
var (
	RevenueAliases = []string{
		"Total Revenues", "Revenues", "Revenue", "Net Sales", "Sales",
	}

	DebtAliases = []string{
		"Total Debt ", "Total Debt", "Long-Term Debt ", "Long-Term Debt",
		"Short-Term Debt", "Current Debt", "Total Liabilities ", "Total Liabilities",
		"Current Portion of Long-Term Debt",
	}

	EquityAliases = []string{
		"Total Equity ", "Total Equity", "Total Common Equity ", "Total Common Equity",
		"Shareholders Equity", "Stockholders Equity", "Total Shareholders Equity",
		"Owners Equity", "Total Preferred Equity ", "Total Preferred Equity",
	}

	CashAliases = []string{
		"Cash And Equivalents", "Cash and Cash Equivalents", "Cash",
		"Total Cash And Short Term Investments ", "Total Cash And Short Term Investments",
		"Liquid Assets",
	}
)
