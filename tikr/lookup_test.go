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

package tikr_test

import (
	"context"
	"errors"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/import-tikr/tikr"
)

var _ = Describe("Lookup", func() {
	var client *tikr.Client

	BeforeEach(func() {
		httpmock.Activate()
		client = tikr.NewClient(&fakeTokens{token: "token"})
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	When("the search index knows the ticker", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("POST", `=~algolianet\.com/1/indexes/tikr-feb/query`,
				httpmock.NewStringResponder(200,
					`{"hits": [{"tradingitemid": 2590360, "companyid": 24937}, {"tradingitemid": 1, "companyid": 2}]}`))
		})

		It("returns the first hit's identifiers", func() {
			company, err := client.Lookup(context.Background(), "AAPL")
			Expect(err).To(BeNil())
			Expect(company.Ticker).To(Equal("AAPL"))
			Expect(company.TradingID).To(Equal(2590360))
			Expect(company.CompanyID).To(Equal(24937))
		})

		It("serves repeat lookups from the cache", func() {
			_, err := client.Lookup(context.Background(), "MSFT")
			Expect(err).To(BeNil())

			httpmock.Reset()

			company, err := client.Lookup(context.Background(), "MSFT")
			Expect(err).To(BeNil())
			Expect(company.TradingID).To(Equal(2590360))
			Expect(httpmock.GetTotalCallCount()).To(Equal(0))
		})
	})

	When("the search returns no hits", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("POST", `=~algolianet\.com/1/indexes/tikr-feb/query`,
				httpmock.NewStringResponder(200, `{"hits": []}`))
		})

		It("reports the company as not found", func() {
			_, err := client.Lookup(context.Background(), "NODATA")
			Expect(errors.Is(err, tikr.ErrCompanyNotFound)).To(BeTrue())
		})
	})
})
