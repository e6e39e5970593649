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
	"net/http"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/import-tikr/tikr"
)

// fakeTokens counts refreshes so tests can assert the retry cycle
type fakeTokens struct {
	token     string
	refreshed int
}

func (f *fakeTokens) Token(_ context.Context) (string, error) {
	return f.token, nil
}

func (f *fakeTokens) Refresh(_ context.Context) (string, error) {
	f.refreshed++
	f.token = "fresh-token"
	return f.token, nil
}

const feedBody = `{
	"dates": [
		{"financialperiodid": 101, "calendaryear": 2022},
		{"financialperiodid": 102, "calendaryear": "2023"}
	],
	"data": [
		{"financialperiodid": 101, "dataitemid": 28, "dataitemvalue": "1000"},
		{"financialperiodid": 102, "dataitemid": 28, "dataitemvalue": "1200"}
	]
}`

var _ = Describe("Financials", func() {
	var (
		tokens *fakeTokens
		client *tikr.Client
	)

	BeforeEach(func() {
		httpmock.Activate()
		tokens = &fakeTokens{token: "stale-token"}
		client = tikr.NewClient(tokens)
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	When("the feed responds with valid data", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("POST", `=~execute-api\.us-east-1\.amazonaws\.com/prod/fin`,
				httpmock.NewStringResponder(200, feedBody))
		})

		It("parses the periods and data points", func() {
			feed, err := client.Financials(context.Background(), 123, 456)
			Expect(err).To(BeNil())
			Expect(feed.Dates).To(HaveLen(2))
			Expect(feed.Dates[0].CalendarYear.String()).To(Equal("2022"))
			Expect(feed.Dates[1].CalendarYear.String()).To(Equal("2023"))
			Expect(feed.Data).To(HaveLen(2))
			Expect(tokens.refreshed).To(Equal(0))
		})
	})

	When("the token has expired", func() {
		BeforeEach(func() {
			calls := 0
			httpmock.RegisterResponder("POST", `=~execute-api\.us-east-1\.amazonaws\.com/prod/fin`,
				func(req *http.Request) (*http.Response, error) {
					calls++
					if calls == 1 {
						return httpmock.NewStringResponse(200, `{"message": "unauthorized"}`), nil
					}
					return httpmock.NewStringResponse(200, feedBody), nil
				})
		})

		It("refreshes the token once and retries", func() {
			feed, err := client.Financials(context.Background(), 123, 456)
			Expect(err).To(BeNil())
			Expect(feed.Dates).To(HaveLen(2))
			Expect(tokens.refreshed).To(Equal(1))
		})
	})

	When("the feed keeps failing", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("POST", `=~execute-api\.us-east-1\.amazonaws\.com/prod/fin`,
				httpmock.NewStringResponder(500, "internal server error"))
		})

		It("gives up after one refresh", func() {
			_, err := client.Financials(context.Background(), 123, 456)
			Expect(errors.Is(err, tikr.ErrInvalidResponse)).To(BeTrue())
			Expect(tokens.refreshed).To(Equal(1))
		})
	})
})
