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

package common_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/import-tikr/common"
)

var _ = Describe("Cache", func() {
	BeforeEach(func() {
		common.SetupCache()
	})

	It("derives a stable key from its parts", func() {
		key1 := common.CacheKey("tikr-lookup", "AAPL")
		key2 := common.CacheKey("tikr-lookup", "AAPL")
		key3 := common.CacheKey("tikr-lookup", "MSFT")

		Expect(key1).To(Equal(key2))
		Expect(key1).ToNot(Equal(key3))
		Expect(key1).To(HaveLen(32))
	})

	It("round trips values through compression", func() {
		key := common.CacheKey("test", "round-trip")
		payload := []byte(`{"tradingitemid": 2590360, "companyid": 24937}`)

		Expect(common.CacheSet(key, payload)).To(Succeed())

		got, err := common.CacheGet(key)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(payload))
	})

	It("returns empty for a missing key", func() {
		got, err := common.CacheGet(common.CacheKey("test", "missing"))
		Expect(err).To(BeNil())
		Expect(got).To(BeEmpty())
	})
})

var _ = Describe("Compress", func() {
	It("inverts through Decompress", func() {
		in := []byte("the quick brown fox jumps over the lazy dog, twice over, the quick brown fox")

		compressed, err := common.Compress(in)
		Expect(err).To(BeNil())

		out, err := common.Decompress(compressed)
		Expect(err).To(BeNil())
		Expect(out).To(Equal(in))
	})
})
