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

package tikr

import "errors"

var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrInvalidResponse  = errors.New("invalid response from financials endpoint")
	ErrNoToken          = errors.New("no access token available")
	ErrMissingCreds     = errors.New("TIKR email and password are not configured")
	ErrTokenNotCaptured = errors.New("could not capture access token from network requests")
)
