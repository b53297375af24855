// Copyright 2025 LexGate
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package usage

import (
	"fmt"
	"math"
)

// Model rates are quoted in USD per million tokens, matching how
// aggregator APIs publish them. Cost arithmetic stays in float64 USD;
// the Postgres sink stores integer cents.

// CostUSD computes the USD cost of one completion attempt
func CostUSD(inputPerMillion, outputPerMillion float64, inputTokens, outputTokens int) float64 {
	inputCost := inputPerMillion * float64(inputTokens) / 1_000_000
	outputCost := outputPerMillion * float64(outputTokens) / 1_000_000
	return inputCost + outputCost
}

// CentsFromUSD converts a USD amount to integer cents, rounded
func CentsFromUSD(usd float64) int64 {
	return int64(math.Round(usd * 100))
}

// FormatUSD renders a USD amount with six decimal places, enough to
// show sub-cent per-request costs
func FormatUSD(usd float64) string {
	return fmt.Sprintf("$%.6f", usd)
}
