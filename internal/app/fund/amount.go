//
// Copyright 2019 Insolar Technologies GmbH
//
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
//

package fund

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseAmount reads a member-entered amount of RUP.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidAmount, "parse %q", s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// uint256Bits is the width of every numeric contract argument. The ABI
// packer wraps wider values silently.
const uint256Bits = 256

// ValidateAmount accepts positive whole token units only; the contract takes uint256.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return errors.Wrapf(ErrInvalidAmount, "got %s", d.String())
	}
	if !d.Equal(d.Truncate(0)) {
		return errors.Wrapf(ErrInvalidAmount, "fractional amount %s", d.String())
	}
	// 10^78 already exceeds 2^256.
	if d.Exponent() > 77 || d.BigInt().BitLen() > uint256Bits {
		return errors.Wrapf(ErrInvalidAmount, "amount %s does not fit uint256", d.String())
	}
	return nil
}

// AmountToBig converts a validated amount into contract units.
func AmountToBig(d decimal.Decimal) (*big.Int, error) {
	if err := ValidateAmount(d); err != nil {
		return nil, err
	}
	return d.BigInt(), nil
}

// AmountFromBig wraps a uint256 read from the contract.
func AmountFromBig(b *big.Int) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(b, 0)
}
