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
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the member's ledger address in hex form.
type Account string

func (a Account) String() string {
	return string(a)
}

// MemberRecord is one member's ledger state. It is replaced as a whole on refresh.
type MemberRecord struct {
	Name         string          `json:"name"`
	Village      string          `json:"village"`
	Lat          string          `json:"lat"`
	Lng          string          `json:"lng"`
	MobileNo     string          `json:"mobile_no"`
	GroupID      string          `json:"group_id"`
	Merit        string          `json:"merit"`
	OnboardedAt  time.Time       `json:"onboarded_at"`
	Contribution decimal.Decimal `json:"contribution"`
}

// Period keys pending compensation lookups (the contract's current month).
type Period uint64

// Snapshot is the read-only projection of ledger state shown to a member.
// Member, Pot and PendingCompensation always come from the same refresh.
type Snapshot struct {
	Member              MemberRecord    `json:"member"`
	Pot                 decimal.Decimal `json:"pot"`
	Period              Period          `json:"period"`
	PendingCompensation decimal.Decimal `json:"pending_compensation"`
	RefreshedAt         time.Time       `json:"refreshed_at"`
}

// ContributionShare renders "member / total" the way the member page does.
func (s Snapshot) ContributionShare() string {
	return fmt.Sprintf("%s / %s RUP", s.Member.Contribution.String(), s.Pot.String())
}

// FormatOnboarding renders D/M/YYYY H:M UTC; zero time renders empty.
func FormatOnboarding(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.UTC()
	return fmt.Sprintf("%d/%d/%d %d:%d UTC", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}
