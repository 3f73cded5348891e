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

package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rupfund/memberclient/internal/app/fund"
)

// attempt is one pass through a flow. It lives from the challenge request
// until the flow is back in Idle and is never shared between flows.
type attempt struct {
	id uuid.UUID
	// fixed when the challenge is requested; for payouts the pending
	// compensation of the last snapshot, zero before the first refresh
	amount       decimal.Decimal
	codeIssuedAt time.Time
	cancel       context.CancelFunc
}

type flow struct {
	action  fund.Action
	phase   fund.Phase
	current *attempt
	lastErr error
}
