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
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// JournalEntry records one ledger write made by a flow.
type JournalEntry struct {
	AttemptID string          `json:"attempt_id"`
	Account   Account         `json:"account"`
	Action    Action          `json:"action"`
	Step      Step            `json:"step"`
	Amount    decimal.Decimal `json:"amount"`
	TxID      string          `json:"tx_id,omitempty"`
	Status    TxStatus        `json:"status"`
	ErrorKind ErrorKind       `json:"error_kind,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Succeeded is true when the write was accepted.
func (e JournalEntry) Succeeded() bool {
	return e.ErrorKind == ""
}

// MaxHistory bounds how many journal entries one history query returns.
const MaxHistory = 100

func CheckHistoryLimit(limit int) error {
	if limit < 1 || limit > MaxHistory {
		return errors.Errorf("limit should be in range [1, %d], got %d", MaxHistory, limit)
	}
	return nil
}

// Journal keeps the history of ledger writes. Failures never affect a flow.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
	ByAccount(ctx context.Context, account Account, limit int) ([]JournalEntry, error)
}

// FlowSettled is published when the ledger accepted a submit.
type FlowSettled struct {
	AttemptID  string          `json:"attempt_id"`
	Account    Account         `json:"account"`
	Action     Action          `json:"action"`
	Amount     decimal.Decimal `json:"amount"`
	TxID       string          `json:"tx_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EventPublisher delivers settlement events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event FlowSettled) error
}
