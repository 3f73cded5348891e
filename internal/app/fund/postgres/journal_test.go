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

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rupfund/memberclient/configuration"
	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/app/fund/postgres"
	"github.com/rupfund/memberclient/internal/testutils"
	"github.com/rupfund/memberclient/observability"
)

func TestJournalStorage(t *testing.T) {
	requireDB(t)
	testutils.TruncateTables(t, db, []interface{}{&postgres.JournalSchema{}})

	ctx := context.Background()
	storage := postgres.NewJournalStorage(observability.Make(configuration.Default()), db)
	account := fund.Account("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	attempt := uuid.New().String()
	created := time.Date(2021, time.May, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, storage.Record(ctx, fund.JournalEntry{
		AttemptID: attempt,
		Account:   account,
		Action:    fund.ActionContribution,
		Step:      fund.StepChallenge,
		Amount:    decimal.NewFromInt(50),
		TxID:      "0xaaa",
		Status:    fund.TxSucceeded,
		CreatedAt: created,
	}))
	require.NoError(t, storage.Record(ctx, fund.JournalEntry{
		AttemptID: attempt,
		Account:   account,
		Action:    fund.ActionContribution,
		Step:      fund.StepSubmit,
		Amount:    decimal.NewFromInt(50),
		ErrorKind: fund.KindInvalidCode,
		CreatedAt: created.Add(time.Minute),
	}))
	require.NoError(t, storage.Record(ctx, fund.JournalEntry{
		AttemptID: uuid.New().String(),
		Account:   "0x0000000000000000000000000000000000000001",
		Action:    fund.ActionPayout,
		Step:      fund.StepChallenge,
		CreatedAt: created,
	}))

	entries, err := storage.ByAccount(ctx, account, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, fund.StepSubmit, entries[0].Step)
	require.Equal(t, fund.KindInvalidCode, entries[0].ErrorKind)
	require.Empty(t, entries[0].TxID)
	require.Equal(t, "0xaaa", entries[1].TxID)
	require.True(t, entries[1].Succeeded())
	require.True(t, entries[1].Amount.Equal(decimal.NewFromInt(50)))
	require.True(t, created.Equal(entries[1].CreatedAt))

	entries, err = storage.ByAccount(ctx, account, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
