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

package memory

import (
	"context"
	"sync"

	"github.com/rupfund/memberclient/internal/app/fund"
)

// Journal keeps the most recent entries in process memory. It is used
// when no database is configured.
type Journal struct {
	mu       sync.RWMutex
	capacity int
	entries  []fund.JournalEntry
}

func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Journal{capacity: capacity}
}

func (j *Journal) Record(_ context.Context, entry fund.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.entries) == j.capacity {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:len(j.entries)-1]
	}
	j.entries = append(j.entries, entry)
	return nil
}

func (j *Journal) ByAccount(_ context.Context, account fund.Account, limit int) ([]fund.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []fund.JournalEntry
	for i := len(j.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if j.entries[i].Account == account {
			out = append(out, j.entries[i])
		}
	}
	return out, nil
}
