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

package configuration

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/internal/pkg/cycle"
)

type Configuration struct {
	Log    Log
	Ledger Ledger
	Flow   Flow
	API    API
	DB     DB
	Events Events
}

type Log struct {
	Level  string
	Format string
	// stderr, stdout or file
	OutputType string
	// file path when OutputType is file
	OutputParams string
}

type Ledger struct {
	// JSON-RPC endpoint of the chain node
	URL      string
	Contract string
	ChainID  int64
	// hex private keys of the members this client signs for
	Keys            []string
	CallTimeout     time.Duration
	// how long a sent transaction may stay unmined
	MineTimeout     time.Duration
	Attempts        cycle.Limit
	AttemptInterval time.Duration
}

type Flow struct {
	// Advisory only, the ledger decides when a code expires.
	CodeTTL          time.Duration
	ChallengeRate    float64
	ChallengeBurst   int
	ChallengeIdleTTL time.Duration
}

type API struct {
	Listen           string
	SessionCacheSize int
}

type DB struct {
	Enabled  bool
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between failed connection attempts
	AttemptInterval time.Duration
}

type Events struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func Default() *Configuration {
	return &Configuration{
		Log: Log{
			Level:      logrus.InfoLevel.String(),
			Format:     "text",
			OutputType: "stderr",
		},
		Ledger: Ledger{
			URL:             "http://127.0.0.1:8545",
			Contract:        "0x0000000000000000000000000000000000000000",
			ChainID:         1337,
			CallTimeout:     30 * time.Second,
			MineTimeout:     2 * time.Minute,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		Flow: Flow{
			CodeTTL:          18 * 10 * time.Second,
			ChallengeRate:    0.1,
			ChallengeBurst:   3,
			ChallengeIdleTTL: 10 * time.Minute,
		},
		API: API{
			Listen:           ":8080",
			SessionCacheSize: 1024,
		},
		DB: DB{
			Enabled:         false,
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        10,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		Events: Events{
			Enabled: false,
			Brokers: []string{"127.0.0.1:9092"},
			Topic:   "fund_flow_settled",
		},
	}
}
