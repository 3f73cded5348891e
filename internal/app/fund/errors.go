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
	"github.com/pkg/errors"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrRejectedByLedger = errors.New("rejected by ledger")
	ErrInvalidCode      = errors.New("invalid one-time code")
	ErrCodeExpired      = errors.New("one-time code expired")
	ErrNetwork          = errors.New("ledger unreachable")

	ErrInvalidAmount  = errors.New("amount must be a positive whole number")
	ErrAmountMismatch = errors.New("amount differs from the challenged amount")
	ErrFlowActive     = errors.New("flow is already active")
	ErrFlowBusy       = errors.New("flow is waiting for the ledger")
	ErrNoCodePending  = errors.New("no one-time code is pending")
	ErrFlowCancelled  = errors.New("flow was cancelled")
	ErrThrottled      = errors.New("too many challenge requests")
)

// ErrorKind is the stable name of a failure as shown to the member.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "NotFound"
	KindRejectedByLedger ErrorKind = "RejectedByLedger"
	KindInvalidCode      ErrorKind = "InvalidCode"
	KindCodeExpired      ErrorKind = "CodeExpired"
	KindNetwork          ErrorKind = "NetworkError"
	KindInvalidAmount    ErrorKind = "InvalidAmount"
	KindAmountMismatch   ErrorKind = "AmountMismatch"
	KindFlowActive       ErrorKind = "FlowActive"
	KindFlowBusy         ErrorKind = "FlowBusy"
	KindNoCodePending    ErrorKind = "NoCodePending"
	KindCancelled        ErrorKind = "Cancelled"
	KindThrottled        ErrorKind = "Throttled"
	KindInternal         ErrorKind = "Internal"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrNotFound, KindNotFound},
	{ErrInvalidCode, KindInvalidCode},
	{ErrCodeExpired, KindCodeExpired},
	{ErrRejectedByLedger, KindRejectedByLedger},
	{ErrNetwork, KindNetwork},
	{ErrInvalidAmount, KindInvalidAmount},
	{ErrAmountMismatch, KindAmountMismatch},
	{ErrFlowActive, KindFlowActive},
	{ErrFlowBusy, KindFlowBusy},
	{ErrNoCodePending, KindNoCodePending},
	{ErrFlowCancelled, KindCancelled},
	{ErrThrottled, KindThrottled},
}

// KindOf classifies err. Unknown errors are Internal, nil has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Retryable reports whether the member may repeat the same step after err.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindInvalidCode, KindRejectedByLedger, KindNetwork, KindAmountMismatch:
		return true
	}
	return false
}
