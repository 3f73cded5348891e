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

package ethereum

import (
	"context"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/pkg/cycle"
)

// classify maps node and contract failures onto the fund error kinds.
// Reverts surface while the node estimates gas, so the revert reason decides.
func classify(err error, method string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(fund.ErrNetwork, "%s: %v", method, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "revert") {
		switch {
		case strings.Contains(msg, "expired"):
			return errors.Wrapf(fund.ErrCodeExpired, "%s: %v", method, err)
		case strings.Contains(msg, "otp"), strings.Contains(msg, "code"):
			return errors.Wrapf(fund.ErrInvalidCode, "%s: %v", method, err)
		case strings.Contains(msg, "not a member"), strings.Contains(msg, "not registered"):
			return errors.Wrapf(fund.ErrNotFound, "%s: %v", method, err)
		}
		return errors.Wrapf(fund.ErrRejectedByLedger, "%s: %v", method, err)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return errors.Wrapf(fund.ErrRejectedByLedger, "%s: %v", method, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || cycle.IsConnectionError(err) {
		return errors.Wrapf(fund.ErrNetwork, "%s: %v", method, err)
	}
	return errors.Wrap(err, method)
}
