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
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/configuration"
	"github.com/rupfund/memberclient/internal/app/fund"
)

// Backend is what the gateway needs from a node connection; *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type contract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

type waitFunc func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

// Gateway talks to the fund contract over JSON-RPC.
type Gateway struct {
	contract    contract
	wait        waitFunc
	signers     map[common.Address]*signer
	callTimeout time.Duration
	mineTimeout time.Duration
	log         logrus.FieldLogger
}

func NewGateway(backend Backend, cfg configuration.Ledger, log logrus.FieldLogger) (*Gateway, error) {
	if !common.IsHexAddress(cfg.Contract) {
		return nil, errors.Errorf("invalid contract address %q", cfg.Contract)
	}
	parsed, err := abi.JSON(strings.NewReader(fundABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse fund ABI")
	}
	signers, err := loadSigners(cfg.Keys, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, err
	}
	address := common.HexToAddress(cfg.Contract)
	log.WithFields(logrus.Fields{
		"contract": address.Hex(),
		"signers":  len(signers),
	}).Info("fund contract bound")

	return &Gateway{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		wait: func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
			return bind.WaitMined(ctx, backend, tx)
		},
		signers:     signers,
		callTimeout: cfg.CallTimeout,
		mineTimeout: cfg.MineTimeout,
		log:         log,
	}, nil
}

// Accounts lists the addresses the gateway can sign for.
func (g *Gateway) Accounts() []fund.Account {
	out := make([]fund.Account, 0, len(g.signers))
	for addr := range g.signers {
		out = append(out, fund.Account(addr.Hex()))
	}
	return out
}

func (g *Gateway) ReadMember(ctx context.Context, account fund.Account) (fund.MemberRecord, error) {
	addr, err := address(account)
	if err != nil {
		return fund.MemberRecord{}, err
	}
	var out []interface{}
	if err := g.call(ctx, &out, methodMembers, addr); err != nil {
		return fund.MemberRecord{}, err
	}
	return decodeMember(account, out)
}

func (g *Gateway) ReadPot(ctx context.Context) (decimal.Decimal, error) {
	v, err := g.callUint(ctx, methodPot)
	if err != nil {
		return decimal.Zero, err
	}
	return fund.AmountFromBig(v), nil
}

func (g *Gateway) ReadCurrentPeriod(ctx context.Context) (fund.Period, error) {
	v, err := g.callUint(ctx, methodCurrentMonth)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Errorf("%s: period %s out of range", methodCurrentMonth, v)
	}
	return fund.Period(v.Uint64()), nil
}

func (g *Gateway) ReadPendingCompensation(ctx context.Context, period fund.Period, account fund.Account) (decimal.Decimal, error) {
	addr, err := address(account)
	if err != nil {
		return decimal.Zero, err
	}
	v, err := g.callUint(ctx, methodCompensationAmount, new(big.Int).SetUint64(uint64(period)), addr)
	if err != nil {
		return decimal.Zero, err
	}
	return fund.AmountFromBig(v), nil
}

func (g *Gateway) RequestContributionChallenge(ctx context.Context, amount decimal.Decimal, account fund.Account) (fund.Receipt, error) {
	value, err := fund.AmountToBig(amount)
	if err != nil {
		return fund.Receipt{}, err
	}
	return g.transact(ctx, account, methodPreContribute, value)
}

func (g *Gateway) SubmitContribution(ctx context.Context, otp fund.OneTimeCode, amount decimal.Decimal, account fund.Account) (fund.Receipt, error) {
	value, err := fund.AmountToBig(amount)
	if err != nil {
		return fund.Receipt{}, err
	}
	code, err := codeToBig(otp)
	if err != nil {
		return fund.Receipt{}, err
	}
	return g.transact(ctx, account, methodContribute, code, value)
}

func (g *Gateway) RequestPayoutChallenge(ctx context.Context, account fund.Account) (fund.Receipt, error) {
	return g.transact(ctx, account, methodPrePayout)
}

func (g *Gateway) SubmitPayout(ctx context.Context, otp fund.OneTimeCode, account fund.Account) (fund.Receipt, error) {
	code, err := codeToBig(otp)
	if err != nil {
		return fund.Receipt{}, err
	}
	return g.transact(ctx, account, methodPayout, code)
}

func (g *Gateway) call(ctx context.Context, out *[]interface{}, method string, params ...interface{}) error {
	ctx, cancel := withTimeout(ctx, g.callTimeout)
	defer cancel()
	return classify(g.contract.Call(&bind.CallOpts{Context: ctx}, out, method, params...), method)
}

func (g *Gateway) callUint(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := g.call(ctx, &out, method, params...); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, errors.Errorf("%s: expected one value, got %d", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("%s: unexpected %T", method, out[0])
	}
	return v, nil
}

// transact sends a write as account and waits until it is mined.
func (g *Gateway) transact(ctx context.Context, account fund.Account, method string, params ...interface{}) (fund.Receipt, error) {
	addr, err := address(account)
	if err != nil {
		return fund.Receipt{}, err
	}
	s, ok := g.signers[addr]
	if !ok {
		return fund.Receipt{}, errors.Errorf("no signing key for %s", addr.Hex())
	}

	sendCtx, cancel := withTimeout(ctx, g.callTimeout)
	tx, err := s.send(sendCtx, g.contract, method, params...)
	cancel()
	if err != nil {
		return fund.Receipt{}, classify(err, method)
	}
	receipt := fund.Receipt{TxID: tx.Hash().Hex()}
	g.log.WithFields(logrus.Fields{
		"method": method,
		"tx_id":  receipt.TxID,
	}).Debug("transaction sent")

	mineCtx, cancel := withTimeout(ctx, g.mineTimeout)
	defer cancel()
	mined, err := g.wait(mineCtx, tx)
	if err != nil {
		return receipt, classify(err, method)
	}
	receipt.Status = fund.TxStatus(mined.Status)
	return receipt, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// ParseAccount validates a hex address and returns it in checksum form,
// the spelling every journal entry and cached controller is keyed by.
func ParseAccount(raw string) (fund.Account, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return "", errors.Wrapf(fund.ErrNotFound, "invalid account %q", raw)
	}
	return fund.Account(common.HexToAddress(raw).Hex()), nil
}

func address(account fund.Account) (common.Address, error) {
	if !common.IsHexAddress(string(account)) {
		return common.Address{}, errors.Wrapf(fund.ErrNotFound, "invalid account %q", account)
	}
	return common.HexToAddress(string(account)), nil
}

func codeToBig(otp fund.OneTimeCode) (*big.Int, error) {
	v, ok := new(big.Int).SetString(otp.Digits(), 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Wrap(fund.ErrInvalidCode, "code must be numeric")
	}
	if v.BitLen() > 256 {
		return nil, errors.Wrap(fund.ErrInvalidCode, "code does not fit uint256")
	}
	return v, nil
}

func decodeMember(account fund.Account, out []interface{}) (fund.MemberRecord, error) {
	if len(out) != 9 {
		return fund.MemberRecord{}, errors.Errorf("%s: expected 9 values, got %d", methodMembers, len(out))
	}
	var (
		strs [5]string
		nums [4]*big.Int
	)
	for i := range strs {
		s, ok := out[i].(string)
		if !ok {
			return fund.MemberRecord{}, errors.Errorf("%s: field %d is %T", methodMembers, i, out[i])
		}
		strs[i] = s
	}
	for i := range nums {
		n, ok := out[len(strs)+i].(*big.Int)
		if !ok {
			return fund.MemberRecord{}, errors.Errorf("%s: field %d is %T", methodMembers, len(strs)+i, out[len(strs)+i])
		}
		nums[i] = n
	}

	onboarded := nums[2]
	// the contract returns a zero struct for unknown addresses
	if onboarded.Sign() == 0 {
		return fund.MemberRecord{}, errors.Wrapf(fund.ErrNotFound, "%s is not a member", account)
	}
	return fund.MemberRecord{
		Name:         strs[0],
		Village:      strs[1],
		Lat:          strs[2],
		Lng:          strs[3],
		MobileNo:     strs[4],
		GroupID:      nums[0].String(),
		Merit:        nums[1].String(),
		OnboardedAt:  time.Unix(onboarded.Int64(), 0).UTC(),
		Contribution: fund.AmountFromBig(nums[3]),
	}, nil
}
