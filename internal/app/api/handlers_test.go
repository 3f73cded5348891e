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

package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/app/fund/memory"
	"github.com/rupfund/memberclient/internal/app/fund/workflow"
)

const member = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type object = map[string]interface{}

func newTestServer(t *testing.T) *echo.Echo {
	log := logrus.New()
	log.SetOutput(ioutil.Discard)
	ledger := newLedgerStub(member)
	journal := memory.NewJournal(100)

	registry, err := NewRegistry(8, func(account fund.Account) *workflow.Controller {
		return workflow.NewController(account, workflow.Deps{
			Gateway: ledger,
			Journal: journal,
			Log:     log,
		})
	}, log)
	require.NoError(t, err)
	return NewServer(NewMemberServer(registry, log), prometheus.NewRegistry(), log)
}

func call(t *testing.T, e *echo.Echo, method, path, body string) (int, object) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := object{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var raw interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		if m, ok := raw.(object); ok {
			out = m
		} else {
			out["items"] = raw
		}
	}
	return rec.Code, out
}

func field(t *testing.T, v interface{}, path ...string) interface{} {
	for _, p := range path {
		m, ok := v.(object)
		require.True(t, ok, "no object at %s", p)
		v = m[p]
	}
	return v
}

func TestMemberServer_GetMember(t *testing.T) {
	e := newTestServer(t)

	code, body := call(t, e, http.MethodGet, "/members/"+member, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Asha", field(t, body, "snapshot", "member", "name"))
	require.Equal(t, "100", field(t, body, "snapshot", "member", "contribution"))
	require.Equal(t, "1000", field(t, body, "snapshot", "pot"))
	require.Equal(t, "Idle", field(t, body, "contribution", "phase"))

	t.Run("lowercase_address", func(t *testing.T) {
		code, body := call(t, e, http.MethodGet, "/members/"+strings.ToLower(member), "")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, member, body["account"])
	})

	t.Run("not_a_member", func(t *testing.T) {
		code, body := call(t, e, http.MethodGet, "/members/0x0000000000000000000000000000000000000001", "")
		require.Equal(t, http.StatusNotFound, code)
		require.Equal(t, "NotFound", body["kind"])
	})

	t.Run("bad_address", func(t *testing.T) {
		code, _ := call(t, e, http.MethodGet, "/members/alice", "")
		require.Equal(t, http.StatusNotFound, code)
	})
}

func TestMemberServer_Contribution(t *testing.T) {
	e := newTestServer(t)
	base := "/members/" + member

	code, body := call(t, e, http.MethodPost, base+"/contribution/verify", `{"otp":"1234","amount":"50"}`)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "NoCodePending", body["kind"])

	code, body = call(t, e, http.MethodPost, base+"/contribution", `{"amount":"-1"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "InvalidAmount", body["kind"])

	code, body = call(t, e, http.MethodPost, base+"/contribution", `{"amount":"50"}`)
	require.Equal(t, http.StatusAccepted, code)
	require.Equal(t, "AwaitingCode", field(t, body, "view", "contribution", "phase"))
	require.Equal(t, "50", field(t, body, "view", "contribution", "amount"))
	require.NotEmpty(t, field(t, body, "receipt", "tx_id"))

	code, body = call(t, e, http.MethodPost, base+"/contribution", `{"amount":"70"}`)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "FlowActive", body["kind"])

	code, body = call(t, e, http.MethodPost, base+"/contribution/verify", `{"otp":"1234","amount":"60"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "AmountMismatch", body["kind"])

	code, body = call(t, e, http.MethodPost, base+"/contribution/verify", `{"otp":"0000","amount":"50"}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, "InvalidCode", body["kind"])
	require.Equal(t, true, body["retryable"])

	code, body = call(t, e, http.MethodPost, base+"/contribution/verify", `{"otp":"1234","amount":50}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Idle", field(t, body, "view", "contribution", "phase"))
	require.Equal(t, "150", field(t, body, "view", "snapshot", "member", "contribution"))
	require.Equal(t, "1050", field(t, body, "view", "snapshot", "pot"))

	code, body = call(t, e, http.MethodGet, base+"/history?limit=10", "")
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]interface{})
	require.Len(t, items, 3)
	require.Equal(t, "submit", field(t, items[0], "step"))

	code, _ = call(t, e, http.MethodGet, base+"/history?limit=1000", "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestMemberServer_Payout(t *testing.T) {
	e := newTestServer(t)
	base := "/members/" + member

	code, body := call(t, e, http.MethodPost, base+"/payout", "")
	require.Equal(t, http.StatusAccepted, code)
	require.Equal(t, "AwaitingCode", field(t, body, "view", "payout", "phase"))
	require.Nil(t, field(t, body, "view", "payout", "amount"))

	code, body = call(t, e, http.MethodDelete, base+"/payout", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Idle", field(t, body, "payout", "phase"))

	code, _ = call(t, e, http.MethodPost, base+"/payout/verify", `{"otp":"9876"}`)
	require.Equal(t, http.StatusConflict, code)

	code, _ = call(t, e, http.MethodPost, base+"/payout", "")
	require.Equal(t, http.StatusAccepted, code)
	code, body = call(t, e, http.MethodPost, base+"/payout/verify", `{"otp":"9876"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "0", field(t, body, "view", "snapshot", "pending_compensation"))
	require.Equal(t, "975", field(t, body, "view", "snapshot", "pot"))
}

func TestMemberServer_Refresh(t *testing.T) {
	e := newTestServer(t)

	code, body := call(t, e, http.MethodPost, "/members/"+member+"/refresh", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "25", field(t, body, "snapshot", "pending_compensation"))
	require.EqualValues(t, 7, field(t, body, "snapshot", "period"))
}

func TestMemberServer_Service(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusTooManyRequests, statusOf(fund.ErrThrottled))
	require.Equal(t, http.StatusBadGateway, statusOf(fund.ErrRejectedByLedger))
	require.Equal(t, http.StatusServiceUnavailable, statusOf(fund.ErrNetwork))
	require.Equal(t, http.StatusInternalServerError, statusOf(http.ErrServerClosed))
}
