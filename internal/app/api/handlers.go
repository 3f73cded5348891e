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
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/app/fund/workflow"
)

type MemberServer struct {
	registry *Registry
	log      logrus.FieldLogger
}

func NewMemberServer(registry *Registry, log logrus.FieldLogger) *MemberServer {
	return &MemberServer{registry: registry, log: log}
}

func RegisterHandlers(e *echo.Echo, s *MemberServer) {
	e.GET("/health", s.Health)

	g := e.Group("/members/:account")
	g.GET("", s.GetMember)
	g.POST("/refresh", s.Refresh)
	g.GET("/history", s.History)
	g.POST("/contribution", s.StartContribution)
	g.POST("/contribution/verify", s.SubmitContribution)
	g.DELETE("/contribution", s.CancelContribution)
	g.POST("/payout", s.StartPayout)
	g.POST("/payout/verify", s.SubmitPayout)
	g.DELETE("/payout", s.CancelPayout)
}

type ContributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type VerifyRequest struct {
	OTP    string          `json:"otp"`
	Amount decimal.Decimal `json:"amount"`
}

type StepResponse struct {
	Receipt fund.Receipt  `json:"receipt"`
	View    workflow.View `json:"view"`
}

func (s *MemberServer) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}

// GetMember returns the member view, refreshing it on first access.
func (s *MemberServer) GetMember(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if _, ok := c.Snapshot(); !ok {
		if _, err := c.Refresh(ctx.Request().Context()); err != nil {
			return s.fail(ctx, err)
		}
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (s *MemberServer) Refresh(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if _, err := c.Refresh(ctx.Request().Context()); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (s *MemberServer) History(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	limit := 20
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`limit` should be a number"))
		}
		if err := fund.CheckHistoryLimit(limit); err != nil {
			return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
		}
	}
	entries, err := c.History(ctx.Request().Context(), limit)
	if err != nil {
		return s.fail(ctx, err)
	}
	if entries == nil {
		entries = []fund.JournalEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (s *MemberServer) StartContribution(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req ContributionRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("malformed request body"))
	}
	receipt, err := c.StartContribution(detach(ctx), req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, StepResponse{Receipt: receipt, View: c.View()})
}

func (s *MemberServer) SubmitContribution(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req VerifyRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("malformed request body"))
	}
	receipt, err := c.SubmitContribution(detach(ctx), req.OTP, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, StepResponse{Receipt: receipt, View: c.View()})
}

func (s *MemberServer) CancelContribution(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := c.CancelContribution(); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (s *MemberServer) StartPayout(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	receipt, err := c.StartPayout(detach(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, StepResponse{Receipt: receipt, View: c.View()})
}

func (s *MemberServer) SubmitPayout(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req VerifyRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("malformed request body"))
	}
	receipt, err := c.SubmitPayout(detach(ctx), req.OTP)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, StepResponse{Receipt: receipt, View: c.View()})
}

func (s *MemberServer) CancelPayout(ctx echo.Context) error {
	c, err := s.controller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := c.CancelPayout(); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, c.View())
}

func (s *MemberServer) controller(ctx echo.Context) (*workflow.Controller, error) {
	return s.registry.Get(ctx.Param("account"))
}

func (s *MemberServer) fail(ctx echo.Context, err error) error {
	status := statusOf(err)
	log := s.log.WithError(err).WithField("path", ctx.Path())
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	return ctx.JSON(status, NewKindError(err))
}

// detach keeps a ledger write running when the HTTP client goes away.
// The gateway timeouts still bound it.
func detach(ctx echo.Context) context.Context {
	return context.WithoutCancel(ctx.Request().Context())
}
