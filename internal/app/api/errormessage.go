package api

import (
	"net/http"

	"github.com/rupfund/memberclient/internal/app/fund"
)

type ErrorMessage struct {
	Error     []string       `json:"error"`
	Kind      fund.ErrorKind `json:"kind,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

func NewSingleMessageError(err string) ErrorMessage {
	return ErrorMessage{Error: []string{err}}
}

func NewKindError(err error) ErrorMessage {
	return ErrorMessage{
		Error:     []string{err.Error()},
		Kind:      fund.KindOf(err),
		Retryable: fund.Retryable(err),
	}
}

var statusByKind = map[fund.ErrorKind]int{
	fund.KindNotFound:         http.StatusNotFound,
	fund.KindFlowActive:       http.StatusConflict,
	fund.KindFlowBusy:         http.StatusConflict,
	fund.KindNoCodePending:    http.StatusConflict,
	fund.KindCancelled:        http.StatusConflict,
	fund.KindInvalidAmount:    http.StatusBadRequest,
	fund.KindAmountMismatch:   http.StatusBadRequest,
	fund.KindInvalidCode:      http.StatusUnprocessableEntity,
	fund.KindCodeExpired:      http.StatusUnprocessableEntity,
	fund.KindThrottled:        http.StatusTooManyRequests,
	fund.KindRejectedByLedger: http.StatusBadGateway,
	fund.KindNetwork:          http.StatusServiceUnavailable,
}

func statusOf(err error) int {
	if status, ok := statusByKind[fund.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
