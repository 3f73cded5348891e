package postgres

import (
	"context"
	"time"

	"github.com/go-pg/pg"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/observability"
)

type JournalSchema struct {
	tableName struct{} `sql:"fund_journal"`

	ID        int64     `sql:"id,pk"`
	AttemptID string    `sql:"attempt_id,notnull"`
	Account   string    `sql:"account,notnull"`
	Action    string    `sql:"action,notnull"`
	Step      string    `sql:"step,notnull"`
	Amount    string    `sql:"amount,notnull"`
	TxID      string    `sql:"tx_id"`
	Status    uint64    `sql:"status,notnull"`
	ErrorKind string    `sql:"error_kind"`
	CreatedAt time.Time `sql:"created_at,notnull"`
}

type JournalStorage struct {
	log          logrus.FieldLogger
	errorCounter *prometheus.CounterVec
	db           *pg.DB
}

func NewJournalStorage(obs *observability.Observability, db *pg.DB) *JournalStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "memberclient_journal_storage_error_counter",
		Help: "Failed journal queries.",
	}, "query")
	return &JournalStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

func (s *JournalStorage) Record(ctx context.Context, entry fund.JournalEntry) error {
	row := journalSchema(entry)
	_, err := s.db.WithContext(ctx).Model(row).Insert()
	if err != nil {
		s.errorCounter.WithLabelValues("insert").Inc()
		return errors.Wrapf(err, "failed to insert journal entry for attempt %s", entry.AttemptID)
	}
	return nil
}

func (s *JournalStorage) ByAccount(ctx context.Context, account fund.Account, limit int) ([]fund.JournalEntry, error) {
	var rows []JournalSchema
	err := s.db.WithContext(ctx).Model(&rows).
		Where("account = ?", string(account)).
		Order("id DESC").
		Limit(limit).
		Select()
	if err != nil {
		s.errorCounter.WithLabelValues("select").Inc()
		return nil, errors.Wrapf(err, "failed to select journal of %s", account)
	}

	entries := make([]fund.JournalEntry, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			s.log.WithField("journal_id", row.ID).Warnf("malformed amount %q", row.Amount)
		}
		entries = append(entries, fund.JournalEntry{
			AttemptID: row.AttemptID,
			Account:   fund.Account(row.Account),
			Action:    fund.Action(row.Action),
			Step:      fund.Step(row.Step),
			Amount:    amount,
			TxID:      row.TxID,
			Status:    fund.TxStatus(row.Status),
			ErrorKind: fund.ErrorKind(row.ErrorKind),
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}

func journalSchema(entry fund.JournalEntry) *JournalSchema {
	return &JournalSchema{
		AttemptID: entry.AttemptID,
		Account:   string(entry.Account),
		Action:    string(entry.Action),
		Step:      string(entry.Step),
		Amount:    entry.Amount.String(),
		TxID:      entry.TxID,
		Status:    uint64(entry.Status),
		ErrorKind: string(entry.ErrorKind),
		CreatedAt: entry.CreatedAt,
	}
}
