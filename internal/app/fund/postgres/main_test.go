// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package postgres_test

import (
	"flag"
	"os"
	"testing"

	"github.com/go-pg/pg"

	"github.com/rupfund/memberclient/internal/testutils"
)

var db *pg.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	var cleaner func()
	db, _, cleaner = testutils.SetupDB("../../../../scripts/migrations")
	retCode := m.Run()
	cleaner()
	os.Exit(retCode)
}

func requireDB(t *testing.T) {
	if db == nil {
		t.Skip("postgres is started only without -short")
	}
}
