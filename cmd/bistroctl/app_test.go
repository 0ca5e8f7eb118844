package main

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func mockConnect(t *testing.T) (connectFunc, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	return func(c *cli.Context) (*deps, error) {
		return &deps{db: db, logger: zap.NewNop()}, nil
	}, mock
}

func TestStatsCommand(t *testing.T) {
	open, mock := mockConnect(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM menu_items")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total_price), 0) FROM orders")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1400))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM orders GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).AddRow("served", 2))
	mock.ExpectClose()

	var out bytes.Buffer
	err := newApp(&out, open).Run([]string{"bistroctl", "stats"})

	require.NoError(t, err)
	assert.Equal(t, "menu items\t5\n"+
		"orders\t2\n"+
		"revenue\t1400\n"+
		"orders pending\t0\n"+
		"orders preparing\t0\n"+
		"orders ready\t0\n"+
		"orders served\t2\n", out.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown_RejectsBadSteps(t *testing.T) {
	connected := false
	open := func(c *cli.Context) (*deps, error) {
		connected = true
		return nil, errors.New("should not connect")
	}

	var out bytes.Buffer
	err := newApp(&out, open).Run([]string{"bistroctl", "migrate", "down", "--steps", "0"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps must be positive")
	assert.False(t, connected)
}

func TestConnectErrorIsReturned(t *testing.T) {
	open := func(c *cli.Context) (*deps, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	var out bytes.Buffer
	err := newApp(&out, open).Run([]string{"bistroctl", "seed"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
