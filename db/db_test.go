package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/assert/v2"
)

func TestEnsureSchema_CreatesBothTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS original_listings`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS optimized_listings`).WillReturnResult(sqlmock.NewResult(0, 0))

	err = EnsureSchema(context.Background(), conn)

	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))

	err = EnsureSchema(context.Background(), conn)

	assert.NotEqual(t, nil, err)
}

func TestConnectRedis_URLAndBareAddress(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr())
	assert.Equal(t, nil, err)
	client.Close()

	client, err = ConnectRedis(context.Background(), mr.Addr())
	assert.Equal(t, nil, err)
	client.Close()
}
