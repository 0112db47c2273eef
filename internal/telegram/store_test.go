// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := &MemoryStore{}

	off, err := s.Offset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), off)

	require.NoError(t, s.SetOffset(ctx, 41))
	off, _ = s.Offset(ctx)
	assert.Equal(t, int64(41), off)

	n, _ := s.IncrGenerated(ctx)
	assert.Equal(t, int64(1), n)
	n, _ = s.IncrGenerated(ctx)
	assert.Equal(t, int64(2), n)
}

func TestRedisStoreOffset(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := newRedisStore(db, "test:")

	mock.ExpectGet("test:offset").RedisNil()
	off, err := s.Offset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), off, "missing key starts at zero")

	mock.ExpectSet("test:offset", int64(43), 0).SetVal("OK")
	require.NoError(t, s.SetOffset(ctx, 43))

	mock.ExpectGet("test:offset").SetVal("43")
	off, err = s.Offset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), off)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreOffsetCorrupt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := newRedisStore(db, "test:")

	mock.ExpectGet("test:offset").SetVal("not-a-number")
	_, err := s.Offset(context.Background())
	assert.ErrorContains(t, err, "parsing stored offset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreIncrGenerated(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := newRedisStore(db, "")

	mock.ExpectIncr(DefaultKeyPrefix + "generated").SetVal(7)
	n, err := s.IncrGenerated(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	mock.ExpectIncr(DefaultKeyPrefix + "generated").SetErr(errors.New("connection refused"))
	_, err = s.IncrGenerated(ctx)
	assert.ErrorContains(t, err, "redis incr failure")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorePing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := newRedisStore(db, "")

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("dial tcp: refused"))
	assert.ErrorContains(t, s.Ping(context.Background()), "redis ping failure")
	assert.NoError(t, mock.ExpectationsWereMet())
}
