package rediscache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory stand-in for a Redis server.
type fakeClient struct {
	hashes  map[string]map[string]string
	expiry  map[string]time.Duration
	failSet bool
	closed  bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{hashes: map[string]map[string]string{}, expiry: map[string]time.Duration{}}
}

func (f *fakeClient) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	if f.failSet {
		return redis.NewIntResult(0, errors.New("READONLY"))
	}
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		field := fmt.Sprint(values[i])
		switch v := values[i+1].(type) {
		case []byte:
			h[field] = string(v)
		default:
			h[field] = fmt.Sprint(v)
		}
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeClient) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	_, ok := f.hashes[key]
	f.expiry[key] = ttl
	return redis.NewBoolResult(ok, nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.hashes[k]; ok {
			delete(f.hashes, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeClient) Scan(_ context.Context, _ uint64, match string, _ int64) *redis.ScanCmd {
	var keys []string
	for k := range f.hashes {
		if ok, _ := path.Match(match, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestStoreSetGet(t *testing.T) {
	fc := newFakeClient()
	s := newStore(fc, "", time.Hour)

	require.NoError(t, s.Set("scores:001", []byte(`{"nuid":"001"}`), 1, 1700000000))

	value, version, stamp, err := s.Get("scores:001")
	require.NoError(t, err)
	assert.Equal(t, `{"nuid":"001"}`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000), stamp)
	assert.Equal(t, time.Hour, fc.expiry[DefaultPrefix+"scores:001"])
}

func TestStoreGetMissing(t *testing.T) {
	s := newStore(newFakeClient(), "test:", 0)

	_, _, _, err := s.Get("scores:404")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestStoreNoTTL(t *testing.T) {
	fc := newFakeClient()
	s := newStore(fc, "test:", 0)

	require.NoError(t, s.Set("k", []byte("v"), 1, 1))
	assert.Empty(t, fc.expiry)
}

func TestStoreSetError(t *testing.T) {
	fc := newFakeClient()
	fc.failSet = true
	s := newStore(fc, "test:", 0)

	err := s.Set("k", []byte("v"), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store k")
}

func TestStoreCorruptEntry(t *testing.T) {
	fc := newFakeClient()
	fc.hashes["test:bad"] = map[string]string{fieldValue: "x", fieldVersion: "one", fieldStamp: "1"}
	s := newStore(fc, "test:", 0)

	_, _, _, err := s.Get("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt version")
}

func TestStoreDeleteAndClear(t *testing.T) {
	fc := newFakeClient()
	s := newStore(fc, "test:", 0)
	fc.hashes["other:keep"] = map[string]string{fieldValue: "x"}

	require.NoError(t, s.Set("a", []byte("1"), 1, 10))
	require.NoError(t, s.Set("b", []byte("2"), 1, 20))

	require.NoError(t, s.Delete("a"))
	_, _, _, err := s.Get("a")
	assert.ErrorIs(t, err, redis.Nil)
	require.NoError(t, s.Delete("missing"))

	require.NoError(t, s.Clear())
	_, _, _, err = s.Get("b")
	assert.ErrorIs(t, err, redis.Nil)
	assert.Contains(t, fc.hashes, "other:keep")
}

func TestStoreGetStatus(t *testing.T) {
	fc := newFakeClient()
	s := newStore(fc, "test:", 0)

	status, err := s.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "redis", status.Backend)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, s.Set("a", []byte("123"), 1, 100))
	require.NoError(t, s.Set("b", []byte("45"), 1, 300))

	status, err = s.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(5), status.TableSizeBytes)
	assert.Equal(t, time.Unix(300, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(100, 0), status.OldestEntryTime)
}

func TestStoreClose(t *testing.T) {
	fc := newFakeClient()
	s := newStore(fc, "", 0)
	require.NoError(t, s.Close())
	assert.True(t, fc.closed)
}

func TestNewInvalidURL(t *testing.T) {
	_, err := New("not-a-url", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid Redis URL")
}
