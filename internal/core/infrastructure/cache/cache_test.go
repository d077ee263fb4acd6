package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheconfig "github.com/zkredit/v1/internal/config/cache"
)

func setupCache(t *testing.T) *Cache {
	options := &cacheconfig.CacheOptions{
		LifeWindow:         time.Minute,
		CleanWindow:        time.Minute,
		MaxEntriesInWindow: 1000,
		MaxEntrySize:       256,
	}

	c, err := New(options, nil)
	require.NoError(t, err)
	require.NotNil(t, c)

	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

// 测试基本的缓存读写
func TestCacheRoundTrip(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	key := "verify:threshold.v1:groth16:bn254:k12:abc123"
	value := []byte{0x01} // 验证通过的标记字节

	// 1. 未命中返回(nil, false, nil)
	got, hit, err := c.Get(ctx, key)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)

	// 2. 写入后命中
	err = c.Set(ctx, key, value)
	assert.NoError(t, err)

	got, hit, err = c.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, value, got)

	// 3. 覆盖写
	err = c.Set(ctx, key, []byte{0x00})
	assert.NoError(t, err)

	got, hit, err = c.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte{0x00}, got)
}

// 测试每键TTL过期
func TestSetWithTTL(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	key := "verify:range.v1:groth16:bn254:k10:def456"
	require.NoError(t, c.SetWithTTL(ctx, key, []byte{0x01}, 50*time.Millisecond))

	// 过期前命中
	_, hit, err := c.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, hit)

	// 过期后当作未命中
	time.Sleep(100 * time.Millisecond)

	_, hit, err = c.Get(ctx, key)
	assert.NoError(t, err)
	assert.False(t, hit)
}

// 测试TTL为零时的行为
func TestSetWithZeroTTL(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	key := "no-ttl-key"
	require.NoError(t, c.SetWithTTL(ctx, key, []byte("v"), 0))

	// 无TTL侧记，条目跟随全局生命周期窗口存活
	time.Sleep(100 * time.Millisecond)

	_, hit, err := c.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, hit)
}

// 测试覆盖写清除旧的TTL侧记
func TestOverwriteClearsTTL(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	key := "overwrite-key"
	require.NoError(t, c.SetWithTTL(ctx, key, []byte("short-lived"), 50*time.Millisecond))
	require.NoError(t, c.Set(ctx, key, []byte("long-lived")))

	// 旧TTL若未清除，这里会错误地判定过期
	time.Sleep(100 * time.Millisecond)

	got, hit, err := c.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("long-lived"), got)
}

// 测试删除
func TestCacheDelete(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	key := "delete-key"
	require.NoError(t, c.Set(ctx, key, []byte("v")))
	require.NoError(t, c.Delete(ctx, key))

	_, hit, err := c.Get(ctx, key)
	assert.NoError(t, err)
	assert.False(t, hit)

	// 删除不存在的键不报错
	assert.NoError(t, c.Delete(ctx, "missing-key"))
}

// 测试关闭幂等
func TestCacheCloseIdempotent(t *testing.T) {
	c := setupCache(t)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

// 测试nil配置走包默认值
func TestCacheDefaultOptions(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	got, hit, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("v"), got)
}
