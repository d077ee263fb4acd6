// Package cache 提供基于BigCache的验证结果缓存
//
// 🗄️ **验证结果缓存 (Verification Result Cache)**
//
// 证明验证是纯函数：同一(谓词形状, 公开参数, 证明字节)的验证结果恒定，
// 缓存命中即可跳过昂贵的配对运算。据此本缓存做了两个取舍：
// - 条目按全局生命周期窗口过期，必要时用TTL侧记实现每键过期
// - 容量压力下允许任意条目随时被淘汰：缓存丢失只影响性能，不影响正确性
package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	cacheconfig "github.com/zkredit/v1/internal/config/cache"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"
)

// TTL侧记前缀：SetWithTTL在缓存中额外写一条过期时刻记录
const ttlPrefix = "_ttl_"

// Cache 基于BigCache的进程内字节缓存
type Cache struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.Mutex
	closed bool
}

var _ storageintf.ByteCache = (*Cache)(nil)

// New 创建验证结果缓存
// options为nil时使用包默认配置；logger为nil时退化为静默logger
func New(options *cacheconfig.CacheOptions, logger log.Logger) (*Cache, error) {
	if options == nil {
		options = cacheconfig.New(nil).GetOptions()
	}
	if logger == nil {
		logger = nopLogger{}
	}

	bigCacheConfig := bigcache.DefaultConfig(options.LifeWindow)
	bigCacheConfig.CleanWindow = options.CleanWindow
	bigCacheConfig.MaxEntriesInWindow = options.MaxEntriesInWindow
	bigCacheConfig.MaxEntrySize = options.MaxEntrySize
	bigCacheConfig.Shards = 1024

	c, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("创建验证缓存失败: %w", err)
	}

	return &Cache{
		cache:  c,
		logger: logger,
	}, nil
}

// Get 获取缓存值；未命中返回(nil, false, nil)
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	// 惰性过期：读取时检查TTL侧记，过期条目当作未命中并顺手清理
	expired, err := c.isExpired(key)
	if err != nil {
		return nil, false, err
	}
	if expired {
		_ = c.cache.Delete(key)
		_ = c.cache.Delete(ttlPrefix + key)
		return nil, false, nil
	}

	value, err := c.cache.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, false, nil
		}
		c.logger.Warnf("获取缓存键[%s]失败: %v", key, err)
		return nil, false, err
	}

	return value, true, nil
}

// Set 写入缓存值，条目跟随全局生命周期窗口过期
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.cache.Set(key, value); err != nil {
		c.logger.Warnf("设置缓存键[%s]失败: %v", key, err)
		return err
	}

	// 覆盖写时清除可能残留的TTL侧记
	_ = c.cache.Delete(ttlPrefix + key)
	return nil
}

// SetWithTTL 写入缓存值并附加过期时间
// BigCache本身只有全局生命周期窗口，每键过期用TTL侧记实现：
// 侧记存放过期时刻（UnixNano），读取侧惰性判断并清理
func (c *Cache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return c.Set(ctx, key, value)
	}

	if err := c.cache.Set(key, value); err != nil {
		c.logger.Warnf("设置缓存键[%s]失败: %v", key, err)
		return err
	}

	deadline := time.Now().Add(ttl).UnixNano()
	deadlineBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(deadlineBytes, uint64(deadline))

	if err := c.cache.Set(ttlPrefix+key, deadlineBytes); err != nil {
		c.logger.Warnf("设置缓存键[%s]的TTL失败: %v", key, err)
		return err
	}
	return nil
}

// Delete 删除缓存值
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.cache.Delete(key); err != nil && err != bigcache.ErrEntryNotFound {
		c.logger.Warnf("删除缓存键[%s]失败: %v", key, err)
		return err
	}

	_ = c.cache.Delete(ttlPrefix + key)
	return nil
}

// Close 关闭缓存并释放资源
func (c *Cache) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil
	}

	err := c.cache.Close()
	if err == nil {
		c.closed = true
	}
	return err
}

// isExpired 检查键的TTL侧记；没有侧记表示跟随全局生命周期窗口
func (c *Cache) isExpired(key string) (bool, error) {
	ttlBytes, err := c.cache.Get(ttlPrefix + key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return false, nil
		}
		return false, err
	}

	deadline := int64(binary.LittleEndian.Uint64(ttlBytes))
	return time.Now().UnixNano() > deadline, nil
}

// nopLogger 在logger未注入时避免nil指针崩溃
type nopLogger struct{}

func (nopLogger) Debug(string)                   {}
func (nopLogger) Debugf(string, ...interface{})  {}
func (nopLogger) Info(string)                    {}
func (nopLogger) Infof(string, ...interface{})   {}
func (nopLogger) Warn(string)                    {}
func (nopLogger) Warnf(string, ...interface{})   {}
func (nopLogger) Error(string)                   {}
func (nopLogger) Errorf(string, ...interface{})  {}
func (nopLogger) Fatal(string)                   {}
func (nopLogger) Fatalf(string, ...interface{})  {}
func (nopLogger) With(...interface{}) log.Logger { return nopLogger{} }
func (nopLogger) Sync() error                    { return nil }
func (nopLogger) GetZapLogger() *zap.Logger      { return zap.NewNop() }
