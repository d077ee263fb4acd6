package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkredit/v1/pkg/types"
)

// TestGetEnvironment 测试 GetEnvironment() 方法
func TestGetEnvironment(t *testing.T) {
	t.Run("显式配置 dev", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("dev"),
		}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "dev", env)
	})

	t.Run("显式配置 test", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("test"),
		}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "test", env)
	})

	t.Run("未配置时默认为 prod（安全优先）", func(t *testing.T) {
		cfg := &types.AppConfig{}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "prod", env, "未配置时应默认为 prod（安全优先）")
	})

	t.Run("无效值默认为 prod", func(t *testing.T) {
		cfg := &types.AppConfig{
			Environment: types.StringPtr("invalid"),
		}
		provider := NewProvider(cfg)
		env := provider.GetEnvironment()
		assert.Equal(t, "prod", env, "无效值时应默认为 prod（安全优先）")
	})
}

// TestGetProofSystem 测试 GetProofSystem() 方法
func TestGetProofSystem(t *testing.T) {
	t.Run("未配置时使用默认方案", func(t *testing.T) {
		cfg := &types.AppConfig{}
		provider := NewProvider(cfg)
		opts := provider.GetProofSystem()
		require.NotNil(t, opts)
		assert.Equal(t, "groth16", opts.Scheme)
		assert.Equal(t, "bn254", opts.Curve)
		assert.Equal(t, 0, opts.RowExponent, "未配置时k应为0（按设备档位自动选择）")
		assert.True(t, opts.EnableVerifyCache)
	})

	t.Run("用户配置覆盖默认值", func(t *testing.T) {
		cfg := &types.AppConfig{
			ProofSystem: &types.UserProofSystemConfig{
				Scheme:            types.StringPtr("plonk"),
				RowExponent:       types.IntPtr(12),
				EnableVerifyCache: types.BoolPtr(false),
			},
		}
		provider := NewProvider(cfg)
		opts := provider.GetProofSystem()
		require.NotNil(t, opts)
		assert.Equal(t, "plonk", opts.Scheme)
		assert.Equal(t, "bn254", opts.Curve, "未覆盖的字段保留默认值")
		assert.Equal(t, 12, opts.RowExponent)
		assert.False(t, opts.EnableVerifyCache)
	})
}

// TestGetKeystore 测试 GetKeystore() 方法
func TestGetKeystore(t *testing.T) {
	t.Run("未配置时使用默认路径", func(t *testing.T) {
		cfg := &types.AppConfig{}
		provider := NewProvider(cfg)
		opts := provider.GetKeystore()
		require.NotNil(t, opts)
		assert.True(t, opts.Enabled)
		assert.Equal(t, "./data/keystore", opts.Path)
		assert.True(t, opts.Compress)
	})

	t.Run("配置数据根目录时派生keystore路径", func(t *testing.T) {
		cfg := &types.AppConfig{
			DataDir: types.StringPtr("/var/lib/zkredit"),
		}
		provider := NewProvider(cfg)
		opts := provider.GetKeystore()
		require.NotNil(t, opts)
		assert.Equal(t, filepath.Join("/var/lib/zkredit", "keystore"), opts.Path)
	})

	t.Run("显式路径优先于数据根目录派生", func(t *testing.T) {
		cfg := &types.AppConfig{
			DataDir: types.StringPtr("/var/lib/zkredit"),
			Keystore: &types.UserKeystoreConfig{
				Path: types.StringPtr("/mnt/fast/keys"),
			},
		}
		provider := NewProvider(cfg)
		opts := provider.GetKeystore()
		require.NotNil(t, opts)
		assert.Equal(t, "/mnt/fast/keys", opts.Path)
	})

	t.Run("内存模式可显式开启", func(t *testing.T) {
		cfg := &types.AppConfig{
			Keystore: &types.UserKeystoreConfig{
				InMemory: types.BoolPtr(true),
			},
		}
		provider := NewProvider(cfg)
		opts := provider.GetKeystore()
		assert.True(t, opts.InMemory)
	})
}

// TestGetCache 测试 GetCache() 方法
func TestGetCache(t *testing.T) {
	t.Run("未配置时使用默认窗口", func(t *testing.T) {
		cfg := &types.AppConfig{}
		provider := NewProvider(cfg)
		opts := provider.GetCache()
		require.NotNil(t, opts)
		assert.Equal(t, 10*time.Minute, opts.LifeWindow)
		assert.Equal(t, 5*time.Minute, opts.CleanWindow)
	})

	t.Run("时长字符串正确解析", func(t *testing.T) {
		cfg := &types.AppConfig{
			Cache: &types.UserCacheConfig{
				LifeWindow: types.StringPtr("30m"),
			},
		}
		provider := NewProvider(cfg)
		opts := provider.GetCache()
		assert.Equal(t, 30*time.Minute, opts.LifeWindow)
	})

	t.Run("非法时长字符串保留默认值", func(t *testing.T) {
		cfg := &types.AppConfig{
			Cache: &types.UserCacheConfig{
				LifeWindow: types.StringPtr("not-a-duration"),
			},
		}
		provider := NewProvider(cfg)
		opts := provider.GetCache()
		assert.Equal(t, 10*time.Minute, opts.LifeWindow, "解析失败时应保留默认值")
	})
}

// TestGetAPI 测试 GetAPI() 方法
func TestGetAPI(t *testing.T) {
	t.Run("默认只监听本机", func(t *testing.T) {
		cfg := &types.AppConfig{}
		provider := NewProvider(cfg)
		opts := provider.GetAPI()
		require.NotNil(t, opts)
		assert.Equal(t, "127.0.0.1:8991", opts.ListenAddr, "默认应只接受本机连接")
		assert.True(t, opts.EnableMetrics)
	})

	t.Run("请求超时字符串正确解析", func(t *testing.T) {
		cfg := &types.AppConfig{
			API: &types.UserAPIConfig{
				RequestTimeout: types.StringPtr("120s"),
			},
		}
		provider := NewProvider(cfg)
		opts := provider.GetAPI()
		assert.Equal(t, 120*time.Second, opts.RequestTimeout)
	})
}

// TestGetBatch 测试 GetBatch() 方法
func TestGetBatch(t *testing.T) {
	t.Run("未配置时工作协程数为0（自动）", func(t *testing.T) {
		cfg := &types.AppConfig{}
		provider := NewProvider(cfg)
		opts := provider.GetBatch()
		require.NotNil(t, opts)
		assert.Equal(t, 0, opts.WorkerCount)
		assert.Equal(t, 256, opts.QueueSize)
		assert.Equal(t, 5*time.Minute, opts.TaskTimeout)
	})

	t.Run("用户配置覆盖默认值", func(t *testing.T) {
		cfg := &types.AppConfig{
			Batch: &types.UserBatchConfig{
				WorkerCount: types.IntPtr(2),
				QueueSize:   types.IntPtr(64),
				TaskTimeout: types.StringPtr("10m"),
			},
		}
		provider := NewProvider(cfg)
		opts := provider.GetBatch()
		assert.Equal(t, 2, opts.WorkerCount)
		assert.Equal(t, 64, opts.QueueSize)
		assert.Equal(t, 10*time.Minute, opts.TaskTimeout)
	})
}

// TestGetDataDir 测试 GetDataDir() 方法
func TestGetDataDir(t *testing.T) {
	t.Run("未配置时使用默认目录", func(t *testing.T) {
		provider := NewProvider(nil)
		assert.Equal(t, "./data", provider.GetDataDir())
	})

	t.Run("显式配置生效", func(t *testing.T) {
		cfg := &types.AppConfig{
			DataDir: types.StringPtr("/srv/zkredit-data"),
		}
		provider := NewProvider(cfg)
		assert.Equal(t, "/srv/zkredit-data", provider.GetDataDir())
	})
}
