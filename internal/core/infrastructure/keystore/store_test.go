package keystore

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	keystoreconfig "github.com/zkredit/v1/internal/config/keystore"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
)

// 模拟Logger接口
type mockLogger struct{}

func (m *mockLogger) Debug(msg string)                          {}
func (m *mockLogger) Debugf(format string, args ...interface{}) {}
func (m *mockLogger) Info(msg string)                           {}
func (m *mockLogger) Infof(format string, args ...interface{})  {}
func (m *mockLogger) Warn(msg string)                           {}
func (m *mockLogger) Warnf(format string, args ...interface{})  {}
func (m *mockLogger) Error(msg string)                          {}
func (m *mockLogger) Errorf(format string, args ...interface{}) {}
func (m *mockLogger) Fatal(msg string)                          {}
func (m *mockLogger) Fatalf(format string, args ...interface{}) {}
func (m *mockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *mockLogger) Sync() error                               { return nil }
func (m *mockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// setupMemoryStore 创建内存模式的测试存储
func setupMemoryStore(t *testing.T, compress bool) *Store {
	options := &keystoreconfig.KeystoreOptions{
		Enabled:  true,
		InMemory: true,
		Compress: compress,
	}

	store, err := New(options, &mockLogger{})
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// 测试基本的键值操作
func TestBasicKeyValueOperations(t *testing.T) {
	store := setupMemoryStore(t, true)
	ctx := context.Background()

	key := SetupKey("threshold.v1", "groth16", "bn254", 12, PartVerifyingKey)
	value := []byte("verifying-key-bytes")

	// 1. 不存在的键：Get返回(nil, nil)，Exists返回false
	exists, err := store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)

	val, err := store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, val)

	// 2. 设置后可读回
	err = store.Set(ctx, key, value)
	assert.NoError(t, err)

	exists, err = store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.True(t, exists)

	val, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, value, val)

	// 3. 覆盖写幂等
	newValue := []byte("regenerated-verifying-key")
	err = store.Set(ctx, key, newValue)
	assert.NoError(t, err)

	val, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, newValue, val)

	// 4. 删除后不存在；删除不存在的键不报错
	err = store.Delete(ctx, key)
	assert.NoError(t, err)

	exists, err = store.Exists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)

	err = store.Delete(ctx, key)
	assert.NoError(t, err)
}

// 测试压缩路径下的值往返
func TestCompressedRoundTrip(t *testing.T) {
	t.Run("高冗余值走压缩路径", func(t *testing.T) {
		store := setupMemoryStore(t, true)
		ctx := context.Background()

		// 模拟证明密钥中的结构化段：大量重复字节，Snappy收益明显
		value := bytes.Repeat([]byte("zkredit-setup-artifact-"), 50000)
		key := SetupKey("range.v1", "groth16", "bn254", 16, PartProvingKey)

		require.NoError(t, store.Set(ctx, key, value))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("高熵值自动退回原始格式", func(t *testing.T) {
		store := setupMemoryStore(t, true)
		ctx := context.Background()

		// 伪随机字节不可压缩，encodeValue应退回raw而非存放更大的压缩结果
		rng := rand.New(rand.NewSource(42))
		value := make([]byte, 64*1024)
		_, err := rng.Read(value)
		require.NoError(t, err)

		key := SetupKey("ratio.v1", "groth16", "bn254", 10, PartProvingKey)
		require.NoError(t, store.Set(ctx, key, value))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("关闭压缩仍可读回", func(t *testing.T) {
		store := setupMemoryStore(t, false)
		ctx := context.Background()

		value := bytes.Repeat([]byte("ab"), 1024)
		key := SetupKey("commitment.v1", "groth16", "bn254", 8, PartConstraintSystem)

		require.NoError(t, store.Set(ctx, key, value))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})
}

// 测试值格式标记的编解码
func TestValueEncoding(t *testing.T) {
	t.Run("可压缩值带Snappy标记", func(t *testing.T) {
		value := bytes.Repeat([]byte("x"), 4096)
		encoded := encodeValue(value, true)

		require.NotEmpty(t, encoded)
		assert.Equal(t, valueSnappy, encoded[0])
		assert.Less(t, len(encoded), len(value))

		decoded, err := decodeValue(encoded)
		require.NoError(t, err)
		assert.Equal(t, value, decoded)
	})

	t.Run("不可压缩值退回原始标记", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		value := make([]byte, 4096)
		_, err := rng.Read(value)
		require.NoError(t, err)

		encoded := encodeValue(value, true)
		require.NotEmpty(t, encoded)
		assert.Equal(t, valueRaw, encoded[0])

		decoded, err := decodeValue(encoded)
		require.NoError(t, err)
		assert.Equal(t, value, decoded)
	})

	t.Run("禁用压缩时始终原始标记", func(t *testing.T) {
		value := bytes.Repeat([]byte("x"), 4096)
		encoded := encodeValue(value, false)

		require.NotEmpty(t, encoded)
		assert.Equal(t, valueRaw, encoded[0])
	})

	t.Run("未知标记与空值报错", func(t *testing.T) {
		_, err := decodeValue([]byte{0xFF, 0x01, 0x02})
		assert.Error(t, err)

		_, err = decodeValue(nil)
		assert.Error(t, err)
	})
}

// 测试设置键布局
func TestSetupKeyLayout(t *testing.T) {
	key := SetupKey("threshold.v1", "groth16", "bn254", 12, PartProvingKey)
	assert.Equal(t, "setup:threshold.v1:groth16:bn254:k12:pk", string(key))

	prefix := BundlePrefix("threshold.v1", "groth16", "bn254", 12)
	assert.Equal(t, "setup:threshold.v1:groth16:bn254:k12:", string(prefix))
	assert.True(t, bytes.HasPrefix(key, prefix))

	// 不同行指数的键不会互相匹配前缀
	other := SetupKey("threshold.v1", "groth16", "bn254", 16, PartProvingKey)
	assert.False(t, bytes.HasPrefix(other, prefix))

	assert.Equal(t, "setup:", string(AllSetupsPrefix()))
}

// 测试按设置包前缀扫描
func TestPrefixScan(t *testing.T) {
	store := setupMemoryStore(t, true)
	ctx := context.Background()

	bundle := map[string][]byte{
		string(SetupKey("threshold.v1", "groth16", "bn254", 12, PartConstraintSystem)): bytes.Repeat([]byte("ccs"), 100),
		string(SetupKey("threshold.v1", "groth16", "bn254", 12, PartProvingKey)):       bytes.Repeat([]byte("pk"), 100),
		string(SetupKey("threshold.v1", "groth16", "bn254", 12, PartVerifyingKey)):     bytes.Repeat([]byte("vk"), 100),
	}
	for k, v := range bundle {
		require.NoError(t, store.Set(ctx, []byte(k), v))
	}
	// 其他形状的设置不应出现在扫描结果中
	require.NoError(t, store.Set(ctx,
		SetupKey("range.v1", "groth16", "bn254", 12, PartVerifyingKey),
		[]byte("other-vk")))

	result, err := store.PrefixScan(ctx, BundlePrefix("threshold.v1", "groth16", "bn254", 12))
	require.NoError(t, err)
	assert.Equal(t, 3, len(result))

	for k, want := range bundle {
		got, ok := result[k]
		require.True(t, ok, "缺少键: %s", k)
		assert.Equal(t, want, got)
	}

	// 全量扫描能看到全部4条记录
	all, err := store.PrefixScan(ctx, AllSetupsPrefix())
	require.NoError(t, err)
	assert.Equal(t, 4, len(all))
}

// 测试磁盘模式下设置跨重启可复用
func TestDiskPersistence(t *testing.T) {
	dir := t.TempDir()
	options := &keystoreconfig.KeystoreOptions{
		Enabled:  true,
		Path:     dir,
		Compress: true,
	}
	ctx := context.Background()

	key := SetupKey("threshold.v1", "groth16", "bn254", 12, PartVerifyingKey)
	value := bytes.Repeat([]byte("persistent-vk"), 1000)

	// 第一次打开：写入并关闭
	store, err := New(options, &mockLogger{})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, key, value))
	require.NoError(t, store.Close())

	// 第二次打开：模拟进程重启后的设置复用
	reopened, err := New(options, &mockLogger{})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

// 测试关闭后的行为
func TestCloseBehavior(t *testing.T) {
	store := setupMemoryStore(t, true)
	ctx := context.Background()

	require.NoError(t, store.Close())

	// 重复关闭幂等
	assert.NoError(t, store.Close())

	// 关闭后写入被拒绝
	err := store.Set(ctx, []byte("k"), []byte("v"))
	assert.Error(t, err)

	err = store.Delete(ctx, []byte("k"))
	assert.Error(t, err)
}

// 测试配置校验
func TestNewValidation(t *testing.T) {
	t.Run("磁盘模式缺少路径报错", func(t *testing.T) {
		_, err := New(&keystoreconfig.KeystoreOptions{Enabled: true}, &mockLogger{})
		assert.Error(t, err)
	})

	t.Run("nil配置使用包默认值", func(t *testing.T) {
		// 包默认路径指向./data/keystore，测试中不落盘，只验证不panic
		// 这里改用内存模式避免污染工作目录
		store, err := New(&keystoreconfig.KeystoreOptions{InMemory: true}, nil)
		require.NoError(t, err)
		assert.NoError(t, store.Close())
	})
}
