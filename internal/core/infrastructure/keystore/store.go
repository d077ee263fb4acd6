// Package keystore 提供基于BadgerDB的可信设置持久化存储
//
// 💾 **可信设置存储 (Trusted Setup Keystore)**
//
// 本包将证明系统的设置工件（约束系统、证明密钥、验证密钥）持久化到本地
// BadgerDB，使进程重启后可以复用既有设置而非重新执行昂贵的密钥生成：
// - 证明密钥体积大（k=16时可达数十MB），默认用Snappy压缩后落盘
// - 键布局携带完整形状信息（谓词、方案、曲线、行指数），可审计可前缀扫描
// - 磁盘打开失败时快速失败，不做隐式内存回退：回退会静默丢失已持久化的
//   设置并迫使下次启动重新生成密钥，属于更隐蔽的故障
//
// ⚠️ **安全边界**
// 本存储仅服务本地自举场景：设置密钥不出本机，不提供跨设备分发能力。
// 值对存储层不透明，密钥的序列化与解析由证明系统负责。
package keystore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/golang/snappy"
	"go.uber.org/zap"

	keystoreconfig "github.com/zkredit/v1/internal/config/keystore"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"
)

// 值格式标记：存储值的首字节标识编码方式，读取侧据此解码。
// 值自描述后，运行中途切换compress配置也不会让旧值变得不可读。
const (
	valueRaw    byte = 0x00 // 原始字节
	valueSnappy byte = 0x01 // Snappy压缩
)

// Store 基于BadgerDB的可信设置存储
type Store struct {
	db      *badgerdb.DB
	options *keystoreconfig.KeystoreOptions
	logger  log.Logger

	closing int32          // 关闭标志，阻断关闭期间的新写入
	writeWg sync.WaitGroup // in-flight写事务计数
}

var _ storageintf.SetupStore = (*Store)(nil)

// New 创建可信设置存储
// options为nil时使用包默认配置；logger为nil时退化为静默logger
func New(options *keystoreconfig.KeystoreOptions, logger log.Logger) (*Store, error) {
	if options == nil {
		options = keystoreconfig.New(nil).GetOptions()
	}
	if logger == nil {
		logger = nopLogger{}
	}

	var opts badgerdb.Options
	if options.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if options.Path == "" {
			return nil, fmt.Errorf("keystore路径为空，磁盘模式需要有效的数据目录")
		}
		if err := os.MkdirAll(options.Path, 0700); err != nil {
			return nil, fmt.Errorf("创建keystore数据目录失败: %w", err)
		}
		opts = badgerdb.DefaultOptions(options.Path)
		// 设置工件重新生成的代价是数秒到数分钟的密钥生成，写入必须实时落盘
		opts.SyncWrites = true
	}

	// keystore的数据画像是少量大值（每个谓词形状3条记录），据此收紧内存占用：
	// 大值走value log不进memtable，读取是低频的启动时加载，不需要大缓存
	opts.MemTableSize = 16 << 20
	opts.BlockCacheSize = 16 << 20
	opts.IndexCacheSize = 16 << 20
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.ValueLogFileSize = 256 << 20 // 单值大小受此约束，远高于最大谓词形状的密钥体积
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开keystore数据库失败 (path=%s): %w", options.Path, err)
	}

	mode := "disk"
	if options.InMemory {
		mode = "memory"
	}
	logger.Infof("💾 keystore已打开: mode=%s compress=%v path=%s", mode, options.Compress, options.Path)

	return &Store{
		db:      db,
		options: options,
		logger:  logger,
	}, nil
}

// Get 获取指定键的值；键不存在时返回(nil, nil)
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil // 键不存在时返回nil值和nil错误
			}
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("keystore读取键失败: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeValue(raw)
}

// Set 设置键值对，覆盖写且幂等
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	encoded := encodeValue(value, s.options.Compress)
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, encoded)
	}); err != nil {
		return fmt.Errorf("keystore写入键失败: %w", err)
	}
	return nil
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if err == badgerdb.ErrKeyNotFound {
			exists = false
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("keystore检查键存在性失败: %w", err)
	}
	return exists, nil
}

// Delete 删除指定键的值（键不存在时不报错）
func (s *Store) Delete(ctx context.Context, key []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	}); err != nil {
		return fmt.Errorf("keystore删除键失败: %w", err)
	}
	return nil
}

// PrefixScan 按前缀扫描键值对，返回解码后的值
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	result := make(map[string][]byte)

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := item.Key()

			keyCopy := make([]byte, len(k))
			copy(keyCopy, k)

			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			value, err := decodeValue(raw)
			if err != nil {
				return fmt.Errorf("键 %s: %w", string(keyCopy), err)
			}

			result[string(keyCopy)] = value
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("keystore前缀扫描失败: %w", err)
	}

	return result, nil
}

// Close 关闭存储并释放资源
// 先进入关闭态阻断新写入，等待in-flight写事务退出后再关闭底层数据库
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}
	if s.db == nil {
		return nil
	}

	waitCh := make(chan struct{})
	go func() {
		s.writeWg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(10 * time.Second):
		s.logger.Warn("⚠️ 等待in-flight写事务超时（10s），继续关闭keystore")
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("关闭keystore数据库失败: %w", err)
	}
	s.logger.Info("💾 keystore已关闭")
	return nil
}

func (s *Store) beginWrite() (func(), error) {
	// 关闭过程中拒绝写入，避免Badger Close与写入并发导致fatal
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, fmt.Errorf("keystore正在关闭，拒绝写入")
	}
	s.writeWg.Add(1)
	// double-check，避免在Add之后进入closing
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, fmt.Errorf("keystore正在关闭，拒绝写入")
	}
	return s.writeWg.Done, nil
}

// encodeValue 为值加上格式标记，按配置压缩
// 已经高熵的数据（如密钥中的随机化段）压缩可能反而变大，此时退回原始格式
func encodeValue(value []byte, compress bool) []byte {
	if compress {
		compressed := snappy.Encode(nil, value)
		if len(compressed) < len(value) {
			buf := make([]byte, 0, len(compressed)+1)
			buf = append(buf, valueSnappy)
			return append(buf, compressed...)
		}
	}
	buf := make([]byte, 0, len(value)+1)
	buf = append(buf, valueRaw)
	return append(buf, value...)
}

// decodeValue 按格式标记还原值
func decodeValue(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("keystore值为空，缺少格式标记")
	}
	switch raw[0] {
	case valueRaw:
		return raw[1:], nil
	case valueSnappy:
		decoded, err := snappy.Decode(nil, raw[1:])
		if err != nil {
			return nil, fmt.Errorf("keystore值解压失败: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("keystore值格式标记未知: 0x%02x", raw[0])
	}
}

// badgerLogger 将Badger内部日志桥接到系统logger
// Badger的Info级日志偏冗长（压缩、vlog轮转等），统一降为Debug
type badgerLogger struct {
	logger log.Logger
}

func newBadgerLogger(logger log.Logger) *badgerLogger {
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

// nopLogger 在logger未注入时避免nil指针崩溃（测试/工具链场景）
// 生产环境应通过DI注入真实logger
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
