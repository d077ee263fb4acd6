package app

import (
	"fmt"

	"github.com/zkredit/v1/internal/config"
	logconfig "github.com/zkredit/v1/internal/config/log"
	"github.com/zkredit/v1/internal/core/infrastructure/cache"
	"github.com/zkredit/v1/internal/core/infrastructure/crypto/hash"
	"github.com/zkredit/v1/internal/core/infrastructure/keystore"
	logimpl "github.com/zkredit/v1/internal/core/infrastructure/log"
	"github.com/zkredit/v1/internal/core/proofsys"
	configintf "github.com/zkredit/v1/pkg/interfaces/config"
	cryptointf "github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"
)

// Local 无fx的轻量服务装配
//
// CLI单次命令和FFI边界不需要HTTP服务与事件总线，
// 走这条直接构造路径：同样的配置、日志、keystore和Manager，
// 少掉依赖注入容器的启动开销。
type Local struct {
	Provider    configintf.Provider
	Logger      log.Logger
	HashManager cryptointf.HashManager
	Manager     *proofsys.Manager

	store       storageintf.SetupStore
	resultCache storageintf.ByteCache
}

// NewLocal 按配置装配本地证明服务
func NewLocal(configPath string) (*Local, error) {
	provider := config.NewProvider(LoadOptions(configPath).GetAppConfig())

	logger, err := logimpl.New(logconfig.NewFromProvider(provider))
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	logimpl.SetLogger(logger)

	hashManager := hash.NewHashService()

	// keystore按配置开关；失败时中止而不是静默降级到内存模式
	var store storageintf.SetupStore
	keystoreOptions := provider.GetKeystore()
	if keystoreOptions.Enabled {
		badgerStore, err := keystore.New(keystoreOptions, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化keystore失败: %w", err)
		}
		store = badgerStore
	}

	// 验证缓存只在证明系统配置启用时构建
	var resultCache storageintf.ByteCache
	if provider.GetProofSystem().EnableVerifyCache {
		byteCache, err := cache.New(provider.GetCache(), logger)
		if err != nil {
			closeQuietly(store, logger)
			return nil, fmt.Errorf("初始化验证缓存失败: %w", err)
		}
		resultCache = byteCache
	}

	manager, err := proofsys.NewManager(provider.GetProofSystem(), hashManager, logger, store, resultCache)
	if err != nil {
		closeQuietly(store, logger)
		closeQuietly(resultCache, logger)
		return nil, err
	}

	return &Local{
		Provider:    provider,
		Logger:      logger,
		HashManager: hashManager,
		Manager:     manager,
		store:       store,
		resultCache: resultCache,
	}, nil
}

// NewBatch 创建批量证明服务（调用方负责Start/Stop）
func (l *Local) NewBatch(callback proofsys.ProofCallback) *proofsys.BatchService {
	return proofsys.NewBatchService(l.Manager, l.Provider.GetBatch(), callback, l.Logger)
}

// Close 释放持有的存储资源并刷新日志
func (l *Local) Close() error {
	closeQuietly(l.store, l.Logger)
	closeQuietly(l.resultCache, l.Logger)
	_ = l.Logger.Sync()
	return nil
}

func closeQuietly(c interface{ Close() error }, logger log.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && logger != nil {
		logger.Warnf("资源关闭失败: %v", err)
	}
}
