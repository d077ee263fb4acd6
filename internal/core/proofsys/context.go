package proofsys

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	// 基础设施
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"

	// 内部组件
	"github.com/zkredit/v1/internal/core/infrastructure/keystore"
	"github.com/zkredit/v1/internal/core/predicate"

	// gnark ZK库
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/mr-tron/base58"
)

// 可信设置来源标签（日志与指标共用）
const (
	SetupSourceGenerated = "generated"
	SetupSourceKeystore  = "keystore"
)

// ProofContext 单个谓词的证明上下文
//
// Initialize完成后所有字段只读，并发的Prove/Verify直接共享同一实例
type ProofContext struct {
	// Definition 谓词定义
	Definition *predicate.PredicateDefinition

	// Scheme 证明方案（绑定活动曲线）
	Scheme ProvingScheme

	// ConstraintSystem 编译后的约束系统
	ConstraintSystem constraint.ConstraintSystem

	// ProvingKey / VerifyingKey 可信设置产物
	ProvingKey   ProvingKey
	VerifyingKey VerifyingKey

	// VKHash 验证密钥的SHA-256哈希（32字节）
	VKHash []byte

	// VKFingerprint 验证密钥指纹（VKHash的Base58编码，日志与工件使用）
	VKFingerprint string

	// RowExponent 初始化时使用的行数指数k（容量2^k）
	RowExponent int

	// ConstraintCount 约束数量
	ConstraintCount int

	// SetupSource 设置来源（generated/keystore）
	SetupSource string

	// CreatedAt 上下文创建时间
	CreatedAt time.Time
}

// ContextManager 证明上下文管理器
//
// 🎯 **专门职责**：谓词证明上下文的创建、缓存与密钥库复用
// 🏗️ **设计原则**：
//   - 首次初始化优先：同谓词同k幂等返回，异k报错
//   - 密钥库命中时直接加载设置，跳过昂贵的Setup
//   - Initialize持写锁串行，Prove/Verify经Get持读锁并发
type ContextManager struct {
	logger      log.Logger
	hashManager crypto.HashManager
	setupStore  storageintf.SetupStore // nil表示持久化未启用

	contexts map[string]*ProofContext
	mutex    sync.RWMutex
}

// NewContextManager 创建证明上下文管理器
func NewContextManager(
	logger log.Logger,
	hashManager crypto.HashManager,
	setupStore storageintf.SetupStore,
) *ContextManager {
	return &ContextManager{
		logger:      logger,
		hashManager: hashManager,
		setupStore:  setupStore,
		contexts:    make(map[string]*ProofContext),
	}
}

// Get 获取已初始化的证明上下文
func (cm *ContextManager) Get(predicateName string) (*ProofContext, error) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	pctx, exists := cm.contexts[predicateName]
	if !exists {
		return nil, WrapNotInitializedError(predicateName)
	}
	return pctx, nil
}

// IsInitialized 检查谓词是否已初始化
func (cm *ContextManager) IsInitialized(predicateName string) bool {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	_, exists := cm.contexts[predicateName]
	return exists
}

// List 返回已初始化的谓词名（字典序）
func (cm *ContextManager) List() []string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	names := make([]string, 0, len(cm.contexts))
	for name := range cm.contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Initialize 初始化谓词的证明上下文
//
// 返回值的bool表示是否命中了已存在的上下文（幂等重复初始化）。
//
// 📋 **重复初始化策略**：首次初始化优先
//   - 同谓词同k：幂等空操作，返回既有上下文
//   - 同谓词异k：返回ErrAlreadyInitialized，既有设置保持不变
func (cm *ContextManager) Initialize(
	ctx context.Context,
	def *predicate.PredicateDefinition,
	scheme ProvingScheme,
	rowExponent int,
) (*ProofContext, bool, error) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	// 1. 首次初始化优先检查
	if existing, exists := cm.contexts[def.Name]; exists {
		if existing.RowExponent == rowExponent {
			cm.logger.Infof("谓词%s已初始化（k=%d），复用既有上下文: vk=%s",
				def.Name, rowExponent, existing.VKFingerprint)
			return existing, true, nil
		}
		return nil, false, WrapAlreadyInitializedError(def.Name, existing.RowExponent, rowExponent)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	// 2. 密钥库命中时直接加载，跳过Setup
	if cm.setupStore != nil {
		pctx, found, err := cm.loadFromStore(ctx, def, scheme, rowExponent)
		if err != nil {
			cm.logger.Warnf("密钥库加载失败，回退到重新生成: predicate=%s, err=%v", def.Name, err)
		} else if found {
			cm.contexts[def.Name] = pctx
			cm.logger.Infof("✅ 谓词%s从密钥库恢复设置: scheme=%s, k=%d, constraints=%d, vk=%s",
				def.Name, scheme.SchemeName(), rowExponent, pctx.ConstraintCount, pctx.VKFingerprint)
			return pctx, false, nil
		}
	}

	// 3. 编译电路并生成可信设置
	pctx, err := cm.generateSetup(ctx, def, scheme, rowExponent)
	if err != nil {
		return nil, false, err
	}

	// 4. 持久化设置（尽力而为，失败不影响初始化结果）
	if cm.setupStore != nil {
		if err := cm.saveToStore(ctx, pctx); err != nil {
			cm.logger.Warnf("设置持久化失败: predicate=%s, err=%v", def.Name, err)
		}
	}

	cm.contexts[def.Name] = pctx
	cm.logger.Infof("✅ 谓词%s初始化完成: scheme=%s, k=%d, constraints=%d, vk=%s",
		def.Name, scheme.SchemeName(), rowExponent, pctx.ConstraintCount, pctx.VKFingerprint)
	return pctx, false, nil
}

// generateSetup 编译电路、检查容量并生成可信设置
func (cm *ContextManager) generateSetup(
	ctx context.Context,
	def *predicate.PredicateDefinition,
	scheme ProvingScheme,
	rowExponent int,
) (*ProofContext, error) {
	restore := silenceGnarkLogger()
	defer restore()

	startTime := time.Now()

	// 编译结构电路
	circuit := predicate.NewCircuit(def)
	compiled, err := frontend.Compile(scheme.Curve().ScalarField(), scheme.GetBuilder(), circuit)
	if err != nil {
		return nil, fmt.Errorf("编译谓词电路失败: %w", err)
	}

	// 容量检查：约束数不得超过2^k
	constraintCount := compiled.GetNbConstraints()
	if rowExponent < 64 && constraintCount > (1<<rowExponent) {
		return nil, WrapCapacityExceededError(def.Name, constraintCount, rowExponent)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 生成可信设置
	pk, vk, err := scheme.Setup(compiled)
	if err != nil {
		return nil, err
	}

	vkBytes, err := scheme.SerializeVerifyingKey(vk)
	if err != nil {
		return nil, err
	}
	vkHash := cm.hashManager.SHA256(vkBytes)

	cm.logger.Debugf("可信设置生成完成: predicate=%s, 耗时=%v", def.Name, time.Since(startTime))

	return &ProofContext{
		Definition:       def,
		Scheme:           scheme,
		ConstraintSystem: compiled,
		ProvingKey:       pk,
		VerifyingKey:     vk,
		VKHash:           vkHash,
		VKFingerprint:    base58.Encode(vkHash),
		RowExponent:      rowExponent,
		ConstraintCount:  constraintCount,
		SetupSource:      SetupSourceGenerated,
		CreatedAt:        time.Now(),
	}, nil
}

// loadFromStore 从密钥库加载完整的设置三元组
// 任一部件缺失视为未命中；部件损坏返回错误由调用方降级处理
func (cm *ContextManager) loadFromStore(
	ctx context.Context,
	def *predicate.PredicateDefinition,
	scheme ProvingScheme,
	rowExponent int,
) (*ProofContext, bool, error) {
	schemeName := scheme.SchemeName()
	curveName := CurveName(scheme.Curve())

	ccsBytes, err := cm.setupStore.Get(ctx, keystore.SetupKey(def.Name, schemeName, curveName, rowExponent, keystore.PartConstraintSystem))
	if err != nil {
		return nil, false, err
	}
	pkBytes, err := cm.setupStore.Get(ctx, keystore.SetupKey(def.Name, schemeName, curveName, rowExponent, keystore.PartProvingKey))
	if err != nil {
		return nil, false, err
	}
	vkBytes, err := cm.setupStore.Get(ctx, keystore.SetupKey(def.Name, schemeName, curveName, rowExponent, keystore.PartVerifyingKey))
	if err != nil {
		return nil, false, err
	}
	if ccsBytes == nil || pkBytes == nil || vkBytes == nil {
		return nil, false, nil
	}

	restore := silenceGnarkLogger()
	defer restore()

	compiled, err := scheme.DeserializeConstraintSystem(ccsBytes)
	if err != nil {
		return nil, false, err
	}
	pk, err := scheme.DeserializeProvingKey(pkBytes)
	if err != nil {
		return nil, false, err
	}
	vk, err := scheme.DeserializeVerifyingKey(vkBytes)
	if err != nil {
		return nil, false, err
	}

	vkHash := cm.hashManager.SHA256(vkBytes)

	return &ProofContext{
		Definition:       def,
		Scheme:           scheme,
		ConstraintSystem: compiled,
		ProvingKey:       pk,
		VerifyingKey:     vk,
		VKHash:           vkHash,
		VKFingerprint:    base58.Encode(vkHash),
		RowExponent:      rowExponent,
		ConstraintCount:  compiled.GetNbConstraints(),
		SetupSource:      SetupSourceKeystore,
		CreatedAt:        time.Now(),
	}, true, nil
}

// saveToStore 将设置三元组写入密钥库
func (cm *ContextManager) saveToStore(ctx context.Context, pctx *ProofContext) error {
	scheme := pctx.Scheme
	schemeName := scheme.SchemeName()
	curveName := CurveName(scheme.Curve())
	name := pctx.Definition.Name
	k := pctx.RowExponent

	ccsBytes, err := scheme.SerializeConstraintSystem(pctx.ConstraintSystem)
	if err != nil {
		return err
	}
	pkBytes, err := scheme.SerializeProvingKey(pctx.ProvingKey)
	if err != nil {
		return err
	}
	vkBytes, err := scheme.SerializeVerifyingKey(pctx.VerifyingKey)
	if err != nil {
		return err
	}

	if err := cm.setupStore.Set(ctx, keystore.SetupKey(name, schemeName, curveName, k, keystore.PartConstraintSystem), ccsBytes); err != nil {
		return err
	}
	if err := cm.setupStore.Set(ctx, keystore.SetupKey(name, schemeName, curveName, k, keystore.PartProvingKey), pkBytes); err != nil {
		return err
	}
	if err := cm.setupStore.Set(ctx, keystore.SetupKey(name, schemeName, curveName, k, keystore.PartVerifyingKey), vkBytes); err != nil {
		return err
	}

	cm.logger.Debugf("💾 设置已持久化: predicate=%s, scheme=%s, k=%d, pk=%d字节",
		name, schemeName, k, len(pkBytes))
	return nil
}
