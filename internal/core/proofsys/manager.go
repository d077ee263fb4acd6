package proofsys

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"

	// 内部组件
	proofsysconfig "github.com/zkredit/v1/internal/config/proofsys"
	"github.com/zkredit/v1/internal/core/predicate"

	// 公共接口依赖
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"
	"github.com/zkredit/v1/pkg/types"
	"github.com/zkredit/v1/pkg/version"
)

// Manager 证明系统管理器
//
// 🎯 **设计理念**：薄实现，专注依赖注入和接口协调
// 🏗️ **架构原则**：Manager只做依赖管理和名称解析，业务逻辑委托给子组件
//   - 初始化和可信设置缓存 → ContextManager
//   - 证明生成 → Prover
//   - 证明验证 → Validator
//   - 方案选择 → ProvingSchemeRegistry
type Manager struct {
	// ==================== 密码学服务 ====================
	hashManager crypto.HashManager // 哈希计算服务

	// ==================== 基础设施服务 ====================
	logger log.Logger // 日志服务

	// ==================== 专门的子组件 ====================
	contextManager *ContextManager        // 证明上下文管理器
	prover         *Prover                // 证明生成器
	validator      *Validator             // 证明验证器
	schemeRegistry *ProvingSchemeRegistry // 证明方案注册表

	// ==================== 运行参数 ====================
	options      *proofsysconfig.ProofSystemOptions // 证明系统配置
	curveID      ecc.ID                             // 椭圆曲线
	activeScheme ProvingScheme                      // 当前激活的证明方案
	deviceTier   DeviceTier                         // 设备档位
}

// NewManager 创建证明系统管理器
//
// 🎯 **依赖注入模式**：通过构造函数注入所有依赖
// 🏗️ **初始化顺序**：配置解析 → 方案注册表 → 设备探测 → 子组件 → 组装Manager
//
// setupStore与resultCache允许为nil：nil表示对应能力（设置持久化/验证缓存）关闭
func NewManager(
	options *proofsysconfig.ProofSystemOptions,
	hashManager crypto.HashManager,
	logger log.Logger,
	setupStore storageintf.SetupStore,
	resultCache storageintf.ByteCache,
) (*Manager, error) {
	// 1. 配置解析（nil配置使用默认值）
	if options == nil {
		options = proofsysconfig.New(nil).GetOptions()
	}

	curveID, err := CurveFromName(options.Curve)
	if err != nil {
		return nil, err
	}

	// 2. 创建方案注册表并选择激活方案
	schemeRegistry := NewProvingSchemeRegistry(logger, curveID)
	activeScheme, err := schemeRegistry.GetScheme(options.Scheme)
	if err != nil {
		return nil, err
	}

	// 3. 确定设备档位（显式配置优先，否则按物理内存探测）
	deviceTier := DetectTier()
	if options.DeviceTier != "" {
		deviceTier, err = TierFromName(options.DeviceTier)
		if err != nil {
			return nil, err
		}
	}

	// 4. 创建专门的子组件
	contextManager := NewContextManager(logger, hashManager, setupStore)
	prover := NewProver(logger, contextManager)

	// 验证缓存按配置开关（关闭时传nil，Validator跳过缓存路径）
	cache := resultCache
	if !options.EnableVerifyCache {
		cache = nil
	}
	validator := NewValidator(logger, contextManager, hashManager, cache)

	logger.Infof("证明系统管理器就绪: scheme=%s, curve=%s, tier=%s, keystore=%t, verify_cache=%t",
		activeScheme.SchemeName(), CurveName(curveID), deviceTier,
		setupStore != nil, cache != nil)

	return &Manager{
		// 密码学服务
		hashManager: hashManager,

		// 基础设施服务
		logger: logger,

		// 专门的子组件
		contextManager: contextManager,
		prover:         prover,
		validator:      validator,
		schemeRegistry: schemeRegistry,

		// 运行参数
		options:      options,
		curveID:      curveID,
		activeScheme: activeScheme,
		deviceTier:   deviceTier,
	}, nil
}

// ==================== 初始化操作 ====================

// ResolveRowExponent 确定行数指数k
//
// 优先级：调用方显式指定 > 配置文件 > 设备档位推荐值
func (m *Manager) ResolveRowExponent(requested int) int {
	if requested > 0 {
		return requested
	}
	if m.options.RowExponent > 0 {
		return m.options.RowExponent
	}
	return m.deviceTier.RecommendedRowExponent()
}

// Initialize 初始化单个谓词的证明上下文（编译电路+生成或恢复可信设置）
//
// rowExponent为0时按配置和设备档位自动选择。
// 重复初始化遵循首次优先策略：同k幂等复用，异k返回ErrAlreadyInitialized。
func (m *Manager) Initialize(ctx context.Context, predicateName string, rowExponent int) (*types.SetupSummary, error) {
	startTime := time.Now()

	// 1. 解析谓词名称（接受基础名或版本化名称）
	def, err := predicate.Resolve(predicateName)
	if err != nil {
		return nil, WrapUnsupportedPredicateError(predicateName)
	}

	// 2. 确定行数指数并初始化上下文
	k := m.ResolveRowExponent(rowExponent)
	pctx, reused, err := m.contextManager.Initialize(ctx, def, m.activeScheme, k)
	if err != nil {
		// 策略性错误和取消原样透传，其余归类为密钥生成失败
		if errors.Is(err, ErrAlreadyInitialized) ||
			errors.Is(err, ErrCapacityExceeded) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, WrapKeyGenerationError(def.Name, err)
	}

	// 3. 记录指标（复用不计入生成/恢复来源）
	source := pctx.SetupSource
	if reused {
		source = "reused"
	}
	duration := time.Since(startTime)
	recordInitialize(def.Name, source, duration.Seconds())

	return &types.SetupSummary{
		Predicate:       def.Name,
		Scheme:          m.activeScheme.SchemeName(),
		Curve:           CurveName(m.curveID),
		RowExponent:     pctx.RowExponent,
		ConstraintCount: uint64(pctx.ConstraintCount),
		VKFingerprint:   pctx.VKFingerprint,
		SetupSource:     source,
		DurationMs:      uint64(duration.Milliseconds()),
	}, nil
}

// InitializeAll 初始化目录中的全部谓词
//
// 遇到首个失败立即停止并返回已完成的摘要和错误。
func (m *Manager) InitializeAll(ctx context.Context, rowExponent int) ([]*types.SetupSummary, error) {
	defs := predicate.List()
	summaries := make([]*types.SetupSummary, 0, len(defs))

	for _, def := range defs {
		summary, err := m.Initialize(ctx, def.Name, rowExponent)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}

	m.logger.Infof("✅ 全部谓词初始化完成: 数量=%d, k=%d", len(summaries), m.ResolveRowExponent(rowExponent))
	return summaries, nil
}

// ==================== 证明操作 ====================

// Prove 生成零知识证明（委托给Prover子组件）
//
// 请求中的Witness仅用于本次证明生成，不出现在返回的工件中。
func (m *Manager) Prove(ctx context.Context, request *types.ProofRequest) (*types.ProofArtifact, error) {
	if request == nil {
		return nil, WrapMalformedInputError("证明请求为空")
	}

	def, err := predicate.Resolve(request.Predicate)
	if err != nil {
		return nil, WrapUnsupportedPredicateError(request.Predicate)
	}

	private, params, err := def.ParseValues(request.Witness, request.Params)
	if err != nil {
		return nil, wrapMalformed(err)
	}

	return m.prover.GenerateProof(ctx, def.Name, private, params)
}

// Verify 验证零知识证明（委托给Validator子组件）
//
// 📋 **错误语义**：
//   - (true, nil)：证明有效，谓词成立
//   - (false, nil)：证明无效（密码学拒绝），不是系统错误
//   - (false, err)：无法完成验证（输入畸形、谓词未初始化等）
func (m *Manager) Verify(ctx context.Context, request *types.VerifyRequest) (bool, error) {
	if request == nil {
		return false, WrapMalformedInputError("验证请求为空")
	}

	def, err := predicate.Resolve(request.Predicate)
	if err != nil {
		return false, WrapUnsupportedPredicateError(request.Predicate)
	}

	params, err := def.ParseParams(request.Params)
	if err != nil {
		recordVerification(def.Name, "malformed", 0)
		return false, wrapMalformed(err)
	}

	// 公开实例按声称的结果重建（缺省声称"谓词成立"）
	return m.validator.VerifyProof(ctx, def.Name, request.ProofData, params, request.ClaimedResult())
}

// ==================== 模拟评估 ====================

// MockEvaluateDetailed 模拟评估：不生成真实证明，检查赋值与约束系统
//
// 开发调试用途。用完整赋值跑约束求解器，并对比谓词计算结果：
// 电路只约束结果的布尔性而不绑定私有输入（结构性局限），
// 因此"约束满足但谓词为假"意味着声称成立的证明语义上是错的，
// 该情况通过Mismatch暴露给调用方。
func (m *Manager) MockEvaluateDetailed(ctx context.Context, request *types.ProofRequest) (*types.MockResult, error) {
	if request == nil {
		return nil, WrapMalformedInputError("模拟评估请求为空")
	}

	def, err := predicate.Resolve(request.Predicate)
	if err != nil {
		return nil, WrapUnsupportedPredicateError(request.Predicate)
	}

	private, params, err := def.ParseValues(request.Witness, request.Params)
	if err != nil {
		return nil, wrapMalformed(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. 电路外求值并构造完整赋值
	field := m.curveID.ScalarField()
	assignment, satisfied, err := predicate.NewAssignment(def, field, private, params)
	if err != nil {
		return nil, wrapMalformed(err)
	}

	// 2. 约束求解（gnark测试求解器，无需可信设置）
	restore := silenceGnarkLogger()
	solveErr := test.IsSolved(predicate.NewCircuit(def), assignment, field)
	restore()

	result := &types.MockResult{
		Satisfied:            satisfied,
		ConstraintsSatisfied: solveErr == nil,
	}
	result.Mismatch = result.ConstraintsSatisfied && !satisfied

	m.logger.Debugf("模拟评估完成: predicate=%s, satisfied=%t, constraints=%t, mismatch=%t",
		def.Name, result.Satisfied, result.ConstraintsSatisfied, result.Mismatch)
	return result, nil
}

// MockEvaluate 模拟评估的布尔视图
//
// 返回true表示：约束系统满足且谓词确实成立（生成的证明既可通过验证又语义正确）
func (m *Manager) MockEvaluate(ctx context.Context, request *types.ProofRequest) (bool, error) {
	result, err := m.MockEvaluateDetailed(ctx, request)
	if err != nil {
		return false, err
	}
	return result.ConstraintsSatisfied && !result.Mismatch, nil
}

// ==================== 状态与查询 ====================

// CheckShape 结构性检查：编译谓词电路但不生成可信设置
//
// 用于启动自检和CLI诊断，比完整初始化快几个数量级。
func (m *Manager) CheckShape(predicateName string) error {
	def, err := predicate.Resolve(predicateName)
	if err != nil {
		return WrapUnsupportedPredicateError(predicateName)
	}

	restore := silenceGnarkLogger()
	defer restore()

	_, err = frontend.Compile(m.curveID.ScalarField(), m.activeScheme.GetBuilder(), predicate.NewCircuit(def))
	if err != nil {
		return fmt.Errorf("谓词%s电路编译失败: %w", def.Name, err)
	}
	return nil
}

// Status 返回证明系统状态快照
func (m *Manager) Status() *types.SystemStatus {
	initialized := m.contextManager.List()

	status := &types.SystemStatus{
		Initialized: len(initialized) > 0,
		Scheme:      m.activeScheme.SchemeName(),
		Curve:       CurveName(m.curveID),
		DeviceTier:  string(m.deviceTier),
		Predicates:  initialized,
		Version:     version.Version,
	}

	// 同一进程内全部上下文使用同一个k，取任意一个即可
	if len(initialized) > 0 {
		if pctx, err := m.contextManager.Get(initialized[0]); err == nil {
			status.RowExponent = pctx.RowExponent
		}
	}
	return status
}

// IsInitialized 检查谓词是否已完成初始化
func (m *Manager) IsInitialized(predicateName string) bool {
	def, err := predicate.Resolve(predicateName)
	if err != nil {
		return false
	}
	return m.contextManager.IsInitialized(def.Name)
}

// DeviceTier 返回当前设备档位
func (m *Manager) DeviceTier() DeviceTier {
	return m.deviceTier
}

// SchemeName 返回当前激活的证明方案名称
func (m *Manager) SchemeName() string {
	return m.activeScheme.SchemeName()
}

// CurveName 返回当前椭圆曲线名称
func (m *Manager) CurveName() string {
	return CurveName(m.curveID)
}

// ScalarField 返回当前曲线的标量域模数
// 承诺计算等需要在同一域内折算标量的调用方使用
func (m *Manager) ScalarField() *big.Int {
	return m.curveID.ScalarField()
}

// ListSupportedSchemes 列出所有支持的证明方案
func (m *Manager) ListSupportedSchemes() []string {
	return m.schemeRegistry.ListSchemes()
}

// IsSchemeSupported 检查证明方案是否支持
func (m *Manager) IsSchemeSupported(schemeName string) bool {
	return m.schemeRegistry.IsSchemeSupported(schemeName)
}
