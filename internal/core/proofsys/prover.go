package proofsys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	// 基础设施
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	"github.com/zkredit/v1/pkg/types"

	// 内部组件
	"github.com/zkredit/v1/internal/core/predicate"

	// gnark ZK库
	"github.com/consensys/gnark/frontend"
	gnarklogger "github.com/consensys/gnark/logger"

	// zerolog for gnark logger
	"github.com/rs/zerolog"
)

// silenceGnarkLogger 临时禁用gnark库的日志输出
//
// ⚠️ gnark库会输出大量的调试信息（compiling circuit, parsed circuit inputs等），
// 这些日志会绕过zap污染我们的日志系统，所以在后端调用期间禁用。
// gnark使用zerolog，这里换上一个丢弃输出的zerolog.Logger，返回恢复函数。
func silenceGnarkLogger() (restore func()) {
	oldGnarkLogger := gnarklogger.Logger()
	discardLogger := zerolog.New(io.Discard).Level(zerolog.Disabled)
	gnarklogger.Set(discardLogger)
	return func() {
		gnarklogger.Set(oldGnarkLogger)
	}
}

// Prover 零知识证明生成器
//
// 🎯 **专门职责**：为已初始化的谓词生成证明工件
// 🏗️ **技术栈**：基于gnark库，具体方案由上下文中的ProvingScheme决定
//
// 核心Prove是阻塞调用：不做内部重试、超时或并行，
// context仅在阶段之间检查取消。
type Prover struct {
	logger         log.Logger
	contextManager *ContextManager
}

// NewProver 创建证明生成器
func NewProver(
	logger log.Logger,
	contextManager *ContextManager,
) *Prover {
	return &Prover{
		logger:         logger,
		contextManager: contextManager,
	}
}

// GenerateProof 生成零知识证明
//
// 私有输入仅在本次调用内存在：进入见证、参与求值，随后不出现在任何返回值中
func (p *Prover) GenerateProof(
	ctx context.Context,
	predicateName string,
	private, params []*big.Int,
) (*types.ProofArtifact, error) {
	startTime := time.Now()
	p.logger.Debugf("开始生成证明: predicate=%s", predicateName)

	// 1. 获取证明上下文
	pctx, err := p.contextManager.Get(predicateName)
	if err != nil {
		return nil, err
	}
	def := pctx.Definition
	scheme := pctx.Scheme
	field := scheme.Curve().ScalarField()

	// 2. 构建完整见证赋值（求值器在此计算绑定的布尔结果）
	assignment, result, err := predicate.NewAssignment(def, field, private, params)
	if err != nil {
		recordProofGeneration(def.Name, false, 0, 0)
		if errors.Is(err, predicate.ErrArityMismatch) || errors.Is(err, predicate.ErrUnknownValue) {
			return nil, wrapMalformed(err)
		}
		return nil, WrapProofGenerationError(def.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	restore := silenceGnarkLogger()
	defer restore()

	// 3. 构建gnark见证
	fullWitness, err := frontend.NewWitness(assignment, field)
	if err != nil {
		recordProofGeneration(def.Name, false, 0, 0)
		return nil, WrapProofGenerationError(def.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 4. 生成证明（gnark内部使用crypto/rand提供每次证明的新鲜随机性）
	proof, err := scheme.Prove(pctx.ConstraintSystem, pctx.ProvingKey, fullWitness)
	if err != nil {
		recordProofGeneration(def.Name, false, 0, 0)
		return nil, WrapProofGenerationError(def.Name, err)
	}

	// 5. 序列化证明
	proofBytes, err := scheme.SerializeProof(proof)
	if err != nil {
		recordProofGeneration(def.Name, false, 0, 0)
		return nil, WrapProofGenerationError(def.Name, err)
	}

	generationTime := time.Since(startTime)
	recordProofGeneration(def.Name, true, generationTime.Seconds(), len(proofBytes))
	p.logger.Debugf("证明生成完成: predicate=%s, result=%t, 耗时=%v, 大小=%d字节",
		def.Name, result, generationTime, len(proofBytes))

	// 公开参数快照按谓词形状的列名记录，工件凭此自行重建公开实例
	paramSnapshot := make(map[string]string, len(params))
	for i, name := range def.Shape.ParamNames {
		paramSnapshot[name] = params[i].String()
	}

	return &types.ProofArtifact{
		Predicate:        def.Name,
		Scheme:           scheme.SchemeName(),
		Curve:            CurveName(scheme.Curve()),
		RowExponent:      pctx.RowExponent,
		Result:           result,
		Params:           paramSnapshot,
		ProofData:        proofBytes,
		VKFingerprint:    pctx.VKFingerprint,
		ConstraintCount:  uint64(pctx.ConstraintCount),
		GenerationTimeMs: uint64(generationTime.Milliseconds()),
		ProofSizeBytes:   uint64(len(proofBytes)),
		CreatedAt:        time.Now().Unix(),
	}, nil
}

// wrapMalformed 将谓词层的输入错误并入输入格式错误链
// 保留原始错误链，调用方对两层哨兵的errors.Is都成立
func wrapMalformed(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedInput, err)
}
