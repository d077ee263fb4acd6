package proofsys

import (
	"bytes"
	"context"
	"math/big"
	"time"

	// 基础设施
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
	storageintf "github.com/zkredit/v1/pkg/interfaces/infrastructure/storage"

	// 内部组件
	"github.com/zkredit/v1/internal/core/predicate"

	// gnark ZK库
	"github.com/consensys/gnark/frontend"
	"github.com/mr-tron/base58"
)

// 验证结果缓存的键前缀与取值
const (
	verifyCachePrefix = "verify:"
)

var (
	cacheValueVerified = []byte{0x01}
	cacheValueRejected = []byte{0x00}
)

// Validator 零知识证明验证器
//
// 🎯 **专门职责**：验证证明工件并重建公开实例
// 🔧 **核心功能**：
//   - 公开见证重建（参数 + 声称结果，私有列不参与）
//   - 验证结果备忘缓存（验证是纯函数，相同输入结果恒定）
//   - 输入格式错误与“验证未通过”的严格区分
//
// 📋 **错误约定**：
//   - 空证明、无法解码的字节、参数数量不符 → (false, ErrMalformedInput)
//   - 谓词未初始化 → (false, ErrSystemNotInitialized)
//   - 后端判定证明无效 → (false, nil)，验证未通过不是错误
type Validator struct {
	logger         log.Logger
	contextManager *ContextManager
	hashManager    crypto.HashManager

	// resultCache 验证结果缓存（nil表示未启用）
	resultCache storageintf.ByteCache
}

// NewValidator 创建证明验证器
func NewValidator(
	logger log.Logger,
	contextManager *ContextManager,
	hashManager crypto.HashManager,
	resultCache storageintf.ByteCache,
) *Validator {
	return &Validator{
		logger:         logger,
		contextManager: contextManager,
		hashManager:    hashManager,
		resultCache:    resultCache,
	}
}

// VerifyProof 验证零知识证明
func (v *Validator) VerifyProof(
	ctx context.Context,
	predicateName string,
	proofBytes []byte,
	params []*big.Int,
	claimed bool,
) (bool, error) {
	startTime := time.Now()
	v.logger.Debugf("开始验证证明: predicate=%s, claimed=%t, 大小=%d字节",
		predicateName, claimed, len(proofBytes))

	// 1. 基础数据完整性
	if len(proofBytes) == 0 {
		recordVerification(predicateName, "malformed", time.Since(startTime).Seconds())
		return false, WrapMalformedInputError("证明数据为空")
	}

	// 2. 获取证明上下文
	pctx, err := v.contextManager.Get(predicateName)
	if err != nil {
		recordVerification(predicateName, "not_initialized", time.Since(startTime).Seconds())
		return false, err
	}
	def := pctx.Definition
	scheme := pctx.Scheme
	field := scheme.Curve().ScalarField()

	// 3. 构建公开赋值（同时完成参数数量与非空校验）
	publicAssignment, err := predicate.NewPublicAssignment(def, field, params, claimed)
	if err != nil {
		recordVerification(def.Name, "malformed", time.Since(startTime).Seconds())
		return false, wrapMalformed(err)
	}

	// 4. 缓存命中直接返回（验证是确定性的纯函数）
	cacheKey := v.cacheKey(pctx, proofBytes, params, claimed)
	if v.resultCache != nil {
		if cached, hit, cacheErr := v.resultCache.Get(ctx, cacheKey); cacheErr == nil && hit && len(cached) == 1 {
			verified := cached[0] == cacheValueVerified[0]
			recordVerification(def.Name, "cache_hit", time.Since(startTime).Seconds())
			v.logger.Debugf("验证结果缓存命中: predicate=%s, verified=%t", def.Name, verified)
			return verified, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	restore := silenceGnarkLogger()
	defer restore()

	// 5. 反序列化证明对象
	proofObj, err := scheme.DeserializeProof(proofBytes)
	if err != nil {
		recordVerification(def.Name, "malformed", time.Since(startTime).Seconds())
		return false, wrapMalformed(err)
	}

	// 6. 重建公开见证
	publicWitness, err := frontend.NewWitness(publicAssignment, field, frontend.PublicOnly())
	if err != nil {
		recordVerification(def.Name, "malformed", time.Since(startTime).Seconds())
		return false, wrapMalformed(err)
	}

	// 7. 执行验证
	verified := true
	if err := scheme.Verify(proofObj, pctx.VerifyingKey, publicWitness); err != nil {
		// 验证未通过不是系统错误
		v.logger.Debugf("证明验证未通过: predicate=%s, err=%v", def.Name, err)
		verified = false
	}

	// 8. 缓存验证结果（两种结论都缓存）
	if v.resultCache != nil {
		value := cacheValueRejected
		if verified {
			value = cacheValueVerified
		}
		if cacheErr := v.resultCache.Set(ctx, cacheKey, value); cacheErr != nil {
			v.logger.Warnf("验证结果写入缓存失败: %v", cacheErr)
		}
	}

	verificationTime := time.Since(startTime)
	if verified {
		recordVerification(def.Name, "verified", verificationTime.Seconds())
	} else {
		recordVerification(def.Name, "rejected", verificationTime.Seconds())
	}
	v.logger.Debugf("证明验证完成: predicate=%s, verified=%t, 耗时=%v",
		def.Name, verified, verificationTime)

	return verified, nil
}

// cacheKey 构造验证结果的缓存键
// VK指纹绑定了谓词、方案、曲线与k，再叠加声称结果、公开参数与证明本体
func (v *Validator) cacheKey(pctx *ProofContext, proofBytes []byte, params []*big.Int, claimed bool) string {
	field := pctx.Scheme.Curve().ScalarField()
	width := (field.BitLen() + 7) / 8

	var buf bytes.Buffer
	buf.WriteString(pctx.Definition.Name)
	buf.WriteByte(0x00)
	buf.WriteString(pctx.VKFingerprint)
	buf.WriteByte(0x00)
	if claimed {
		buf.WriteByte(0x01)
	} else {
		buf.WriteByte(0x00)
	}
	scratch := make([]byte, width)
	for _, p := range params {
		if p == nil {
			continue
		}
		residue := new(big.Int).Mod(p, field)
		residue.FillBytes(scratch)
		buf.Write(scratch)
	}
	buf.Write(proofBytes)

	return verifyCachePrefix + base58.Encode(v.hashManager.SHA256(buf.Bytes()))
}
