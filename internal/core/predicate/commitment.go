package predicate

import (
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	cryptointf "github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
)

// ============================================================================
// 数据承诺（commitment.v1谓词的配套计算）
// ============================================================================
//
// 承诺格式：commitment = (H(data) + nonce) mod r
//
// 摘要模式H可选：sha256为默认；keccak256用于与以太坊生态
// 对齐的承诺格式（链上侧用同一摘要即可比对承诺值）。
//
// ⚠️ 这是加性致盲的哈希承诺，不是Pedersen承诺：隐藏性依赖nonce保密，
// 绑定性依赖摘要抗碰撞。nonce与承诺值同持有方保管，开启即透露
// (data, nonce)对。
//
// ============================================================================

// 承诺摘要模式
const (
	DigestSHA256    = "sha256"
	DigestKeccak256 = "keccak256"
)

// ErrUnknownDigest 未知的承诺摘要模式
var ErrUnknownDigest = errors.New("未知的承诺摘要模式")

// ComputeCommitment 计算数据承诺：(SHA256(data) + nonce) mod field
func ComputeCommitment(hasher cryptointf.HashManager, field *big.Int, data []byte, nonce *big.Int) (*big.Int, error) {
	return ComputeCommitmentDigest(hasher, DigestSHA256, field, data, nonce)
}

// ComputeCommitmentDigest 以指定摘要模式计算数据承诺
func ComputeCommitmentDigest(hasher cryptointf.HashManager, digestMode string, field *big.Int, data []byte, nonce *big.Int) (*big.Int, error) {
	if len(data) == 0 {
		return nil, errors.New("承诺数据为空")
	}
	if nonce == nil {
		return nil, errors.New("承诺随机数为空")
	}

	var sum []byte
	switch digestMode {
	case DigestSHA256:
		sum = hasher.SHA256(data)
	case DigestKeccak256:
		sum = hasher.Keccak256(data)
	default:
		return nil, errors.Wrapf(ErrUnknownDigest, "%q", digestMode)
	}

	digest := new(big.Int).SetBytes(sum)
	commitment := new(big.Int).Add(digest, nonce)
	return commitment.Mod(commitment, field), nil
}

// VerifyCommitment 验证(data, nonce)对是否开启commitment
func VerifyCommitment(hasher cryptointf.HashManager, field *big.Int, data []byte, nonce, commitment *big.Int) (bool, error) {
	return VerifyCommitmentDigest(hasher, DigestSHA256, field, data, nonce, commitment)
}

// VerifyCommitmentDigest 以指定摘要模式验证承诺开启
func VerifyCommitmentDigest(hasher cryptointf.HashManager, digestMode string, field *big.Int, data []byte, nonce, commitment *big.Int) (bool, error) {
	if commitment == nil {
		return false, errors.New("承诺值为空")
	}
	computed, err := ComputeCommitmentDigest(hasher, digestMode, field, data, nonce)
	if err != nil {
		return false, err
	}
	return computed.Cmp(canonicalResidue(field, commitment)) == 0, nil
}

// Fingerprint 标量的Base58短指纹（Hash160压缩规范字节表示到20字节）
//
// 展示与人工比对用：同一域元素的指纹一致
func Fingerprint(hasher cryptointf.HashManager, field, v *big.Int) string {
	return base58.Encode(hasher.Hash160(canonicalBytes(field, v)))
}
