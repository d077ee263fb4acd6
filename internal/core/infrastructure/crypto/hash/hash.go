// Package hash 实现证明系统的哈希计算服务
package hash

import (
	"crypto/sha256"
	"sync"

	cryptointf "github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// 确保HashService实现了cryptointf.HashManager接口
var _ cryptointf.HashManager = (*HashService)(nil)

// 缓存键的算法前缀：同一输入在不同算法下的结果互不串扰
const (
	algoSHA256    = "sha256:"
	algoKeccak256 = "keccak256:"
	algoHash160   = "hash160:"
)

// HashService 哈希计算服务
//
// 同一份承诺数据在prove与verify两条链路上会被反复哈希，
// 结果按输入摘要缓存，存取均为副本。
type HashService struct {
	mu    sync.RWMutex
	cache map[string][]byte
}

// NewHashService 创建哈希服务
func NewHashService() *HashService {
	return &HashService{
		cache: make(map[string][]byte),
	}
}

// digest 查缓存，未命中时计算并回填
//
// 缓存键用算法前缀+输入的SHA256摘要，大输入不直接做键
func (s *HashService) digest(prefix string, data []byte, compute func([]byte) []byte) []byte {
	sum := sha256.Sum256(data)
	key := prefix + string(sum[:])

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		out := make([]byte, len(cached))
		copy(out, cached)
		return out
	}

	result := compute(data)

	stored := make([]byte, len(result))
	copy(stored, result)
	s.mu.Lock()
	s.cache[key] = stored
	s.mu.Unlock()

	return result
}

// SHA256 计算SHA-256摘要
//
// 用途：承诺谓词的数据摘要、验证密钥指纹、验证结果缓存键
func (s *HashService) SHA256(data []byte) []byte {
	return s.digest(algoSHA256, data, func(in []byte) []byte {
		sum := sha256.Sum256(in)
		return sum[:]
	})
}

// Keccak256 计算Keccak-256摘要
//
// 以太坊惯用的非NIST填充变体，承诺谓词的keccak256摘要模式使用
func (s *HashService) Keccak256(data []byte) []byte {
	return s.digest(algoKeccak256, data, func(in []byte) []byte {
		hasher := sha3.NewLegacyKeccak256()
		hasher.Write(in)
		return hasher.Sum(nil)
	})
}

// Hash160 计算RIPEMD160(SHA256(data))短摘要
//
// 20字节输出配合Base58得到紧凑的人工比对指纹
func (s *HashService) Hash160(data []byte) []byte {
	return s.digest(algoHash160, data, func(in []byte) []byte {
		sum := sha256.Sum256(in)
		hasher := ripemd160.New()
		hasher.Write(sum[:])
		return hasher.Sum(nil)
	})
}
