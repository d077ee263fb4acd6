// Package crypto 提供zkredit系统的哈希计算接口定义
//
// #️⃣ **哈希计算服务 (Hash Computation Service)**
//
// 证明系统中的哈希用途：
// - SHA256：承诺谓词的数据摘要、验证密钥指纹、验证结果缓存键
// - Keccak256：与以太坊生态对齐的承诺摘要模式
// - Hash160：承诺值的短指纹（RIPEMD160压缩SHA256，配合Base58展示）
//
// 🔗 **组件关系**
// - 被数据承诺工具、可信设置指纹计算和验证缓存使用
package crypto

// HashManager 定义哈希计算相关接口
type HashManager interface {
	// SHA256 计算SHA-256摘要（32字节）
	SHA256(data []byte) []byte

	// Keccak256 计算Keccak-256摘要（32字节，以太坊惯用的非NIST填充变体）
	Keccak256(data []byte) []byte

	// Hash160 计算RIPEMD160(SHA256(data))短摘要（20字节）
	Hash160(data []byte) []byte
}
