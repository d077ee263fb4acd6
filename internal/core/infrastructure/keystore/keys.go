package keystore

import "fmt"

// 可信设置键布局：
//
//	setup:<predicate>:<scheme>:<curve>:k<k>:<part>
//
// 谓词名自带电路版本（如 threshold.v1），电路升级后新旧设置的键自然分离。
// 同一形状的三个部件（ccs/pk/vk）共享前缀，合称一个设置包。

const setupKeyPrefix = "setup:"

// 设置包部件名
const (
	PartConstraintSystem = "ccs" // 编译后的约束系统
	PartProvingKey       = "pk"  // 证明密钥（体积最大）
	PartVerifyingKey     = "vk"  // 验证密钥
)

// SetupKey 构造设置部件的存储键
func SetupKey(predicate, scheme, curve string, k int, part string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s:k%d:%s", setupKeyPrefix, predicate, scheme, curve, k, part))
}

// BundlePrefix 构造设置包的共同前缀，用于按形状扫描或清理
func BundlePrefix(predicate, scheme, curve string, k int) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s:k%d:", setupKeyPrefix, predicate, scheme, curve, k))
}

// AllSetupsPrefix 返回所有设置记录的共同前缀
func AllSetupsPrefix() []byte {
	return []byte(setupKeyPrefix)
}
