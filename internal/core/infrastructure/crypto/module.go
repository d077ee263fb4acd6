// Package crypto 提供加密相关功能
package crypto

import (
	"github.com/zkredit/v1/internal/core/infrastructure/crypto/hash"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	"go.uber.org/fx"
)

// CryptoParams 定义加密模块的依赖参数
type CryptoParams struct {
	fx.In
}

// CryptoOutput 定义加密模块的输出结构
type CryptoOutput struct {
	fx.Out

	HashManager crypto.HashManager
}

// Module 返回加密模块
func Module() fx.Option {
	return fx.Module("crypto",
		// 提供加密服务
		fx.Provide(ProvideCryptoServices),
	)
}

// ProvideCryptoServices 提供加密服务
func ProvideCryptoServices(params CryptoParams) (CryptoOutput, error) {
	return CryptoOutput{
		HashManager: hash.NewHashService(),
	}, nil
}
