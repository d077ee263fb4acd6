package http

import (
	"go.uber.org/fx"
)

// Module 返回HTTP服务模块
//
// NewServer内部向fx生命周期注册启停钩子；fx.Invoke确保即使没有
// 其他组件引用*Server，服务器也会被实例化并随应用启动。
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(NewServer),
		fx.Invoke(func(*Server) {}),
	)
}
