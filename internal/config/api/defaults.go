package api

import "time"

// 本地HTTP服务默认配置值
const (
	// defaultListenAddr 默认监听地址设为127.0.0.1:8991
	// 原因：证明服务处理的是用户隐私数据，默认只接受本机连接
	// 需要对外暴露时由用户显式配置0.0.0.0并自行承担网络层防护
	defaultListenAddr = "127.0.0.1:8991"

	// defaultEnableMetrics 默认启用Prometheus指标端点
	// 原因：证明生成耗时从百毫秒到分钟不等，延迟分布是容量规划的关键输入
	// 指标端点与业务端点同端口，不增加暴露面
	defaultEnableMetrics = true

	// defaultRequestTimeout 单请求超时设为300秒
	// 原因：桌面档位（k=16）的证明生成可能超过一分钟，低端硬件更慢
	// 300秒覆盖最坏情况，超时后请求方收到明确的超时错误而非悬挂
	defaultRequestTimeout = 300 * time.Second

	// defaultReadTimeout 读取超时设为15秒
	// 原因：请求体只是JSON编码的公开参数和秘密输入，正常情况下毫秒级读完
	// 防止慢客户端长时间占用连接
	defaultReadTimeout = 15 * time.Second

	// defaultWriteTimeout 写入超时设为320秒
	// 原因：必须大于RequestTimeout，否则证明生成完成后响应可能写不出去
	defaultWriteTimeout = 320 * time.Second

	// defaultMaxRequestSize 最大请求体大小设为4MB
	// 原因：承诺谓词的原始数据可达数百KB，4MB留足余量同时防止内存滥用
	defaultMaxRequestSize = int64(4 * 1024 * 1024)
)
