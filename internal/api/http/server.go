// Package http 实现证明服务的本地HTTP接口
//
// 这是面向托管消费者的适配层：JSON进出，无需手工管理缓冲区所有权
// （非托管调用方使用cmd/libzkredit的C ABI）。默认只监听本机回环地址，
// 请求体中的秘密输入不离开本进程。
package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/zkredit/v1/internal/api/http/handlers"
	"github.com/zkredit/v1/internal/api/http/middleware"
	apiconfig "github.com/zkredit/v1/internal/config/api"
	"github.com/zkredit/v1/internal/core/proofsys"
	configintf "github.com/zkredit/v1/pkg/interfaces/config"
	cryptointf "github.com/zkredit/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/zkredit/v1/pkg/interfaces/infrastructure/log"
)

// Server 本地HTTP服务器
type Server struct {
	router     *gin.Engine    // Gin路由引擎
	httpServer *http.Server   // 标准HTTP服务器
	listener   net.Listener   // 监听套接字（启动时绑定，端口冲突立即暴露）
	options    *apiconfig.APIOptions
	logger     log.Logger

	systemHandler     *handlers.SystemHandler
	proofHandler      *handlers.ProofHandler
	batchHandler      *handlers.BatchHandler
	commitmentHandler *handlers.CommitmentHandler
}

// NewServer 创建本地HTTP服务器
//
// 在fx依赖注入系统中注册，自动接收所需依赖并挂接生命周期钩子。
func NewServer(
	lifecycle fx.Lifecycle,
	config configintf.Provider,
	logger log.Logger,
	manager *proofsys.Manager,
	batch *proofsys.BatchService,
	hashManager cryptointf.HashManager,
) *Server {
	options := config.GetAPI()

	// CLI模式下抑制gin自身的控制台输出，避免破坏pterm界面
	if os.Getenv("ZKR_CLI_MODE") == "true" {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
	}

	router := gin.New()

	server := &Server{
		router:  router,
		options: options,
		logger:  logger,

		systemHandler:     handlers.NewSystemHandler(manager, logger),
		proofHandler:      handlers.NewProofHandler(manager, options.RequestTimeout, logger),
		batchHandler:      handlers.NewBatchHandler(batch, logger),
		commitmentHandler: handlers.NewCommitmentHandler(manager, hashManager, logger),
	}
	server.setupRoutes()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})

	return server
}

// setupRoutes 注册中间件和全部API端点
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.NewAccessLog(s.logger).Middleware())
	if s.options.EnableMetrics {
		s.router.Use(middleware.NewMetrics().Middleware())
	}
	s.router.Use(s.limitRequestBody())

	// 健康检查与指标（无认证、无业务逻辑）
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.options.EnableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := s.router.Group("/api/v1")

	// 系统生命周期
	v1.POST("/system/initialize", s.systemHandler.Initialize)
	v1.GET("/system/status", s.systemHandler.Status)
	v1.GET("/system/device", s.systemHandler.Device)

	// 证明生成与验证
	v1.POST("/proofs", s.proofHandler.Generate)
	v1.POST("/proofs/verify", s.proofHandler.Verify)
	v1.POST("/mock", s.proofHandler.Mock)

	// 承诺辅助
	v1.POST("/commitments", s.commitmentHandler.Compute)

	// 批量任务
	v1.POST("/batch/tasks", s.batchHandler.Submit)
	v1.POST("/batch/tasks/bulk", s.batchHandler.SubmitBatch)
	v1.GET("/batch/tasks/:id", s.batchHandler.GetTask)
	v1.DELETE("/batch/tasks/:id", s.batchHandler.CancelTask)
	v1.GET("/batch/stats", s.batchHandler.GetStats)

	s.logger.Info("HTTP路由注册完成")
}

// limitRequestBody 请求体大小限制中间件
func (s *Server) limitRequestBody() gin.HandlerFunc {
	maxSize := s.options.MaxRequestSize
	return func(c *gin.Context) {
		if maxSize > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}

// Start 启动HTTP服务器
//
// 先用net.Listen绑定端口再起服务协程：端口冲突在启动阶段立即报错，
// 而不是在后台协程里静默失败。
func (s *Server) Start() error {
	addr := s.options.ListenAddr

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.logger.Errorf("HTTP服务器端口绑定失败: addr=%s, err=%v", addr, err)
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()

	s.logger.Infof("✅ HTTP服务器已启动: http://%s/api/v1/", listener.Addr())
	return nil
}

// Stop 优雅关闭HTTP服务器（等待进行中的请求完成，上限5秒）
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}

	s.logger.Info("HTTP服务器已关闭")
	return nil
}

// Addr 返回实际监听地址（测试用，支持:0随机端口）
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
