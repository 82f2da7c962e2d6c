package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hexagonal/api"
	"hexagonal/config"
	"hexagonal/pkg/logger"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

// App HTTP 服务进程
type App struct {
	config *config.Config
	router *api.Router
	server *http.Server
	infra  *Infrastructure // 只在 Build 自己打开连接时非 nil
}

// Run 启动服务，ctx 取消后优雅关闭
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("addr", a.server.Addr),
			zap.String("health", "/api/v1/health"),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.close()
			return fmt.Errorf("server failed: %w", err)
		}
		a.close()
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.close()
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// Handler 用于测试，不经过网络
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) close() {
	if a.infra != nil {
		a.infra.Close()
	}
}
