package cmd

import (
	"context"
	"fmt"
	"net/http"

	"hexagonal/api"
	"hexagonal/api/health"
	apiorder "hexagonal/api/order"
	apiuser "hexagonal/api/user"
	orderapp "hexagonal/application/order"
	userapp "hexagonal/application/user"
	"hexagonal/config"
	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/gormdb"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/infrastructure/persistence/retry"
	"hexagonal/pkg/logger"

	"go.uber.org/zap"
)

// AppBuilder builds an App with customizable components
type AppBuilder struct {
	cfg     *config.Config
	infra   *Infrastructure
	sink    shared.EventSink
	userGen idgen.Generator[user.ID]
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithInfrastructure 使用已打开的连接，不再按配置连接
func (b *AppBuilder) WithInfrastructure(infra *Infrastructure) *AppBuilder {
	b.infra = infra
	return b
}

// WithEventSink 替换默认的 outbox sink
func (b *AppBuilder) WithEventSink(sink shared.EventSink) *AppBuilder {
	b.sink = sink
	return b
}

// WithUserIDGenerator 替换按配置构建的用户标识符生成器
func (b *AppBuilder) WithUserIDGenerator(gen idgen.Generator[user.ID]) *AppBuilder {
	b.userGen = gen
	return b
}

// Build creates the App instance
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	logger.Info("Building application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env),
		zap.String("database", b.cfg.Database.Type),
	)

	infra := b.infra
	owned := false
	if infra == nil {
		var err error
		if infra, err = OpenInfrastructure(ctx, b.cfg); err != nil {
			return nil, err
		}
		owned = true
	}
	fail := func(err error) (*App, error) {
		if owned {
			infra.Close()
		}
		return nil, err
	}

	userGen := b.userGen
	if userGen == nil {
		gen, err := infra.UserIDGenerator(b.cfg)
		if err != nil {
			return fail(fmt.Errorf("failed to build user id generator: %w", err))
		}
		userGen = gen
	}
	orderGen := idgen.Instrument[order.ID](idgen.NewUUIDGenerator[order.Kind](), order.AggregateKind)

	outbox := gormdb.NewOutboxRepository(infra.DB)
	sink := b.sink
	if sink == nil {
		sink = gormdb.NewOutboxSink(outbox)
	}

	// 仓储本身不发布事件，由工作单元在提交后统一发布
	userRepo := gormdb.NewUserRepository(infra.DB, userGen, nil)
	orderRepo := gormdb.NewOrderRepository(infra.DB, orderGen, nil)
	uowFactory := gormdb.NewUnitOfWorkFactory(infra.DB, sink, retry.FromAppConfig(b.cfg))

	userService := userapp.NewApplicationService(userRepo, orderRepo, uowFactory)
	orderService := orderapp.NewApplicationService(orderRepo, userRepo, uowFactory)

	router := api.NewRouter(b.cfg,
		health.NewController(b.cfg, infra.DB, outbox),
		apiuser.NewController(userService),
		apiorder.NewController(orderService),
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	app := &App{
		config: b.cfg,
		router: router,
		server: server,
	}
	if owned {
		app.infra = infra
	}
	return app, nil
}
