package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cartsync"
	"github.com/aretw0/cartsync/internal/config"
	"github.com/aretw0/cartsync/pkg/adapters/dynamodb"
	"github.com/aretw0/cartsync/pkg/adapters/file"
	"github.com/aretw0/cartsync/pkg/adapters/memory"
	"github.com/aretw0/cartsync/pkg/adapters/redis"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aretw0/cartsync/pkg/persistence/middleware"
	"github.com/aretw0/cartsync/pkg/ports"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Closer releases resources held by an opened store.
type Closer func() error

func noopCloser() error { return nil }

// OpenStore builds the identity medium described by cfg, wrapped with the
// namespace and encryption middlewares when configured.
func OpenStore(ctx context.Context, cfg config.IdentityConfig) (ports.KeyValueStore, Closer, error) {
	var (
		store  ports.KeyValueStore
		closer Closer = noopCloser
	)

	switch cfg.Store {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.File.Path)
	case config.StoreRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
		}
		store, closer = rs, rs.Close
	case config.StoreDynamoDB:
		client, err := newDynamoClient(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, nil, err
		}
		store = dynamodb.New(client, cfg.DynamoDB.Table,
			dynamodb.WithPrefix(cfg.DynamoDB.Prefix),
			dynamodb.WithTTL(cfg.DynamoDB.TTL),
		)
	default:
		return nil, nil, fmt.Errorf("unknown identity store %q", cfg.Store)
	}

	mws := []middleware.Middleware{}
	if cfg.Namespace != "" {
		mws = append(mws, middleware.NewNamespaceMiddleware(cfg.Namespace))
	}
	if cfg.EncryptionKey != "" {
		key, err := (config.Config{Identity: cfg}).EncryptionKey()
		if err != nil {
			_ = closer()
			return nil, nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	return middleware.Chain(store, mws...), closer, nil
}

func newDynamoClient(ctx context.Context, cfg config.DynamoDBConfig) (*awsdynamodb.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewSandbox builds the in-memory storefront backend.
func NewSandbox(cfg config.SandboxConfig) (*memory.Backend, error) {
	catalog, err := memory.LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	opts := []memory.BackendOption{memory.WithCatalog(catalog)}
	if cfg.BaseURL != "" {
		opts = append(opts, memory.WithBaseURL(cfg.BaseURL))
	}
	return memory.NewBackend(opts...), nil
}

// App bundles what the commands need.
type App struct {
	Config  config.Config
	Cart    *cartsync.Cart
	Sandbox *memory.Backend
	Logger  *slog.Logger
	Close   Closer
}

// BuildOptions are the per-command extras layered over the config.
type BuildOptions struct {
	Hooks     domain.LifecycleHooks
	Navigator ports.Navigator
	Debug     bool
}

// Build wires config, identity medium, sandbox backend and cart. The cart
// is returned unstarted.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts BuildOptions) (*App, error) {
	store, closer, err := OpenStore(ctx, cfg.Identity)
	if err != nil {
		return nil, err
	}

	sandbox, err := NewSandbox(cfg.Sandbox)
	if err != nil {
		_ = closer()
		return nil, err
	}

	mode, err := cfg.LockMode()
	if err != nil {
		_ = closer()
		return nil, err
	}

	hooks := opts.Hooks
	if opts.Debug {
		hooks = WithDebugHooks(hooks, logger)
	}

	cartOpts := []cartsync.Option{
		cartsync.WithLogger(logger),
		cartsync.WithIdentityKey(cfg.Identity.Key),
		cartsync.WithLockMode(mode),
		cartsync.WithCallTimeout(cfg.Sync.CallTimeout),
		cartsync.WithReconcileOnMutation(cfg.Sync.ReconcileOnMutation),
		cartsync.WithLifecycleHooks(hooks),
	}
	if opts.Navigator != nil {
		cartOpts = append(cartOpts, cartsync.WithNavigator(opts.Navigator))
	}

	cart, err := cartsync.New(sandbox, store, cartOpts...)
	if err != nil {
		_ = closer()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Cart:    cart,
		Sandbox: sandbox,
		Logger:  logger,
		Close:   closer,
	}, nil
}
