package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/beaconworks/kb-chat-api/config"
	"github.com/beaconworks/kb-chat-api/internal/adapters/blobstore"
	"github.com/beaconworks/kb-chat-api/internal/adapters/devauth"
	"github.com/beaconworks/kb-chat-api/internal/adapters/directory"
	"github.com/beaconworks/kb-chat-api/internal/adapters/model"
	"github.com/beaconworks/kb-chat-api/internal/adapters/oidc"
	"github.com/beaconworks/kb-chat-api/internal/adapters/rediscache"
	"github.com/beaconworks/kb-chat-api/internal/adapters/roleclaim"
	"github.com/beaconworks/kb-chat-api/internal/adapters/upstream"
	"github.com/beaconworks/kb-chat-api/internal/ports"
	"github.com/beaconworks/kb-chat-api/internal/service"
)

// ServiceDeps contains the external dependencies for building services.
type ServiceDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
}

// ServiceContainer holds the wired application services plus the shared
// infrastructure handles that need closing on shutdown.
type ServiceContainer struct {
	Chat          *service.ChatService
	Stats         *service.StatsService
	Auth          *service.AuthService
	Upstream      *upstream.Client
	Directory     ports.Directory
	RoleExtractor ports.RoleExtractor

	bucket *blob.Bucket
	redis  redis.UniversalClient
}

// NewServices wires adapters and services from configuration. Optional
// integrations (knowledge bucket, directory, cache, upstream) stay nil when
// unconfigured; the services degrade per endpoint instead of failing boot.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service dependencies are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &ServiceContainer{}

	extractor, err := roleclaim.New(cfg.Auth.RoleClaim)
	if err != nil {
		return nil, fmt.Errorf("compile role claim expression: %w", err)
	}
	c.RoleExtractor = extractor

	if cfg.Directory.Enabled() {
		dir, dirErr := directory.New(ctx, directory.Options{
			UserPoolID: cfg.Directory.UserPoolID,
			Region:     cfg.Directory.Region,
			Timeout:    time.Duration(cfg.Directory.TimeoutSeconds) * time.Second,
			Logger:     logger,
		})
		if dirErr != nil {
			return nil, fmt.Errorf("build directory client: %w", dirErr)
		}
		c.Directory = dir
	} else {
		logger.Warn("identity directory not configured, admin stats and signup confirmation disabled")
	}

	var cache ports.StatsCache
	if cfg.Cache.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			return nil, fmt.Errorf("connect redis: %w", pingErr)
		}
		c.redis = client
		cache = rediscache.New(client)
	}

	provider, err := buildAuthProvider(cfg)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		c.Auth = service.NewAuthService(service.AuthServiceOptions{
			Provider:  provider,
			Directory: c.Directory,
		})
	} else {
		logger.Warn("auth provider not configured, login routes disabled")
	}

	c.Stats = service.NewStatsService(service.StatsServiceOptions{
		Directory: c.Directory,
		Cache:     cache,
		CacheTTL:  cfg.Cache.StatsTTL,
		Logger:    logger,
	})

	if cfg.ChatUpstreamURL != "" {
		c.Upstream = upstream.New(cfg.ChatUpstreamURL, time.Duration(cfg.HTTP.ChatTimeoutSeconds)*time.Second)
		logger.Info("chat upstream configured, ask requests will be forwarded", "url", cfg.ChatUpstreamURL)
		return c, nil
	}

	var store ports.KnowledgeStore
	if cfg.Knowledge.BucketURL != "" {
		bucket, openErr := blob.OpenBucket(ctx, cfg.Knowledge.BucketURL)
		if openErr != nil {
			return nil, fmt.Errorf("open knowledge bucket: %w", openErr)
		}
		c.bucket = bucket
		store = blobstore.New(bucket, blobstore.Options{
			Prefix:      cfg.Knowledge.Prefix,
			Concurrency: cfg.Knowledge.FetchConcurrency,
			MaxDocs:     cfg.Knowledge.MaxDocs,
			Timeout:     time.Duration(cfg.Knowledge.TimeoutSeconds) * time.Second,
			Logger:      logger,
		})
	} else {
		logger.Warn("knowledge bucket not configured, answering without context documents")
	}

	var generator ports.AnswerGenerator
	if cfg.Model.APIKey != "" {
		generator = model.New(model.Options{
			APIKey:      cfg.Model.APIKey,
			Model:       cfg.Model.Name,
			MaxTokens:   cfg.Model.MaxTokens,
			Temperature: cfg.Model.Temperature,
			Timeout:     time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
		})
	} else {
		logger.Warn("model API key not configured, ask requests will fail with a configuration error")
	}

	c.Chat = service.NewChatService(service.ChatServiceOptions{
		Store:             store,
		Generator:         generator,
		MaxQuestionLength: cfg.Auth.MaxQuestionLength,
		Logger:            logger,
	})

	return c, nil
}

// Close releases infrastructure handles owned by the container.
func (c *ServiceContainer) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.bucket != nil {
		if err := c.bucket.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close knowledge bucket: %w", err))
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildAuthProvider(cfg *config.AppConfig) (ports.AuthProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeDev:
		if !cfg.IsDev {
			return nil, errors.New("dev auth mode requires DEV=true")
		}
		return devauth.NewProvider(devauth.Config{
			Username:  cfg.Auth.DevAuth.Sub,
			Email:     cfg.Auth.DevAuth.Email,
			Role:      cfg.Auth.DevAuth.Role,
			RoleClaim: strings.Trim(cfg.Auth.RoleClaim, `"`),
		})
	case config.AuthModeOAuth:
		if cfg.Auth.OAuth.ClientID == "" {
			// Login routes stay unwired; bearer-token access still works.
			return nil, nil
		}
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			RedirectURL:  cfg.Auth.OAuth.RedirectURL,
			Scope:        cfg.Auth.OAuth.Scope,
			IssuerURL:    cfg.Auth.OAuth.DiscoveryURL,
			LogoutURL:    cfg.Auth.OAuth.LogoutURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build OIDC provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
