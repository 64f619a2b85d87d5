package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/internal/httpapi"
	"github.com/MarkoPoloResearchLab/lodging/internal/oplog"
	"github.com/MarkoPoloResearchLab/lodging/internal/timelinecache"
	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagListenAddr     = "listen-addr"
	flagAllowedOrigins = "allowed-origins"
	flagJWTSigningKey  = "jwt-signing-key"
	flagJWTIssuer      = "jwt-issuer"
	flagJWTCookieName  = "jwt-cookie-name"
	flagRequestTimeout = "request-timeout"
	flagRedisAddr      = "redis-addr"
	flagRedisPassword  = "redis-password"
	flagRedisDB        = "redis-db"
	flagCacheTTL       = "cache-ttl"
	flagCachePrefix    = "cache-prefix"
)

type serveConfig struct {
	Database      databaseConfig
	HTTP          httpapi.Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CachePrefix   string
}

func newServeCommand() *cobra.Command {
	cfg := &serveConfig{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lodging HTTP API",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadServeConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	addDatabaseFlags(cmd)
	cmd.Flags().String(flagListenAddr, "", "HTTP listen address (default :8080)")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated list of allowed CORS origins")
	cmd.Flags().String(flagJWTSigningKey, "", "TAuth JWT signing key (required)")
	cmd.Flags().String(flagJWTIssuer, "", "expected JWT issuer (default tauth)")
	cmd.Flags().String(flagJWTCookieName, "", "session cookie name (default app_session)")
	cmd.Flags().Duration(flagRequestTimeout, 0, "per-request store timeout (default 5s)")
	cmd.Flags().String(flagRedisAddr, "", "Redis address for the timeline cache; empty disables caching")
	cmd.Flags().String(flagRedisPassword, "", "Redis password")
	cmd.Flags().Int(flagRedisDB, 0, "Redis database number")
	cmd.Flags().Duration(flagCacheTTL, 0, "timeline cache entry lifetime (default 10m)")
	cmd.Flags().String(flagCachePrefix, "", "timeline cache key prefix (default lodging)")

	return cmd
}

func loadServeConfig(cmd *cobra.Command, cfg *serveConfig) error {
	v, err := bindFlags(cmd,
		flagDatabaseURL, flagStoreDriver, flagListenAddr, flagAllowedOrigins, flagJWTSigningKey, flagJWTIssuer,
		flagJWTCookieName, flagRequestTimeout, flagRedisAddr, flagRedisPassword, flagRedisDB, flagCacheTTL, flagCachePrefix,
	)
	if err != nil {
		return err
	}
	if cfg.Database, err = loadDatabaseConfig(v); err != nil {
		return err
	}
	cfg.HTTP = httpapi.Config{
		ListenAddr:        v.GetString(flagListenAddr),
		AllowedOrigins:    httpapi.ParseAllowedOrigins(v.GetString(flagAllowedOrigins)),
		SessionSigningKey: v.GetString(flagJWTSigningKey),
		SessionIssuer:     v.GetString(flagJWTIssuer),
		SessionCookieName: v.GetString(flagJWTCookieName),
		RequestTimeout:    v.GetDuration(flagRequestTimeout),
	}
	if err := cfg.HTTP.Validate(); err != nil {
		return err
	}
	cfg.RedisAddr = strings.TrimSpace(v.GetString(flagRedisAddr))
	cfg.RedisPassword = v.GetString(flagRedisPassword)
	cfg.RedisDB = v.GetInt(flagRedisDB)
	cfg.CacheTTL = v.GetDuration(flagCacheTTL)
	cfg.CachePrefix = v.GetString(flagCachePrefix)
	return nil
}

func runServe(ctx context.Context, cfg *serveConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, closeStore, err := openLodgingStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	options := []lodging.ServiceOption{lodging.WithOperationLogger(oplog.New(logger))}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		cache, err := timelinecache.New(timelinecache.Config{Client: client, Prefix: cfg.CachePrefix, TTL: cfg.CacheTTL})
		if err != nil {
			return err
		}
		options = append(options, lodging.WithTimelineCache(cache))
		logger.Info("timeline cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	service, err := lodging.NewService(store, func() time.Time { return time.Now().UTC() }, options...)
	if err != nil {
		return fmt.Errorf("lodging service init: %w", err)
	}
	return httpapi.Run(ctx, cfg.HTTP, service, logger)
}
