package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/cache"
	"github.com/bara-directory/seeder/internal/config"
	"github.com/bara-directory/seeder/internal/database"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/notify"
	"github.com/bara-directory/seeder/internal/pipeline"
	"github.com/bara-directory/seeder/internal/repository"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/rest"
	"github.com/bara-directory/seeder/internal/service"
	"github.com/bara-directory/seeder/internal/sink"
	"github.com/bara-directory/seeder/internal/storage"
)

// Stack is the infrastructure shared by the API server and the CLI. Optional
// parts are nil when their configuration is empty.
type Stack struct {
	Destination service.Destination
	// Lister is set only for the postgres destination.
	Lister   service.BusinessLister
	Cache    *cache.RedisClient
	Notifier notify.Notifier
	Storage  storage.StorageService

	// identity names the destination database for cache namespacing.
	identity string
	closers  []func() error
}

// Options tunes Open.
type Options struct {
	Mode sink.Mode
	// DryRun forces the in-memory destination.
	DryRun bool
	// HTTPClient is used by the REST destination; nil builds one with
	// HTTP_TIMEOUT.
	HTTPClient *http.Client
}

// Open picks the destination (postgres when DATABASE_URL is set, the REST API
// when Supabase is configured, memory otherwise) and connects the optional
// cache, notifier and artifact store.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Stack, error) {
	s := &Stack{Notifier: notify.Noop{}}
	if err := s.openDestination(ctx, cfg, opts); err != nil {
		s.Close()
		return nil, err
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.RedisURL, s.CacheNamespace(), cfg.CacheTTL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.Cache = client
		s.closers = append(s.closers, client.Close)
	}

	if cfg.NatsURL != "" {
		notifier, err := notify.NewNatsNotifier(cfg.NatsURL, cfg.NatsSubject)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		s.Notifier = notifier
		s.closers = append(s.closers, notifier.Close)
	}

	store, closeStore, err := OpenStorage(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Storage = store
	s.closers = append(s.closers, closeStore)

	log.Info().
		Str("destination", s.Destination.Name()).
		Bool("redis", s.Cache != nil).
		Bool("nats", cfg.NatsURL != "").
		Bool("artifacts", s.Storage != nil).
		Msg("infrastructure ready")
	return s, nil
}

func (s *Stack) openDestination(ctx context.Context, cfg *config.Config, opts Options) error {
	mode := opts.Mode
	if mode == "" {
		mode = sink.ModeInsert
	}

	switch {
	case opts.DryRun:
		s.Destination = sink.NewMemory(mode)
	case cfg.DatabaseURL != "":
		pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBTrace)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		repo := repository.NewPGXDirectoryRepository(pool, mode)
		s.Destination, s.Lister = repo, repo
		s.identity = postgresIdentity(cfg.DatabaseURL)
	case cfg.SupabaseURL != "":
		client, err := rest.NewClient(opts.HTTPClient, cfg.SupabaseURL, cfg.SupabaseKey, cfg.HTTPTimeout)
		if err != nil {
			return err
		}
		s.Destination = rest.NewDirectory(client, mode)
		s.identity = strings.ToLower(strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/"))
	default:
		log.Warn().Msg("no DATABASE_URL or SUPABASE_URL configured, writing to memory")
		s.Destination = sink.NewMemory(mode)
	}
	return nil
}

// CacheNamespace is the Redis key prefix for the destination. Lookup ids and
// the run lock are scoped to one database, so destinations sharing a Redis
// server never see each other's ids.
func (s *Stack) CacheNamespace() string {
	sum := sha256.Sum256([]byte(s.identity))
	return "seeder:" + s.Destination.Name() + ":" + hex.EncodeToString(sum[:6])
}

// postgresIdentity reduces a connection string to host, port and database
// name, so credentials and connection options do not split the namespace.
func postgresIdentity(dsn string) string {
	pc, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return dsn
	}
	return strings.ToLower(pc.Host) + ":" + strconv.Itoa(int(pc.Port)) + "/" + pc.Database
}

// OpenStorage returns the artifact store: a GCS bucket when GCS_BUCKET is set,
// otherwise ARTIFACT_DIR on local disk. Both empty yields a nil store.
func OpenStorage(ctx context.Context, cfg *config.Config) (storage.StorageService, func() error, error) {
	switch {
	case cfg.GCSBucket != "":
		gcs, err := storage.NewGCSStorage(ctx, storage.GCSConfig{Bucket: cfg.GCSBucket, CredentialsFile: cfg.GCSCredentialsFile})
		if err != nil {
			return nil, nil, err
		}
		return gcs, gcs.Close, nil
	case cfg.ArtifactDir != "":
		return storage.NewLocalStorage(cfg.ArtifactDir), func() error { return nil }, nil
	}
	return nil, func() error { return nil }, nil
}

// Resolver builds a lookup resolver for the destination. The shared cache is
// skipped for the memory destination, whose ids do not outlive the process.
func (s *Stack) Resolver(describe resolver.Describer, lookupOnly ...entity.LookupKind) *resolver.Resolver {
	opts := []resolver.Option{resolver.WithDescriber(describe)}
	if len(lookupOnly) > 0 {
		opts = append(opts, resolver.WithLookupOnly(lookupOnly...))
	}
	if s.Cache != nil && s.Destination.Name() != "memory" {
		opts = append(opts, resolver.WithSharedCache(s.Cache))
	}
	return resolver.New(s.Destination, opts...)
}

// RunnerOptions fills the runner collaborators that come from the stack.
func (s *Stack) RunnerOptions(cfg *config.Config, mode sink.Mode) service.RunnerOptions {
	opts := service.RunnerOptions{
		Mode:     mode,
		Retry:    RetryPolicy(cfg.Retry),
		LockTTL:  cfg.LockTTL,
		Notifier: s.Notifier,
	}
	if s.Cache != nil {
		opts.Locker = s.Cache
	}
	return opts
}

// Close releases every connection opened by Open, in reverse order.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("failed to close resource")
		}
	}
	s.closers = nil
}

// RetryPolicy retries transient destination errors only.
func RetryPolicy(cfg config.RetryConfig) pipeline.RetryPolicy {
	return pipeline.RetryPolicy{
		Attempts:  cfg.Attempts,
		Initial:   cfg.Backoff,
		Max:       cfg.MaxBackoff,
		Retryable: sink.IsTransient,
	}
}
