package identities

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
)

// RepositoryOption configures identity repository construction.
type RepositoryOption func(*RepositoryOptions)

// RepositoryOptions captures optional behavior for identity persistence.
type RepositoryOptions struct {
	CacheEnabled bool
	CacheConfig  *cache.Config
}

// WithCache toggles the repository cache decorator. Identity lookups sit on
// the login path for mandatory-verification deployments, so hosts may want
// reads cached.
func WithCache(enabled bool) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheEnabled = enabled
	}
}

// WithCacheConfig supplies the cache configuration to use when caching is enabled.
func WithCacheConfig(cfg cache.Config) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheConfig = &cfg
	}
}

func applyRepositoryOptions(options []RepositoryOption) RepositoryOptions {
	var opts RepositoryOptions
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return opts
}

func maybeWrapCache(repo repository.Repository[*Record], opts RepositoryOptions) repository.Repository[*Record] {
	if !opts.CacheEnabled || repo == nil {
		return repo
	}
	if _, ok := repo.(*repositorycache.CachedRepository[*Record]); ok {
		return repo
	}
	cfg := cache.DefaultConfig()
	if opts.CacheConfig != nil {
		cfg = *opts.CacheConfig
	}
	service, err := cache.NewCacheService(cfg)
	if err != nil {
		return repo
	}
	return repositorycache.New(repo, service, cache.NewDefaultKeySerializer())
}
