package fetcher

import "time"

type Config struct {
	// PageTimeout bounds a page GET.
	PageTimeout time.Duration
	// AssetTimeout bounds an asset HEAD.
	AssetTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PageTimeout:  10 * time.Second,
		AssetTimeout: 5 * time.Second,
	}
}
