package discovery

import (
	"fmt"
	"strings"

	redisbloom "github.com/RedisBloom/redisbloom-go"
	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
)

const (
	approxItems = 1_000_000
	errorRate   = 0.01
)

// SeenFilter remembers URLs across discovery runs.
type SeenFilter interface {
	Add(url string) error
	Exists(url string) (bool, error)
}

type BloomFilter struct {
	client *redisbloom.Client
	name   string
}

func NewRedisBloomFilter(cfg *config.RedisConfig, logger logging.Logger) (*BloomFilter, error) {
	var pass *string
	if cfg.Password != "" {
		pass = &cfg.Password
	}
	client := redisbloom.NewClient(cfg.Host, "seo_audit", pass)
	if err := client.Reserve(cfg.BloomName, errorRate, approxItems); err != nil {
		if strings.Contains(err.Error(), "item exists") {
			logger.Debug("bloom filter already reserved", logging.String("filter", cfg.BloomName))
		} else {
			return nil, fmt.Errorf("could not reserve bloom filter: %w", err)
		}
	}
	return &BloomFilter{client: client, name: cfg.BloomName}, nil
}

func (r *BloomFilter) Add(url string) error {
	_, err := r.client.Add(r.name, url)
	return err
}

func (r *BloomFilter) Exists(url string) (bool, error) {
	exists, err := r.client.Exists(r.name, url)
	if err != nil {
		return false, fmt.Errorf("failed to check bloom filter: %w", err)
	}
	return exists, nil
}
