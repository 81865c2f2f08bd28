// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"risk-workers/internal/common/config"
	"risk-workers/internal/common/logger"
)

// ElasticsearchClient holds the client behind the prediction analytics index.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

// OpenElasticsearch creates the client and waits until the cluster answers.
func OpenElasticsearch(ctx context.Context, cfg config.ElasticsearchConfig, policy ConnectPolicy, log logger.Logger) (*ElasticsearchClient, error) {
	c, err := NewElasticsearch(cfg)
	if err != nil {
		return nil, err
	}
	if err := policy.wait(ctx, log, "Elasticsearch connection", c.Ping); err != nil {
		return nil, err
	}
	log.Info("connected to elasticsearch", map[string]interface{}{"url": cfg.GetURL(), "index": cfg.Index})
	return c, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}
