package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushConfig describes a prometheus pushgateway.
type PushConfig struct {
	URL      string            `mapstructure:"url"`
	Job      string            `mapstructure:"job"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Headers  map[string]string `mapstructure:"headers"`
}

// Push sends everything gathered by g to the pushgateway once.
// Sessions are batch jobs, so metrics are pushed when they end
// instead of being scraped.
func Push(ctx context.Context, cfg PushConfig, g prometheus.Gatherer, grouping map[string]string) error {
	header := http.Header{}
	for k, v := range cfg.Headers {
		header.Add(k, v)
	}
	job := cfg.Job
	if job == "" {
		job = Namespace
	}
	pusher := push.New(cfg.URL, job).Gatherer(g).Header(header)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	if cfg.Username != "" && cfg.Password != "" {
		pusher = pusher.BasicAuth(cfg.Username, cfg.Password)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", cfg.URL, err)
	}
	return nil
}
