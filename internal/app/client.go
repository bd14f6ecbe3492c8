package app

import (
	"fmt"

	"github.com/alright-hq/alright-client/internal/config"
	"github.com/alright-hq/alright-client/internal/logger"
	"github.com/alright-hq/alright-client/pkg/alright"
	"github.com/alright-hq/alright-client/pkg/httpclient"
)

// NewAPIClient builds the canteen client described by cfg. mode overrides
// cfg.APIResponseMode when non-empty.
func NewAPIClient(cfg *config.Config, mode string, log logger.Logger) (*alright.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if mode == "" {
		mode = cfg.APIResponseMode
	}

	responseMode, err := alright.ParseResponseMode(mode)
	if err != nil {
		return nil, err
	}

	transport, err := newTransport(cfg, cfg.APIBaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("init api transport: %w", err)
	}

	client, err := alright.NewClient(transport, alright.Options{
		Mode:   responseMode,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return client, nil
}

func newTransport(cfg *config.Config, baseURL string, log logger.Logger) (*httpclient.RestyTransport, error) {
	var headers httpclient.Header
	if cfg.APIUserAgent != "" {
		headers = httpclient.Header{"User-Agent": cfg.APIUserAgent}
	}
	return httpclient.NewRestyTransport(httpclient.Options{
		BaseURL: baseURL,
		Timeout: cfg.APITimeout,
		Headers: headers,
		Logger:  log,
	})
}
