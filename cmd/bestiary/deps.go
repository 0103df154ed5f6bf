package main

import (
	"github.com/KirkDiggler/bestiary/internal/clients/external"
	"github.com/KirkDiggler/bestiary/internal/config"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
)

// newCatalog wires the upstream client into the catalog orchestrator
func newCatalog(cfg *config.Config, onStatus func(catalog.Status)) (catalog.Service, external.Client, error) {
	client, err := external.New(&external.Config{
		BaseURL:     cfg.UpstreamURL,
		HTTPTimeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	svc, err := catalog.NewOrchestrator(&catalog.Config{
		Client:         client,
		MaxConcurrency: cfg.MaxConcurrency,
		OnStatusChange: onStatus,
	})
	if err != nil {
		return nil, nil, err
	}

	return svc, client, nil
}
