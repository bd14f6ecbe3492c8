package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Builder creates a Publisher from a normalized config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Registry maps a publisher type to its Builder.
type Registry map[string]Builder

// DefaultRegistry knows every type a publishers file may declare.
func DefaultRegistry() Registry {
	return Registry{
		TypeHTTP:      newHTTPPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
		TypeKafka:     newKafkaPublisher,
	}
}

// Build instantiates a publisher per entry, in order. If any entry fails the
// publishers already built are closed and nothing is returned.
func (r Registry) Build(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		build, ok := r[cfg.Type]
		if !ok {
			return nil, errors.Join(fmt.Errorf("publisher %q: no builder for type %q", cfg.ID, cfg.Type), closeAll(pubs))
		}
		pub, err := build(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("build publisher %q: %w", cfg.ID, err), closeAll(pubs))
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

func closeAll(pubs []Publisher) error {
	var errs []error
	for _, p := range pubs {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err))
		}
	}
	return errors.Join(errs...)
}
