package provider

import (
	"context"
	"fmt"
	"slices"
)

// Provider names
const (
	NamePolly = "polly"
	NameGCP   = "gcp"
)

// Names returns the supported provider names
func Names() []string {
	return []string{NamePolly, NameGCP}
}

// IsSupported reports whether name is a known provider
func IsSupported(name string) bool {
	return slices.Contains(Names(), name)
}

// New creates a provider by name
func New(ctx context.Context, name string, config Config) (Provider, error) {
	switch name {
	case NamePolly:
		return NewPollyProvider(ctx, config.Region)
	case NameGCP:
		var opts []GCPProviderOption
		if config.ProjectID != "" {
			opts = append(opts, WithGCPProjectID(config.ProjectID))
		}
		return NewGCPProvider(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
