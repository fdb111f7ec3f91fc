package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// pingTimeout bounds a single connectivity check.
const pingTimeout = 5 * time.Second

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// pinger is the part of the AI service ports the validator needs.
type pinger interface {
	Ping(ctx context.Context) error
}

func ping(svc pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ConfigValidator checks provider settings against the live provider before
// the settings service saves them.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithPingTimeout overrides how long a provider has to answer.
func WithPingTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding builds the embedding service described by config and pings it.
// Unconfigured settings are not an error.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc, v.timeout)
}

// ValidateGeneration builds the generation service described by config and pings it.
// Unconfigured settings are not an error.
func (v *ConfigValidator) ValidateGeneration(config *domain.GenerationSettings) error {
	svc, err := CreateGenerationService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc, v.timeout)
}

// ValidateEmbeddingConfig validates config with the default timeout.
func ValidateEmbeddingConfig(config *domain.EmbeddingSettings) error {
	return NewConfigValidator().ValidateEmbedding(config)
}

// ValidateGenerationConfig validates config with the default timeout.
func ValidateGenerationConfig(config *domain.GenerationSettings) error {
	return NewConfigValidator().ValidateGeneration(config)
}
