package driven

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// PartsSearch finds where a replacement part can be bought.
// It may be unavailable per call; callers degrade to default sources.
type PartsSearch interface {
	FindSources(ctx context.Context, part domain.GuidePart, equipment domain.EquipmentQuery, location string) ([]domain.PartSource, error)
}
