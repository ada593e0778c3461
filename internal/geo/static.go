package geo

import (
	"context"
	"fmt"

	"github.com/kjstillabower/weather-widget/internal/models"
	"github.com/kjstillabower/weather-widget/internal/validation"
)

// StaticLocator always reports the configured position.
type StaticLocator struct {
	coords models.Coordinates
}

func NewStaticLocator(lat, lon float64) (*StaticLocator, error) {
	if err := validation.ValidateCoordinates(lat, lon); err != nil {
		return nil, fmt.Errorf("geo: static position: %w", err)
	}
	return &StaticLocator{coords: models.Coordinates{Latitude: lat, Longitude: lon}}, nil
}

func (s *StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	return s.coords, nil
}
