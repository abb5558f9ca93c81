package usecase

import (
	"context"
	"fmt"
	"strings"

	"mesaOps/internal/modules/restaurants/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
)

// Directory manages restaurant records.
type Directory struct {
	restaurants *repository.Repository[domain.Restaurant]
}

func NewDirectory(store docstore.Store) *Directory {
	return &Directory{restaurants: repository.New[domain.Restaurant](store, domain.Collection)}
}

func (uc *Directory) Register(ctx context.Context, restaurant domain.Restaurant) (string, error) {
	if strings.TrimSpace(restaurant.Name) == "" {
		return "", fmt.Errorf("%w: restaurant needs a name", apperr.ErrInvariantViolation)
	}
	if restaurant.Capacity < 0 {
		return "", fmt.Errorf("%w: capacity cannot be negative", apperr.ErrInvariantViolation)
	}
	restaurant.ID = ""
	restaurant.DaysOpen = domain.NormalizeDaysOpen(restaurant.DaysOpen)
	return uc.restaurants.Create(ctx, restaurant)
}

// Get returns the restaurant or ErrNotFound.
func (uc *Directory) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	restaurant, err := uc.restaurants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, apperr.NotFound("restaurant", id)
	}
	return restaurant, nil
}

// List returns every restaurant ordered by name.
func (uc *Directory) List(ctx context.Context) ([]domain.Restaurant, error) {
	return uc.restaurants.Query(ctx, docstore.OrderBy("nome", docstore.Asc))
}

// UpdateSchedule replaces the opening hours and days.
func (uc *Directory) UpdateSchedule(ctx context.Context, id, openingHours string, days any) error {
	return uc.restaurants.Update(ctx, id, docstore.Fields{
		"horario_funcionamento": strings.TrimSpace(openingHours),
		"dias_funcionamento":    domain.NormalizeDaysOpen(days),
	})
}

// UpdateCapacity sets the total seating capacity.
func (uc *Directory) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", apperr.ErrInvariantViolation)
	}
	return uc.restaurants.Update(ctx, id, docstore.Fields{"capacidade_total": capacity})
}
