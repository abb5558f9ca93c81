package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mesaOps/internal/modules/tables/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/events"
)

const entityName = "tables"

// Coordinator owns table occupancy.
type Coordinator struct {
	tables    *repository.Repository[domain.Table]
	publisher events.Publisher
}

func NewCoordinator(store docstore.Store, publisher events.Publisher) *Coordinator {
	return &Coordinator{
		tables:    repository.New[domain.Table](store, domain.Collection),
		publisher: publisher,
	}
}

// Tables exposes the underlying repository for read-only composition.
func (uc *Coordinator) Tables() *repository.Repository[domain.Table] { return uc.tables }

// Register adds a table to a restaurant. Numbers are unique per restaurant and new tables start free.
func (uc *Coordinator) Register(ctx context.Context, table domain.Table) (string, error) {
	if strings.TrimSpace(table.RestaurantID) == "" {
		return "", fmt.Errorf("%w: table needs a restaurant", apperr.ErrInvariantViolation)
	}
	if table.Number <= 0 || table.Capacity <= 0 {
		return "", fmt.Errorf("%w: table number and capacity must be positive", apperr.ErrInvariantViolation)
	}
	existing, err := uc.GetByNumber(ctx, table.RestaurantID, table.Number)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", fmt.Errorf("%w: table %d already exists in restaurant %s", apperr.ErrInvariantViolation, table.Number, table.RestaurantID)
	}

	table.ID = ""
	if table.Status == domain.StatusUnknown {
		table.Status = domain.StatusFree
	}
	id, err := uc.tables.Create(ctx, table)
	if err != nil {
		return "", err
	}
	table.ID = id
	uc.emit(ctx, events.ActionCreated, table)
	return id, nil
}

// UpdateStatus writes status without checking the current one. Callers that have not validated
// the transition themselves should use Transition.
func (uc *Coordinator) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if status == domain.StatusUnknown {
		return fmt.Errorf("%w: unknown table status", apperr.ErrInvariantViolation)
	}
	if err := uc.tables.Update(ctx, id, docstore.Fields{"status": status}); err != nil {
		return err
	}
	uc.emitID(ctx, id)
	return nil
}

// Transition moves the table to status when the transition table allows it.
func (uc *Coordinator) Transition(ctx context.Context, id string, to domain.Status) error {
	var (
		moved   domain.Table
		changed bool
	)
	err := uc.tables.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, domain.Collection, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return apperr.NotFound("table", id)
		}
		table, err := uc.tables.Decode(doc)
		if err != nil {
			return err
		}
		if !domain.CanTransition(table.Status, to) {
			return fmt.Errorf("%w: table %s cannot move from %s to %s", apperr.ErrInvariantViolation, id, table.Status, to)
		}
		if table.Status == to {
			return nil
		}
		if err := tx.Update(ctx, domain.Collection, id, docstore.Fields{"status": to}); err != nil {
			return err
		}
		slog.Debug("table transition", slog.String("tableId", id), slog.String("from", string(table.Status)), slog.String("to", string(to)))
		table.Status = to
		moved, changed = table, true
		return nil
	})
	if err != nil || !changed {
		return err
	}
	uc.emit(ctx, events.ActionUpdated, moved)
	return nil
}

// Seat marks the table occupied.
func (uc *Coordinator) Seat(ctx context.Context, id string) error {
	return uc.Transition(ctx, id, domain.StatusOccupied)
}

// Release hands an occupied table over to cleaning.
func (uc *Coordinator) Release(ctx context.Context, id string) error {
	return uc.Transition(ctx, id, domain.StatusAwaitingCleaning)
}

// MarkClean frees a table after cleaning.
func (uc *Coordinator) MarkClean(ctx context.Context, id string) error {
	return uc.Transition(ctx, id, domain.StatusFree)
}

// GetByNumber returns the restaurant's table with number, or nil.
func (uc *Coordinator) GetByNumber(ctx context.Context, restaurantID string, number int) (*domain.Table, error) {
	return uc.tables.First(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("numero", docstore.OpEq, number),
	)
}

// GetAvailable returns the restaurant's free tables ordered by number.
func (uc *Coordinator) GetAvailable(ctx context.Context, restaurantID string) ([]domain.Table, error) {
	return uc.tables.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("status", docstore.OpEq, domain.StatusFree),
		docstore.OrderBy("numero", docstore.Asc),
	)
}

// ListByRestaurant returns every table of the restaurant ordered by number.
func (uc *Coordinator) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Table, error) {
	return uc.tables.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.OrderBy("numero", docstore.Asc),
	)
}

func (uc *Coordinator) emitID(ctx context.Context, id string) {
	if uc.publisher == nil {
		return
	}
	table, err := uc.tables.GetByID(ctx, id)
	if err != nil || table == nil {
		return
	}
	uc.emit(ctx, events.ActionUpdated, *table)
}

func (uc *Coordinator) emit(ctx context.Context, action string, table domain.Table) {
	events.Emit(ctx, uc.publisher, events.Event{
		Entity:     entityName,
		Action:     action,
		ResourceID: table.ID,
		Metadata: map[string]string{
			"restaurantId": table.RestaurantID,
			"status":       string(table.Status),
		},
		Data: table,
	})
}
