package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mesaOps/internal/modules/reservations/domain"
	tablesdomain "mesaOps/internal/modules/tables/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/clock"
	"mesaOps/internal/shared/events"
)

const entityName = "reservations"

// Workflow books and releases tables. Every operation reads and writes the reservation and its
// table inside one store transaction, so a table is reserved exactly when it has an active booking.
type Workflow struct {
	reservations *repository.Repository[domain.Reservation]
	tables       *repository.Repository[tablesdomain.Table]
	publisher    events.Publisher
}

func NewWorkflow(store docstore.Store, publisher events.Publisher) *Workflow {
	return &Workflow{
		reservations: repository.New[domain.Reservation](store, domain.Collection),
		tables:       repository.New[tablesdomain.Table](store, tablesdomain.Collection),
		publisher:    publisher,
	}
}

// Reservations exposes the underlying repository for read-only composition.
func (uc *Workflow) Reservations() *repository.Repository[domain.Reservation] {
	return uc.reservations
}

// CreateReservation reserves a free table and records an active reservation for it.
// A table that is not free fails with ErrResourceUnavailable and is left untouched.
func (uc *Workflow) CreateReservation(ctx context.Context, reservation domain.Reservation) (string, error) {
	if strings.TrimSpace(reservation.TableID) == "" {
		return "", fmt.Errorf("%w: reservation needs a table", apperr.ErrInvariantViolation)
	}
	if reservation.PartySize <= 0 {
		return "", fmt.Errorf("%w: party size must be positive", apperr.ErrInvariantViolation)
	}
	if reservation.At.IsZero() {
		return "", fmt.Errorf("%w: reservation needs a date", apperr.ErrInvariantViolation)
	}
	reservation.ID = ""
	reservation.Status = domain.StatusActive

	var table tablesdomain.Table
	err := uc.reservations.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		var err error
		table, err = uc.loadTable(ctx, tx, reservation.TableID)
		if err != nil {
			return err
		}
		if table.Status != tablesdomain.StatusFree {
			return fmt.Errorf("%w: table %d is %s", apperr.ErrResourceUnavailable, table.Number, table.Status)
		}
		if reservation.PartySize > table.Capacity {
			return fmt.Errorf("%w: party of %d exceeds table capacity %d", apperr.ErrInvariantViolation, reservation.PartySize, table.Capacity)
		}
		if reservation.RestaurantID == "" {
			reservation.RestaurantID = table.RestaurantID
		} else if reservation.RestaurantID != table.RestaurantID {
			return fmt.Errorf("%w: table %s belongs to another restaurant", apperr.ErrInvariantViolation, table.ID)
		}

		if err := tx.Update(ctx, tablesdomain.Collection, table.ID, docstore.Fields{"status": tablesdomain.StatusReserved}); err != nil {
			return err
		}
		doc, err := uc.reservations.Encode(reservation)
		if err != nil {
			return err
		}
		reservation.ID, err = tx.Insert(ctx, domain.Collection, doc)
		return err
	})
	if err != nil {
		return "", err
	}

	table.Status = tablesdomain.StatusReserved
	slog.Info("reservation created",
		slog.String("reservationId", reservation.ID),
		slog.String("tableId", table.ID),
		slog.Int("partySize", reservation.PartySize),
	)
	uc.emit(ctx, events.ActionCreated, reservation)
	uc.emitTable(ctx, table)
	return reservation.ID, nil
}

// CancelReservation frees the reserved table and marks the reservation cancelled.
// Cancelling an already cancelled reservation is a no-op.
func (uc *Workflow) CancelReservation(ctx context.Context, id string) error {
	return uc.close(ctx, id, domain.StatusCancelled, tablesdomain.StatusFree, events.ActionCancelled)
}

// CompleteReservation seats the party at the reserved table and marks the reservation completed.
func (uc *Workflow) CompleteReservation(ctx context.Context, id string) error {
	return uc.close(ctx, id, domain.StatusCompleted, tablesdomain.StatusOccupied, events.ActionUpdated)
}

func (uc *Workflow) close(ctx context.Context, id string, status domain.Status, tableStatus tablesdomain.Status, action string) error {
	var (
		reservation domain.Reservation
		table       *tablesdomain.Table
		changed     bool
	)
	err := uc.reservations.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, domain.Collection, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return apperr.NotFound("reservation", id)
		}
		reservation, err = uc.reservations.Decode(doc)
		if err != nil {
			return err
		}
		if reservation.Status == status {
			return nil
		}
		if reservation.Status != domain.StatusActive {
			return fmt.Errorf("%w: reservation %s is %s", apperr.ErrInvariantViolation, id, reservation.Status)
		}

		current, err := uc.loadTable(ctx, tx, reservation.TableID)
		switch {
		case err == nil && current.Status == tablesdomain.StatusReserved:
			if err := tx.Update(ctx, tablesdomain.Collection, current.ID, docstore.Fields{"status": tableStatus}); err != nil {
				return err
			}
			current.Status = tableStatus
			table = &current
		case err == nil:
			slog.Warn("reserved table not in reserved state",
				slog.String("reservationId", id),
				slog.String("tableId", current.ID),
				slog.String("status", string(current.Status)),
			)
		case apperr.IsDomain(err):
			slog.Warn("reservation table missing", slog.String("reservationId", id), slog.String("tableId", reservation.TableID))
		default:
			return err
		}

		if err := tx.Update(ctx, domain.Collection, id, docstore.Fields{"status": status}); err != nil {
			return err
		}
		reservation.Status = status
		changed = true
		return nil
	})
	if err != nil || !changed {
		return err
	}
	uc.emit(ctx, action, reservation)
	if table != nil {
		uc.emitTable(ctx, *table)
	}
	return nil
}

// GetByDate returns the restaurant's reservations within the day containing day, in day's
// location, ordered by time. The window includes midnight at its start and excludes the next.
func (uc *Workflow) GetByDate(ctx context.Context, restaurantID string, day time.Time) ([]domain.Reservation, error) {
	start, end := clock.DayWindow(day)
	return uc.reservations.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("data_hora", docstore.OpGte, start),
		docstore.Where("data_hora", docstore.OpLt, end),
		docstore.OrderBy("data_hora", docstore.Asc),
	)
}

func (uc *Workflow) loadTable(ctx context.Context, tx docstore.Tx, id string) (tablesdomain.Table, error) {
	doc, err := tx.Get(ctx, tablesdomain.Collection, id)
	if err != nil {
		return tablesdomain.Table{}, err
	}
	if doc == nil {
		return tablesdomain.Table{}, apperr.NotFound("table", id)
	}
	return uc.tables.Decode(doc)
}

func (uc *Workflow) emit(ctx context.Context, action string, reservation domain.Reservation) {
	events.Emit(ctx, uc.publisher, events.Event{
		Entity:     entityName,
		Action:     action,
		ResourceID: reservation.ID,
		Metadata: map[string]string{
			"restaurantId": reservation.RestaurantID,
			"tableId":      reservation.TableID,
			"status":       string(reservation.Status),
		},
		Data: reservation,
	})
}

func (uc *Workflow) emitTable(ctx context.Context, table tablesdomain.Table) {
	events.Emit(ctx, uc.publisher, events.Event{
		Entity:     "tables",
		Action:     events.ActionUpdated,
		ResourceID: table.ID,
		Metadata: map[string]string{
			"restaurantId": table.RestaurantID,
			"status":       string(table.Status),
		},
		Data: table,
	})
}
