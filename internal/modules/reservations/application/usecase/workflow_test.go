package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mesaOps/internal/modules/reservations/domain"
	tablesdomain "mesaOps/internal/modules/tables/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
)

type fixture struct {
	workflow *Workflow
	tables   *repository.Repository[tablesdomain.Table]
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := docstore.NewMemory()
	return fixture{
		workflow: NewWorkflow(store, nil),
		tables:   repository.New[tablesdomain.Table](store, tablesdomain.Collection),
	}
}

func (f fixture) addTable(t *testing.T, status tablesdomain.Status, capacity int) string {
	t.Helper()
	id, err := f.tables.Create(context.Background(), tablesdomain.Table{Number: 1, Capacity: capacity, Status: status, RestaurantID: "r1"})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return id
}

func (f fixture) tableStatus(t *testing.T, id string) tablesdomain.Status {
	t.Helper()
	table, err := f.tables.GetByID(context.Background(), id)
	if err != nil || table == nil {
		t.Fatalf("get table: %v %v", table, err)
	}
	return table.Status
}

var dinner = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

func TestReservationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tableID := f.addTable(t, tablesdomain.StatusFree, 4)

	id, err := f.workflow.CreateReservation(ctx, domain.Reservation{CustomerID: "c1", TableID: tableID, PartySize: 2, At: dinner})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if status := f.tableStatus(t, tableID); status != tablesdomain.StatusReserved {
		t.Fatalf("expected reserved table, got %s", status)
	}
	reservation, _ := f.workflow.Reservations().GetByID(ctx, id)
	if reservation == nil || reservation.Status != domain.StatusActive || reservation.RestaurantID != "r1" {
		t.Fatalf("unexpected reservation %#v", reservation)
	}

	if err := f.workflow.CancelReservation(ctx, id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if status := f.tableStatus(t, tableID); status != tablesdomain.StatusFree {
		t.Fatalf("expected free table, got %s", status)
	}
	reservation, _ = f.workflow.Reservations().GetByID(ctx, id)
	if reservation.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", reservation.Status)
	}

	if err := f.workflow.CancelReservation(ctx, id); err != nil {
		t.Fatalf("second cancel should be a no-op: %v", err)
	}
}

func TestCreateReservationRequiresFreeTable(t *testing.T) {
	for _, status := range []tablesdomain.Status{tablesdomain.StatusOccupied, tablesdomain.StatusAwaitingCleaning, tablesdomain.StatusReserved} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			tableID := f.addTable(t, status, 4)

			_, err := f.workflow.CreateReservation(context.Background(), domain.Reservation{TableID: tableID, PartySize: 2, At: dinner})
			if !errors.Is(err, apperr.ErrResourceUnavailable) {
				t.Fatalf("expected resource unavailable, got %v", err)
			}
			if got := f.tableStatus(t, tableID); got != status {
				t.Fatalf("table status changed to %s", got)
			}
			if n, _ := f.workflow.Reservations().Count(context.Background()); n != 0 {
				t.Fatalf("expected no reservation, got %d", n)
			}
		})
	}
}

func TestCreateReservationValidation(t *testing.T) {
	f := newFixture(t)
	tableID := f.addTable(t, tablesdomain.StatusFree, 2)

	cases := []struct {
		name        string
		reservation domain.Reservation
		expected    error
	}{
		{name: "party exceeds capacity", reservation: domain.Reservation{TableID: tableID, PartySize: 3, At: dinner}, expected: apperr.ErrInvariantViolation},
		{name: "empty party", reservation: domain.Reservation{TableID: tableID, PartySize: 0, At: dinner}, expected: apperr.ErrInvariantViolation},
		{name: "no date", reservation: domain.Reservation{TableID: tableID, PartySize: 1}, expected: apperr.ErrInvariantViolation},
		{name: "other restaurant", reservation: domain.Reservation{TableID: tableID, PartySize: 1, At: dinner, RestaurantID: "r2"}, expected: apperr.ErrInvariantViolation},
		{name: "missing table", reservation: domain.Reservation{TableID: "missing", PartySize: 1, At: dinner}, expected: apperr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.workflow.CreateReservation(context.Background(), tc.reservation); !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
	if status := f.tableStatus(t, tableID); status != tablesdomain.StatusFree {
		t.Fatalf("rejected bookings changed table to %s", status)
	}
}

func TestConcurrentBookingsReserveOnce(t *testing.T) {
	f := newFixture(t)
	tableID := f.addTable(t, tablesdomain.StatusFree, 4)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.workflow.CreateReservation(context.Background(), domain.Reservation{TableID: tableID, PartySize: 2, At: dinner})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, apperr.ErrResourceUnavailable) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one booking, got %d", succeeded)
	}
	if n, _ := f.workflow.Reservations().Count(context.Background()); n != 1 {
		t.Fatalf("expected one reservation document, got %d", n)
	}
}

func TestCancelReservationMissing(t *testing.T) {
	f := newFixture(t)
	if err := f.workflow.CancelReservation(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteReservationSeatsParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tableID := f.addTable(t, tablesdomain.StatusFree, 4)
	id, _ := f.workflow.CreateReservation(ctx, domain.Reservation{TableID: tableID, PartySize: 4, At: dinner})

	if err := f.workflow.CompleteReservation(ctx, id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if status := f.tableStatus(t, tableID); status != tablesdomain.StatusOccupied {
		t.Fatalf("expected occupied table, got %s", status)
	}
	if err := f.workflow.CancelReservation(ctx, id); !errors.Is(err, apperr.ErrInvariantViolation) {
		t.Fatalf("expected completed reservation to reject cancel, got %v", err)
	}
}

func TestGetByDateUsesHalfOpenWindow(t *testing.T) {
	store := docstore.NewMemory()
	workflow := NewWorkflow(store, nil)
	repo := workflow.Reservations()
	ctx := context.Background()

	day := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	seed := []domain.Reservation{
		{TableID: "t1", At: time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC), RestaurantID: "r1"},
		{TableID: "t2", At: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), RestaurantID: "r1"},
		{TableID: "t3", At: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), RestaurantID: "r1"},
		{TableID: "t4", At: time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC), RestaurantID: "r1"},
		{TableID: "t5", At: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), RestaurantID: "r2"},
	}
	for _, r := range seed {
		if _, err := repo.Create(ctx, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := workflow.GetByDate(ctx, "r1", day)
	if err != nil {
		t.Fatalf("by date: %v", err)
	}
	if len(got) != 2 || got[0].TableID != "t2" || got[1].TableID != "t1" {
		t.Fatalf("unexpected reservations %#v", got)
	}
}
