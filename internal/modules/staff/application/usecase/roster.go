package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"mesaOps/internal/modules/staff/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
)

// Roster answers staffing questions for a restaurant.
type Roster struct {
	employees *repository.Repository[domain.Employee]
}

func NewRoster(store docstore.Store) *Roster {
	return &Roster{employees: repository.New[domain.Employee](store, domain.Collection)}
}

func (uc *Roster) Hire(ctx context.Context, employee domain.Employee) (string, error) {
	if strings.TrimSpace(employee.RestaurantID) == "" || strings.TrimSpace(employee.Name) == "" {
		return "", fmt.Errorf("%w: employee needs a name and restaurant", apperr.ErrInvariantViolation)
	}
	role, ok := domain.ParseRole(string(employee.Role))
	if !ok {
		return "", fmt.Errorf("%w: unknown role %q", apperr.ErrInvariantViolation, employee.Role)
	}
	employee.Role = role
	employee.ID = ""
	if employee.TablesServed == nil {
		employee.TablesServed = []string{}
	}
	if employee.OrdersHandled == nil {
		employee.OrdersHandled = []string{}
	}
	return uc.employees.Create(ctx, employee)
}

// GetByRole returns the restaurant's employees with role ordered by name.
func (uc *Roster) GetByRole(ctx context.Context, restaurantID string, role domain.Role) ([]domain.Employee, error) {
	return uc.employees.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("cargo", docstore.OpEq, role),
		docstore.OrderBy("nome", docstore.Asc),
	)
}

// WaiterWithLeastWorkload returns the waiter who handled the fewest orders, or nil when the
// restaurant has no waiters. Ties go to the first waiter by name.
func (uc *Roster) WaiterWithLeastWorkload(ctx context.Context, restaurantID string) (*domain.Employee, error) {
	waiters, err := uc.GetByRole(ctx, restaurantID, domain.RoleWaiter)
	if err != nil || len(waiters) == 0 {
		return nil, err
	}
	sort.SliceStable(waiters, func(i, j int) bool {
		return len(waiters[i].OrdersHandled) < len(waiters[j].OrdersHandled)
	})
	return &waiters[0], nil
}

// RecordHandledOrder adds orderID to the employee's handled orders once.
func (uc *Roster) RecordHandledOrder(ctx context.Context, employeeID, orderID string) error {
	return uc.employees.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, domain.Collection, employeeID)
		if err != nil {
			return err
		}
		if doc == nil {
			return apperr.NotFound("employee", employeeID)
		}
		employee, err := uc.employees.Decode(doc)
		if err != nil {
			return err
		}
		if slices.Contains(employee.OrdersHandled, orderID) {
			return nil
		}
		handled := append(employee.OrdersHandled, orderID)
		return tx.Update(ctx, domain.Collection, employeeID, docstore.Fields{"pedidos_atendidos": handled})
	})
}
