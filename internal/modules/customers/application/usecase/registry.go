package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"mesaOps/internal/modules/customers/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
)

// Registry keeps customer records and their order history.
type Registry struct {
	customers *repository.Repository[domain.Customer]
}

func NewRegistry(store docstore.Store) *Registry {
	return &Registry{customers: repository.New[domain.Customer](store, domain.Collection)}
}

func (uc *Registry) Register(ctx context.Context, customer domain.Customer) (string, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return "", fmt.Errorf("%w: customer needs a name", apperr.ErrInvariantViolation)
	}
	customer.ID = ""
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	if customer.Preferences == nil {
		customer.Preferences = []string{}
	}
	if customer.OrderHistory == nil {
		customer.OrderHistory = []string{}
	}
	return uc.customers.Create(ctx, customer)
}

// Get returns the customer or ErrNotFound.
func (uc *Registry) Get(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := uc.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.NotFound("customer", id)
	}
	return customer, nil
}

// FindByEmail returns the customer with email, or nil.
func (uc *Registry) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return uc.customers.First(ctx, docstore.Where("email", docstore.OpEq, strings.ToLower(strings.TrimSpace(email))))
}

// AddPreference records a preference once.
func (uc *Registry) AddPreference(ctx context.Context, id, preference string) error {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return nil
	}
	return uc.appendUnique(ctx, id, "preferencias", func(c domain.Customer) []string { return c.Preferences }, preference)
}

// RecordOrder appends orderID to the customer's history once.
func (uc *Registry) RecordOrder(ctx context.Context, id, orderID string) error {
	return uc.appendUnique(ctx, id, "historico_pedidos", func(c domain.Customer) []string { return c.OrderHistory }, orderID)
}

func (uc *Registry) appendUnique(ctx context.Context, id, field string, current func(domain.Customer) []string, value string) error {
	return uc.customers.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, domain.Collection, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return apperr.NotFound("customer", id)
		}
		customer, err := uc.customers.Decode(doc)
		if err != nil {
			return err
		}
		values := current(customer)
		if slices.Contains(values, value) {
			return nil
		}
		return tx.Update(ctx, domain.Collection, id, docstore.Fields{field: append(values, value)})
	})
}
