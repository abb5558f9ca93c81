package usecase

import (
	"context"
	"fmt"
	"strings"

	"mesaOps/internal/modules/menu/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/events"
)

const entityName = "menu"

// Catalog serves a restaurant's menu.
type Catalog struct {
	items      *repository.Repository[domain.Item]
	categories *repository.Repository[domain.Category]
	publisher  events.Publisher
}

func NewCatalog(store docstore.Store, publisher events.Publisher) *Catalog {
	return &Catalog{
		items:      repository.New[domain.Item](store, domain.Collection),
		categories: repository.New[domain.Category](store, domain.CategoryCollection),
		publisher:  publisher,
	}
}

// Items exposes the menu repository for read-only composition.
func (uc *Catalog) Items() *repository.Repository[domain.Item] { return uc.items }

func (uc *Catalog) AddItem(ctx context.Context, item domain.Item) (string, error) {
	if strings.TrimSpace(item.RestaurantID) == "" || strings.TrimSpace(item.Name) == "" {
		return "", fmt.Errorf("%w: menu item needs a name and restaurant", apperr.ErrInvariantViolation)
	}
	if item.Price < 0 {
		return "", fmt.Errorf("%w: menu item price cannot be negative", apperr.ErrInvariantViolation)
	}
	item.ID = ""
	return uc.items.Create(ctx, item)
}

// GetByRestaurant returns the available items ordered by category, then name.
func (uc *Catalog) GetByRestaurant(ctx context.Context, restaurantID string) ([]domain.Item, error) {
	return uc.items.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("disponivel", docstore.OpEq, true),
		docstore.OrderBy("categoria", docstore.Asc),
		docstore.OrderBy("nome", docstore.Asc),
	)
}

// GetByCategory returns the available items of one category ordered by name.
func (uc *Catalog) GetByCategory(ctx context.Context, restaurantID, category string) ([]domain.Item, error) {
	return uc.items.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("categoria", docstore.OpEq, category),
		docstore.Where("disponivel", docstore.OpEq, true),
		docstore.OrderBy("nome", docstore.Asc),
	)
}

// Search matches term case-insensitively against the name and description of available items.
// An empty term matches everything.
func (uc *Catalog) Search(ctx context.Context, restaurantID, term string) ([]domain.Item, error) {
	available, err := uc.items.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("disponivel", docstore.OpEq, true),
	)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	matches := make([]domain.Item, 0, len(available))
	for _, item := range available {
		if strings.Contains(strings.ToLower(item.Name), needle) || strings.Contains(strings.ToLower(item.Description), needle) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func (uc *Catalog) ToggleAvailability(ctx context.Context, itemID string, available bool) error {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.NotFound("menu item", itemID)
	}
	if err := uc.items.Update(ctx, itemID, docstore.Fields{"disponivel": available}); err != nil {
		return err
	}
	item.Available = available
	uc.emit(ctx, *item)
	return nil
}

// SetAvailability switches several items of one restaurant in a single batch. Unknown ids and
// items of another restaurant fail the whole call with ErrNotFound before anything is written.
func (uc *Catalog) SetAvailability(ctx context.Context, restaurantID string, itemIDs []string, available bool) error {
	items := make([]domain.Item, 0, len(itemIDs))
	changes := make([]repository.Change, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := uc.items.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil || item.RestaurantID != restaurantID {
			return apperr.NotFound("menu item", id)
		}
		item.Available = available
		items = append(items, *item)
		changes = append(changes, repository.Change{
			Collection: domain.Collection,
			ID:         id,
			Fields:     docstore.Fields{"disponivel": available},
		})
	}
	if err := repository.BatchUpdate(ctx, uc.items.Store(), changes); err != nil {
		return err
	}
	for _, item := range items {
		uc.emit(ctx, item)
	}
	return nil
}

func (uc *Catalog) emit(ctx context.Context, item domain.Item) {
	events.Emit(ctx, uc.publisher, events.Event{
		Entity:     entityName,
		Action:     events.ActionUpdated,
		ResourceID: item.ID,
		Metadata: map[string]string{
			"restaurantId": item.RestaurantID,
			"available":    fmt.Sprint(item.Available),
		},
		Data: item,
	})
}

func (uc *Catalog) AddCategory(ctx context.Context, category domain.Category) (string, error) {
	if strings.TrimSpace(category.RestaurantID) == "" || strings.TrimSpace(category.Name) == "" {
		return "", fmt.Errorf("%w: category needs a name and restaurant", apperr.ErrInvariantViolation)
	}
	category.ID = ""
	return uc.categories.Create(ctx, category)
}

// Categories returns the restaurant's categories in menu order.
func (uc *Catalog) Categories(ctx context.Context, restaurantID string) ([]domain.Category, error) {
	return uc.categories.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.OrderBy("ordem", docstore.Asc),
	)
}
