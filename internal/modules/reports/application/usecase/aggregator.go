package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	ordersdomain "mesaOps/internal/modules/orders/domain"
	"mesaOps/internal/modules/reports/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/clock"
	"mesaOps/internal/shared/events"
)

const entityName = "reports"

// Aggregator computes and stores daily restaurant reports.
type Aggregator struct {
	orders    *repository.Repository[ordersdomain.Order]
	reports   *repository.Repository[domain.Report]
	publisher events.Publisher
}

func NewAggregator(store docstore.Store, publisher events.Publisher) *Aggregator {
	return &Aggregator{
		orders:    repository.New[ordersdomain.Order](store, ordersdomain.Collection),
		reports:   repository.New[domain.Report](store, domain.Collection),
		publisher: publisher,
	}
}

// Reports exposes the report repository for read-only composition.
func (uc *Aggregator) Reports() *repository.Repository[domain.Report] { return uc.reports }

// GenerateDailyReport counts the orders created and delivered on day, sums the delivered revenue
// and stores the figures as a new report. The three reads run concurrently; any failure aborts.
func (uc *Aggregator) GenerateDailyReport(ctx context.Context, restaurantID string, day time.Time) (string, error) {
	var details domain.Details

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.orders.Count(gctx, createdWithin(restaurantID, day)...)
		details.TotalOrders = n
		return err
	})
	g.Go(func() error {
		n, err := uc.orders.Count(gctx, deliveredWithin(restaurantID, day)...)
		details.DeliveredOrders = n
		return err
	})
	g.Go(func() error {
		revenue, err := uc.DailyRevenue(gctx, restaurantID, day)
		details.Revenue = revenue
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	report := domain.Report{
		RestaurantID: restaurantID,
		Type:         domain.TypeDaily,
		Date:         day,
		Details:      details,
		GeneratedBy:  domain.GeneratedBy,
	}
	id, err := uc.reports.Create(ctx, report)
	if err != nil {
		return "", err
	}
	report.ID = id

	slog.Info("daily report generated",
		slog.String("reportId", id),
		slog.String("restaurantId", restaurantID),
		slog.Int64("totalOrders", details.TotalOrders),
		slog.Int64("deliveredOrders", details.DeliveredOrders),
		slog.Float64("revenue", details.Revenue),
	)
	events.Emit(ctx, uc.publisher, events.Event{
		Entity:     entityName,
		Action:     events.ActionCreated,
		ResourceID: id,
		Metadata:   map[string]string{"restaurantId": restaurantID, "type": domain.TypeDaily},
		Data:       report,
	})
	return id, nil
}

// DailyRevenue sums the total value of the orders delivered on day.
func (uc *Aggregator) DailyRevenue(ctx context.Context, restaurantID string, day time.Time) (float64, error) {
	delivered, err := uc.orders.Query(ctx, deliveredWithin(restaurantID, day)...)
	if err != nil {
		return 0, err
	}
	total := decimal.Zero
	for _, order := range delivered {
		total = total.Add(decimal.NewFromFloat(order.Total))
	}
	return total.InexactFloat64(), nil
}

// ListByRestaurant returns the restaurant's reports, most recent day first.
func (uc *Aggregator) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Report, error) {
	return uc.reports.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.OrderBy("data", docstore.Desc),
	)
}

func createdWithin(restaurantID string, day time.Time) []docstore.Clause {
	start, end := clock.DayWindow(day)
	return []docstore.Clause{
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("hora_criacao", docstore.OpGte, start),
		docstore.Where("hora_criacao", docstore.OpLt, end),
	}
}

func deliveredWithin(restaurantID string, day time.Time) []docstore.Clause {
	start, end := clock.DayWindow(day)
	return []docstore.Clause{
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("status", docstore.OpEq, ordersdomain.StatusDelivered),
		docstore.Where("hora_entrega", docstore.OpGte, start),
		docstore.Where("hora_entrega", docstore.OpLt, end),
	}
}
