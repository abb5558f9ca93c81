package domain

import "context"

// TableContext is the table the guest is currently seated at.
type TableContext struct {
	TableID     string
	TableNumber int
}

// Sync binds the cart to every complete table context received on feed that differs from the
// cart's current table. It returns when ctx is done or feed is closed.
func Sync(ctx context.Context, cart *Cart, feed <-chan TableContext) {
	for {
		select {
		case <-ctx.Done():
			return
		case current, ok := <-feed:
			if !ok {
				return
			}
			Reconcile(cart, current)
		}
	}
}

// Reconcile applies a single table context to the cart.
func Reconcile(cart *Cart, current TableContext) {
	if current.TableID == "" || current.TableNumber == 0 {
		return
	}
	if id, _ := cart.Table(); id == current.TableID {
		return
	}
	cart.SetTable(current.TableID, current.TableNumber)
}
