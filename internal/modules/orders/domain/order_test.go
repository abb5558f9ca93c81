package domain

import "testing"

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input    string
		expected Status
		ok       bool
	}{
		{input: "novo", expected: StatusNew, ok: true},
		{input: " Preparing ", expected: StatusPreparing, ok: true},
		{input: "canceled", expected: StatusCancelled, ok: true},
		{input: "lost", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			status, ok := ParseStatus(tc.input)
			if ok != tc.ok || status != tc.expected {
				t.Fatalf("expected %q/%v, got %q/%v", tc.expected, tc.ok, status, ok)
			}
		})
	}
}

func TestAllItemsReady(t *testing.T) {
	cases := []struct {
		name     string
		items    []Item
		expected bool
	}{
		{name: "empty", items: nil, expected: false},
		{name: "one pending", items: []Item{{Status: ItemReady}, {Status: ItemPending}}, expected: false},
		{name: "all ready", items: []Item{{Status: ItemReady}, {Status: ItemReady}}, expected: true},
		{name: "delivered is not ready", items: []Item{{Status: ItemReady}, {Status: ItemDelivered}}, expected: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AllItemsReady(tc.items); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestItemsTotal(t *testing.T) {
	order := Order{Items: []Item{
		{Quantity: 3, UnitPrice: 0.1},
		{Quantity: 1, UnitPrice: 0.2},
	}}
	if got := order.ItemsTotal().String(); got != "0.5" {
		t.Fatalf("expected 0.5, got %s", got)
	}
}
