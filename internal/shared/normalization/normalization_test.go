package normalization

import "testing"

func TestNormalizeEntity(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"Pedido":        "orders",
		" MESAS ":       "tables",
		"reserva":       "reservations",
		"estoque":       "inventory",
		"cardapio":      "menu",
		"custom_entity": "custom-entity",
	}
	for input, expected := range cases {
		if actual := NormalizeEntity(input); actual != expected {
			t.Fatalf("NormalizeEntity(%q) expected %q got %q", input, expected, actual)
		}
	}
	if IsValidEntity("sections") || !IsValidEntity("order") {
		t.Fatal("unexpected entity validity")
	}
}

func TestConversions(t *testing.T) {
	cases := []struct {
		name  string
		value any
		i     int
		f     float64
	}{
		{name: "int32", value: int32(4), i: 4, f: 4},
		{name: "float", value: 2.5, i: 2, f: 2.5},
		{name: "numeric string", value: " 7 ", i: 7, f: 7},
		{name: "garbage", value: "x", i: 0, f: 0},
		{name: "nil", value: nil, i: 0, f: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AsInt(tc.value); got != tc.i {
				t.Fatalf("AsInt expected %d got %d", tc.i, got)
			}
			if got := AsFloat64(tc.value); got != tc.f {
				t.Fatalf("AsFloat64 expected %v got %v", tc.f, got)
			}
		})
	}
	if AsString("  a ") != "a" || AsString(1) != "" {
		t.Fatal("unexpected AsString")
	}
}
