package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderCompletedWireNames(t *testing.T) {
	event := OrderCompleted{
		OrderID:      101,
		CustomerName: "Laura Soto",
		PaymentID:    55,
		Amount:       decimal.RequireFromString("149.90"),
		PaymentForm:  "TDC",
		Timestamp:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"idPedido", "nombreCliente", "idPago", "montoPago", "formaPago", "timestamp"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("wire payload missing %q: %s", key, raw)
		}
	}
}

func TestOrderCompletedValidate(t *testing.T) {
	valid := OrderCompleted{OrderID: 1, CustomerName: "a", Amount: decimal.NewFromInt(10)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	cases := []struct {
		name  string
		event OrderCompleted
	}{
		{"zero order id", OrderCompleted{CustomerName: "a", Amount: decimal.NewFromInt(1)}},
		{"negative order id", OrderCompleted{OrderID: -3, CustomerName: "a", Amount: decimal.NewFromInt(1)}},
		{"empty customer", OrderCompleted{OrderID: 1, Amount: decimal.NewFromInt(1)}},
		{"negative amount", OrderCompleted{OrderID: 1, CustomerName: "a", Amount: decimal.NewFromInt(-1)}},
		{"zero amount", OrderCompleted{OrderID: 101, CustomerName: "Ana Gomez", Amount: decimal.Zero}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.event.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
