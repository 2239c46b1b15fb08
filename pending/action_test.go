package pending

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestActionWireRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		action *Action
		check  func(t *testing.T, got *Action)
	}{
		{
			name:   "add_to_cart",
			action: NewAddToCart("42", 3),
			check: func(t *testing.T, got *Action) {
				if got.AddToCart == nil || got.AddToCart.ProductID != "42" || got.AddToCart.Quantity != 3 {
					t.Fatalf("payload: %+v", got.AddToCart)
				}
			},
		},
		{
			name:   "buy_now",
			action: NewBuyNow(json.RawMessage(`{"id":7,"price":"1200"}`)),
			check: func(t *testing.T, got *Action) {
				if string(got.BuyNow) != `{"id":7,"price":"1200"}` {
					t.Fatalf("payload: %s", got.BuyNow)
				}
			},
		},
		{
			name:   "navigate",
			action: NewNavigate("/vendor/dashboard"),
			check: func(t *testing.T, got *Action) {
				if got.Path != "/vendor/dashboard" {
					t.Fatalf("path: %q", got.Path)
				}
			},
		},
		{
			name:   "toggleFavorite",
			action: NewToggleFavorite("13"),
			check: func(t *testing.T, got *Action) {
				if got.ToggleFavorite == nil || got.ToggleFavorite.ProductID != "13" {
					t.Fatalf("payload: %+v", got.ToggleFavorite)
				}
			},
		},
		{
			name:   "view_orders",
			action: NewViewOrders(),
			check: func(t *testing.T, got *Action) {
				if got.Kind != KindViewOrders {
					t.Fatalf("kind: %v", got.Kind)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := json.Marshal(tc.action)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if !strings.Contains(string(encoded), `"type":"`+tc.name+`"`) {
				t.Fatalf("wire tag missing: %s", encoded)
			}

			got := &Action{}
			if err := json.Unmarshal(encoded, got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got.Kind != tc.action.Kind {
				t.Fatalf("kind: got %v want %v", got.Kind, tc.action.Kind)
			}
			tc.check(t, got)
		})
	}
}

func TestActionDecodesLegacyShape(t *testing.T) {
	// Earlier client versions persisted only {type, data, path} with a
	// numeric productId.
	legacy := `{"type":"add_to_cart","data":{"productId":42,"quantity":3}}`

	got := &Action{}
	if err := json.Unmarshal([]byte(legacy), got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got.AddToCart.ProductID != "42" || got.AddToCart.Quantity != 3 {
		t.Fatalf("payload: %+v", got.AddToCart)
	}
	if got.ID != "" || !got.CreatedAt.IsZero() {
		t.Fatal("legacy blobs carry no identity fields")
	}

	// Numeric ids re-encode as numbers.
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(encoded), `"productId":42`) {
		t.Fatalf("numeric id not preserved: %s", encoded)
	}
}

func TestProductIDNonCanonicalNumbersStayStrings(t *testing.T) {
	// "0042" and "+42" parse as integers but are not valid JSON number
	// literals; emitting them bare would break the whole encoding.
	cases := []struct {
		id   string
		want string
	}{
		{"0042", `"productId":"0042"`},
		{"+42", `"productId":"+42"`},
		{"42", `"productId":42`},
	}

	for _, tc := range cases {
		encoded, err := json.Marshal(NewAddToCart(ProductID(tc.id), 1))
		if err != nil {
			t.Fatalf("marshal %q failed: %v", tc.id, err)
		}
		if !strings.Contains(string(encoded), tc.want) {
			t.Fatalf("id %q encoded as %s, want %s", tc.id, encoded, tc.want)
		}

		got := &Action{}
		if err := json.Unmarshal(encoded, got); err != nil {
			t.Fatalf("unmarshal %q failed: %v", tc.id, err)
		}
		if got.AddToCart.ProductID != ProductID(tc.id) {
			t.Fatalf("round trip of %q gave %q", tc.id, got.AddToCart.ProductID)
		}
	}
}

func TestActionRejectsUnknownType(t *testing.T) {
	got := &Action{}
	err := json.Unmarshal([]byte(`{"type":"share_product","data":{}}`), got)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestActionValidatesPayloads(t *testing.T) {
	cases := []string{
		`{"type":"navigate"}`,
		`{"type":"buy_now"}`,
		`{"type":"add_to_cart","data":"nope"}`,
	}
	for _, raw := range cases {
		if err := json.Unmarshal([]byte(raw), &Action{}); err == nil {
			t.Fatalf("expected decode failure for %s", raw)
		}
	}
}

func TestMarshalRejectsHalfBuiltActions(t *testing.T) {
	cases := []*Action{
		{Kind: KindAddToCart},
		{Kind: KindBuyNow},
		{Kind: KindNavigate},
		{Kind: Kind(99)},
	}
	for _, action := range cases {
		if _, err := json.Marshal(action); err == nil {
			t.Fatalf("expected marshal failure for kind %v", action.Kind)
		}
	}
}
