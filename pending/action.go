package pending

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownKind is returned when a persisted action names a type this
// build does not know. Callers treat it like any other malformed blob.
var ErrUnknownKind = errors.New("unknown pending action kind")

// Kind enumerates the closed set of deferrable gated actions.
type Kind uint8

const (
	// KindAddToCart defers a cart add.
	KindAddToCart Kind = iota + 1
	// KindBuyNow defers a direct checkout.
	KindBuyNow
	// KindViewOrders defers navigation to the orders page.
	KindViewOrders
	// KindViewProfile defers navigation to the profile page.
	KindViewProfile
	// KindNavigate defers navigation to an arbitrary path.
	KindNavigate
	// KindToggleFavorite defers a wishlist toggle.
	KindToggleFavorite
)

// Wire names are stable: they are what earlier client versions wrote
// into durable storage.
var kindNames = map[Kind]string{
	KindAddToCart:      "add_to_cart",
	KindBuyNow:         "buy_now",
	KindViewOrders:     "view_orders",
	KindViewProfile:    "view_profile",
	KindNavigate:       "navigate",
	KindToggleFavorite: "toggleFavorite",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ProductID tolerates both JSON encodings the backend has used for
// product identifiers: a string and a bare number.
type ProductID string

// UnmarshalJSON accepts `"42"` and `42` alike.
func (p *ProductID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*p = ProductID(asString)
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*p = ProductID(asNumber.String())
	return nil
}

// MarshalJSON re-emits numeric identifiers as numbers so replayed
// payloads match what the user's tap originally produced. Values that
// parse but are not canonical JSON numbers ("0042", "+42") stay
// strings: emitting them bare would corrupt the whole encoded action.
func (p ProductID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(p), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(p) {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// AddToCartPayload is the deferred cart add.
type AddToCartPayload struct {
	ProductID ProductID `json:"productId"`
	Quantity  int       `json:"quantity,omitempty"`
}

// ToggleFavoritePayload is the deferred wishlist toggle.
type ToggleFavoritePayload struct {
	ProductID ProductID `json:"productId"`
}

// Action is one deferred gated action. Exactly one payload field is
// populated, matching Kind. ID and CreatedAt are stamped by the ledger
// when absent; older persisted actions without them still decode.
type Action struct {
	Kind      Kind
	ID        string
	CreatedAt time.Time

	AddToCart      *AddToCartPayload
	BuyNow         json.RawMessage
	ToggleFavorite *ToggleFavoritePayload

	// Path is the target route for KindNavigate, and an optional
	// landing override after a replayed cart add or favorite toggle.
	Path string
}

// NewAddToCart builds a deferred cart add.
func NewAddToCart(productID ProductID, quantity int) *Action {
	return &Action{
		Kind:      KindAddToCart,
		AddToCart: &AddToCartPayload{ProductID: productID, Quantity: quantity},
	}
}

// NewBuyNow builds a deferred direct checkout for the given product
// payload.
func NewBuyNow(product json.RawMessage) *Action {
	return &Action{Kind: KindBuyNow, BuyNow: product}
}

// NewViewOrders builds a deferred navigation to the orders page.
func NewViewOrders() *Action {
	return &Action{Kind: KindViewOrders}
}

// NewViewProfile builds a deferred navigation to the profile page.
func NewViewProfile() *Action {
	return &Action{Kind: KindViewProfile}
}

// NewNavigate builds a deferred navigation to path.
func NewNavigate(path string) *Action {
	return &Action{Kind: KindNavigate, Path: path}
}

// NewToggleFavorite builds a deferred wishlist toggle.
func NewToggleFavorite(productID ProductID) *Action {
	return &Action{
		Kind:           KindToggleFavorite,
		ToggleFavorite: &ToggleFavoritePayload{ProductID: productID},
	}
}

// stamp fills in the identity fields the ledger needs for audit
// correlation and TTL checks.
func (a *Action) stamp(now time.Time) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
}

type wireAction struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	CreatedAt int64           `json:"created_at,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Path      string          `json:"path,omitempty"`
}

// MarshalJSON encodes the action in the tagged wire shape
// {"type": ..., "data": ..., "path": ...}.
func (a Action) MarshalJSON() ([]byte, error) {
	name, ok := kindNames[a.Kind]
	if !ok {
		return nil, ErrUnknownKind
	}

	wire := wireAction{
		Type: name,
		ID:   a.ID,
		Path: a.Path,
	}
	if !a.CreatedAt.IsZero() {
		wire.CreatedAt = a.CreatedAt.UnixMilli()
	}

	var err error
	switch a.Kind {
	case KindAddToCart:
		if a.AddToCart == nil {
			return nil, errors.New("add_to_cart action without payload")
		}
		wire.Data, err = json.Marshal(a.AddToCart)
	case KindBuyNow:
		if len(a.BuyNow) == 0 {
			return nil, errors.New("buy_now action without payload")
		}
		wire.Data = a.BuyNow
	case KindToggleFavorite:
		if a.ToggleFavorite == nil {
			return nil, errors.New("toggleFavorite action without payload")
		}
		wire.Data, err = json.Marshal(a.ToggleFavorite)
	case KindNavigate:
		if a.Path == "" {
			return nil, errors.New("navigate action without path")
		}
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(wire)
}

// UnmarshalJSON decodes the tagged wire shape. Unknown types fail with
// [ErrUnknownKind]; the ledger maps that to "no action".
func (a *Action) UnmarshalJSON(data []byte) error {
	var wire wireAction
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	kind, ok := kindsByName[wire.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, wire.Type)
	}

	*a = Action{Kind: kind, ID: wire.ID, Path: wire.Path}
	if wire.CreatedAt > 0 {
		a.CreatedAt = time.UnixMilli(wire.CreatedAt)
	}

	switch kind {
	case KindAddToCart:
		payload := &AddToCartPayload{}
		if err := json.Unmarshal(wire.Data, payload); err != nil {
			return fmt.Errorf("add_to_cart payload: %w", err)
		}
		a.AddToCart = payload
	case KindBuyNow:
		if len(wire.Data) == 0 {
			return errors.New("buy_now action without payload")
		}
		a.BuyNow = wire.Data
	case KindToggleFavorite:
		payload := &ToggleFavoritePayload{}
		if err := json.Unmarshal(wire.Data, payload); err != nil {
			return fmt.Errorf("toggleFavorite payload: %w", err)
		}
		a.ToggleFavorite = payload
	case KindNavigate:
		if a.Path == "" {
			return errors.New("navigate action without path")
		}
	}

	return nil
}
