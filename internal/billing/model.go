package billing

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	StatusPending  PaymentStatus = "Pending"
	StatusAccepted PaymentStatus = "Accepted"
	StatusRejected PaymentStatus = "Rejected"
)

// ParsePaymentStatus accepts the verbs the owner dashboard sends as well as
// the stored values. Pending is not a resolution.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch strings.TrimSpace(raw) {
	case "Accept", "Accepted":
		return StatusAccepted, nil
	case "Reject", "Rejected":
		return StatusRejected, nil
	default:
		return "", ErrInvalidStatus
	}
}

// BillItem is one cart line as the customer page sent it. Name, price and
// quantity are decoded; the whole entry, totalPrice and cart id included,
// is kept verbatim and written back unchanged.
type BillItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`

	raw json.RawMessage
}

type billItemFields BillItem

func (it *BillItem) UnmarshalJSON(data []byte) error {
	var f billItemFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*it = BillItem(f)
	it.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (it BillItem) MarshalJSON() ([]byte, error) {
	if len(it.raw) > 0 {
		return it.raw, nil
	}
	return json.Marshal(billItemFields(it))
}

// Bill is an immutable snapshot of what the customer was charged. Only the
// payment status moves, and a resolved bill is deleted.
type Bill struct {
	ID               uuid.UUID     `json:"_id"`
	RequestID        string        `json:"requestId"`
	RestaurantID     uuid.UUID     `json:"restaurant_id"`
	ConfirmedOrderID uuid.UUID     `json:"confirmedOrderId"`
	Items            []BillItem    `json:"items"`
	Subtotal         float64       `json:"subtotal"`
	ServiceCharges   float64       `json:"serviceCharges"`
	GST              float64       `json:"gst"`
	GrandTotal       float64       `json:"grandTotal"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	CreatedAt        time.Time     `json:"createdAt"`
}

type CreateInput struct {
	RestaurantID     string     `json:"restaurant_id"`
	ConfirmedOrderID string     `json:"confirmedOrderId"`
	RequestID        string     `json:"requestId"`
	Items            []BillItem `json:"items"`
	Subtotal         *float64   `json:"subtotal"`
	ServiceCharges   *float64   `json:"serviceCharges"`
	GST              *float64   `json:"gst"`
	GrandTotal       *float64   `json:"grandTotal"`
	PaymentStatus    string     `json:"paymentStatus"`
}

// NewBill validates in and copies its items so later edits to the caller's
// slice never reach the snapshot.
func NewBill(in CreateInput, now time.Time) (*Bill, error) {
	if in.RestaurantID == "" || in.ConfirmedOrderID == "" || strings.TrimSpace(in.RequestID) == "" ||
		len(in.Items) == 0 ||
		in.Subtotal == nil || in.ServiceCharges == nil || in.GST == nil || in.GrandTotal == nil {
		return nil, ErrMissingFields
	}

	restaurantID, err := uuid.Parse(in.RestaurantID)
	if err != nil {
		return nil, ErrMissingFields
	}
	orderID, err := uuid.Parse(in.ConfirmedOrderID)
	if err != nil {
		return nil, ErrMissingFields
	}

	if in.PaymentStatus != "" && PaymentStatus(in.PaymentStatus) != StatusPending {
		return nil, ErrInitialStatus
	}

	items := make([]BillItem, len(in.Items))
	copy(items, in.Items)

	return &Bill{
		ID:               uuid.New(),
		RequestID:        strings.TrimSpace(in.RequestID),
		RestaurantID:     restaurantID,
		ConfirmedOrderID: orderID,
		Items:            items,
		Subtotal:         *in.Subtotal,
		ServiceCharges:   *in.ServiceCharges,
		GST:              *in.GST,
		GrandTotal:       *in.GrandTotal,
		PaymentStatus:    StatusPending,
		CreatedAt:        now,
	}, nil
}
