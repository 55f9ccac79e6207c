package realtime

type EventType string

const (
	EventPaymentAccepted EventType = "PAYMENT_ACCEPTED"
	EventPaymentRejected EventType = "PAYMENT_REJECTED"
	EventOrderUpdated    EventType = "ORDER_UPDATED"
	EventOrderAccepted   EventType = "ORDER_ACCEPTED"
	EventItemDelivered   EventType = "ITEM_DELIVERED"
	EventSalaryUpdated   EventType = "SALARY_UPDATED"
)

// Event is a server to client message. Implementations carry a "type"
// field so clients can switch on it.
type Event interface {
	EventType() EventType
}

// Target addresses one subscriber.
type Target struct {
	Role Role
	Key  string
}

func CustomerTarget(confirmedOrderID string) Target {
	return Target{Role: RoleCustomer, Key: confirmedOrderID}
}

func KitchenTarget(restaurantID string) Target {
	return Target{Role: RoleChef, Key: restaurantID}
}

func WorkerTarget(workerID string) Target {
	return Target{Role: RoleWorker, Key: workerID}
}

type StatusEvent struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

func (e StatusEvent) EventType() EventType { return e.Type }

func PaymentAccepted() StatusEvent {
	return StatusEvent{Type: EventPaymentAccepted, Message: "Payment Accepted Successfully"}
}

func PaymentRejected() StatusEvent {
	return StatusEvent{Type: EventPaymentRejected, Message: "Payment Rejected"}
}

// ItemUpdate describes one item change pushed to the customer.
type ItemUpdate struct {
	ItemName string `json:"itemName"`
	OldQty   int    `json:"oldQty"`
	NewQty   int    `json:"newQty"`
	Action   string `json:"action"`
}

type OrderUpdatedEvent struct {
	Type    EventType    `json:"type"`
	Updates []ItemUpdate `json:"updates"`
}

func (e OrderUpdatedEvent) EventType() EventType { return e.Type }

func OrderUpdated(updates []ItemUpdate) OrderUpdatedEvent {
	return OrderUpdatedEvent{Type: EventOrderUpdated, Updates: updates}
}

// OrderAcceptedEvent carries the accepted order's item list as the kitchen
// sees it.
type OrderAcceptedEvent struct {
	Type  EventType `json:"type"`
	Items any       `json:"items"`
}

func (e OrderAcceptedEvent) EventType() EventType { return e.Type }

func OrderAccepted(items any) OrderAcceptedEvent {
	return OrderAcceptedEvent{Type: EventOrderAccepted, Items: items}
}

type ItemDeliveredEvent struct {
	Type     EventType `json:"type"`
	ItemName string    `json:"itemName"`
	Quantity int       `json:"quantity"`
}

func (e ItemDeliveredEvent) EventType() EventType { return e.Type }

func ItemDelivered(itemName string, quantity int) ItemDeliveredEvent {
	return ItemDeliveredEvent{Type: EventItemDelivered, ItemName: itemName, Quantity: quantity}
}

type SalaryUpdatedEvent struct {
	Type   EventType `json:"type"`
	Salary float64   `json:"salary"`
}

func (e SalaryUpdatedEvent) EventType() EventType { return e.Type }

func SalaryUpdated(salary float64) SalaryUpdatedEvent {
	return SalaryUpdatedEvent{Type: EventSalaryUpdated, Salary: salary}
}
