package domain

import "time"

type Status string

const (
	StatusReceived       Status = "Order Received"
	StatusPreparing      Status = "Preparing"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
)

// statusSequence is the only order in which an order may move.
var statusSequence = []Status{
	StatusReceived,
	StatusPreparing,
	StatusOutForDelivery,
	StatusDelivered,
}

// Statuses returns the full lifecycle in order.
func Statuses() []Status {
	out := make([]Status, len(statusSequence))
	copy(out, statusSequence)
	return out
}

// ParseStatus resolves a status from its display name
func ParseStatus(s string) (Status, bool) {
	for _, st := range statusSequence {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Index returns the position of the status in the lifecycle, or -1 if unknown.
func (s Status) Index() int {
	for i, st := range statusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) IsValid() bool {
	return s.Index() >= 0
}

// Next returns the status that follows s. The second value is false for
// Delivered and for unknown statuses.
func (s Status) Next() (Status, bool) {
	i := s.Index()
	if i < 0 || i == len(statusSequence)-1 {
		return "", false
	}
	return statusSequence[i+1], true
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered
}

// CanTransitionTo reports whether next is exactly one step ahead of s.
func (s Status) CanTransitionTo(next Status) bool {
	n, ok := s.Next()
	return ok && n == next
}

// StatusLog represents a log entry for order status changes
type StatusLog struct {
	ID        int
	OrderID   string
	Status    Status
	ChangedBy string
	ChangedAt time.Time
}
