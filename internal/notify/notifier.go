// Package notify is the engine's boundary to the notification collaborator.
// The engine emits typed events and never waits for delivery.
package notify

import "log"

// BookingConfirmedEvent fires after capacity is reserved and revenue held.
type BookingConfirmedEvent struct {
	BookingID   int64
	DepartureID int64
	OperatorID  int64
	Amount      int64
}

// BookingCancelledEvent fires when a booking reaches a terminal cancel state.
type BookingCancelledEvent struct {
	BookingID    int64
	Category     string
	RefundAmount int64
	Reason       string
}

// RefundComputedEvent fires when a refund request is recorded for payout.
type RefundComputedEvent struct {
	BookingID   int64
	ReferenceNo string
	NetPayable  int64
}

// RevenueSettledEvent fires when held revenue matures into the wallet.
type RevenueSettledEvent struct {
	BookingID  int64
	OperatorID int64
	Amount     int64
}

// Notifier consumes engine events. Implementations must not block the caller.
type Notifier interface {
	BookingConfirmed(e BookingConfirmedEvent)
	BookingCancelled(e BookingCancelledEvent)
	RefundComputed(e RefundComputedEvent)
	RevenueSettled(e RevenueSettledEvent)
}

// LogNotifier ships events to the process log through a buffered channel. When
// the buffer is full the event is dropped with a warning rather than blocking
// the booking path.
type LogNotifier struct {
	events chan any
}

func NewLogNotifier(buffer int) *LogNotifier {
	if buffer <= 0 {
		buffer = 256
	}
	n := &LogNotifier{events: make(chan any, buffer)}
	go n.drain()
	return n
}

func (n *LogNotifier) drain() {
	for e := range n.events {
		log.Printf("[NOTIFY] event=%T payload=%+v", e, e)
	}
}

func (n *LogNotifier) emit(e any) {
	select {
	case n.events <- e:
	default:
		log.Printf("[NOTIFY] buffer full, dropped event=%T", e)
	}
}

func (n *LogNotifier) BookingConfirmed(e BookingConfirmedEvent) { n.emit(e) }
func (n *LogNotifier) BookingCancelled(e BookingCancelledEvent) { n.emit(e) }
func (n *LogNotifier) RefundComputed(e RefundComputedEvent)     { n.emit(e) }
func (n *LogNotifier) RevenueSettled(e RevenueSettledEvent)     { n.emit(e) }
