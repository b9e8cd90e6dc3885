package model

// DeliveryStatus is the lifecycle of a message: sent -> delivered -> read.
// It only ever advances; NextStatus never moves it backwards.
type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
)

// DeliveryEvent is something that can advance a message's status.
type DeliveryEvent string

const (
	// EventReceiverOnline applies when the receiver is reachable at send time.
	EventReceiverOnline   DeliveryEvent = "receiver_online"
	EventDeliveredReceipt DeliveryEvent = "delivered_receipt"
	EventReadReceipt      DeliveryEvent = "read_receipt"
)

// NextStatus returns the status a message moves to when event occurs in the
// current status. Unknown or out-of-order pairs return the current status
// unchanged, which makes duplicate and reordered receipts idempotent no-ops.
func NextStatus(current DeliveryStatus, event DeliveryEvent) DeliveryStatus {
	switch current {
	case StatusSent:
		switch event {
		case EventReceiverOnline, EventDeliveredReceipt:
			return StatusDelivered
		case EventReadReceipt:
			return StatusRead
		}
	case StatusDelivered:
		if event == EventReadReceipt {
			return StatusRead
		}
	}
	return current
}
