package booking

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending                  Status = "PENDING"
	StatusAwaitingOnlinePayment    Status = "AWAITING_ONLINE_PAYMENT"
	StatusAwaitingCashConfirmation Status = "AWAITING_CASH_CONFIRMATION"
	StatusCompleted                Status = "COMPLETED"
	StatusFailed                   Status = "FAILED"
	StatusCancelled                Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAwaitingOnlinePayment, StatusAwaitingCashConfirmation,
		StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the booking can never change state again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsAwaitingPayment reports whether the booking is parked on an external
// confirmation (gateway or staff).
func (s Status) IsAwaitingPayment() bool {
	return s == StatusAwaitingOnlinePayment || s == StatusAwaitingCashConfirmation
}

// CanTransitionTo encodes the legal state machine edges.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		switch target {
		case StatusAwaitingOnlinePayment, StatusAwaitingCashConfirmation,
			StatusFailed, StatusCancelled:
			return true
		}
	case StatusAwaitingOnlinePayment, StatusAwaitingCashConfirmation:
		switch target {
		case StatusCompleted, StatusFailed, StatusCancelled:
			return true
		}
	}
	return false
}

// PaymentMethod distinguishes the two purchase paths.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "ONLINE"
	PaymentCash   PaymentMethod = "CASH"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentOnline || m == PaymentCash
}

// PaymentStatus tracks settlement separately from the booking lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)
