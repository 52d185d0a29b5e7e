package domain

import "time"

// CheckoutOutcome is what notifiers receive after every checkout attempt.
type CheckoutOutcome struct {
	UserID    string
	Purchases []Purchase
	Err       error
	At        time.Time
}

func (o CheckoutOutcome) Succeeded() bool {
	return o.Err == nil
}
