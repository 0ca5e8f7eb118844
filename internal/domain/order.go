package domain

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
)

var ErrIllegalTransition = errors.New("illegal order status transition")

// orderStatusTransitions lists the only moves allowed out of each status.
// served is terminal.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPreparing},
	OrderStatusPreparing: {OrderStatusReady},
	OrderStatusReady:     {OrderStatusServed},
	OrderStatusServed:    {},
}

func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusServed}
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderStatusTransitions[s]) == 0
}

// Order is a customer's request for menu items. Items holds one entry per
// ordered unit, so a dish ordered twice appears twice. TotalPrice is the sum
// of item prices at creation time and is never recomputed.
type Order struct {
	ID           uint
	CustomerName string
	Items        []MenuItem
	TotalPrice   int64
	Status       OrderStatus
	OrderTime    time.Time
}

// TransitionTo moves the order to next, leaving it untouched when the move
// is not in the transition table.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, next)
	}
	o.Status = next
	return nil
}

// OrderFilter narrows an order listing. Zero fields match everything.
// Customer is a case-insensitive substring of the customer name.
type OrderFilter struct {
	Status   OrderStatus
	Customer string
}
