package aco

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOrders is returned before any search when the request has no stops to deliver.
	ErrNoOrders = errors.New("no orders found for that date at this depot")

	// ErrNoRoute is returned when every iteration finished without a valid route.
	ErrNoRoute = errors.New("no route found, try adding trucks")
)

// ConfigError reports a caller supplied value the optimizer cannot work with.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}
