package aco

import (
	"errors"
	"fmt"
	"route-planner-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Initial walk orders for the greedy starting solution.
const (
	OrderDiscovery = "discovery"
	OrderNearest   = "nearest"
)

var validate = validator.New()

// Params tunes one optimizer run.
type Params struct {
	// Q is the probability of exploiting the most attractive edge instead of sampling.
	Q float64 `yaml:"q" validate:"gte=0,lte=1"`
	// P is the pheromone update rate.
	P     float64 `yaml:"p" validate:"gte=0,lte=1"`
	Beta  float64 `yaml:"beta" validate:"gte=0"`
	Limit int     `yaml:"limit" validate:"gt=0"`
	Ants  int     `yaml:"ants" validate:"gt=0"`

	TruckCount int `yaml:"truck_count" validate:"gt=0"`
	Capacity   int `yaml:"capacity" validate:"gt=0"`
	// TimeLimit is the longest a truck may be out, in seconds.
	TimeLimit int `yaml:"time_limit" validate:"gt=0"`

	OptimizeBy   domain.Metric `yaml:"optimize_by" validate:"oneof=seconds meters"`
	InitialOrder string        `yaml:"initial_order" validate:"omitempty,oneof=discovery nearest"`
}

func DefaultParams() Params {
	return Params{
		Q:            0.7,
		P:            0.5,
		Beta:         1.5,
		Limit:        10,
		Ants:         1,
		TruckCount:   3,
		Capacity:     10,
		TimeLimit:    21600,
		OptimizeBy:   domain.MetricSeconds,
		InitialOrder: OrderDiscovery,
	}
}

// Validate checks every field and returns the first problem as a *ConfigError.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate params: %w", err)
	}

	fe := verrs[0]
	return &ConfigError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}
