// Package probes provides reference Probe implementations: HTTP metric
// probes driven by JSONPath degradation rules, and MongoDB probes.
package probes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oliveagle/jsonpath"
)

// Rule describes a degradation condition evaluated against a JSON metrics
// document. When the value selected by Expression matches Operator/Threshold
// the probe reports a halt.
type Rule struct {
	Name       string `json:"name"`
	Expression string `json:"expression"` // JSONPath into the metrics document
	Operator   string `json:"operator"`   // eq, ne, gt, lt, gte, lte
	Threshold  any    `json:"threshold"`
}

// Validate validates the rule
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.Expression == "" {
		return errors.New("rule expression is required")
	}

	validOperators := map[string]bool{
		"eq": true, "ne": true, "gt": true, "lt": true, "gte": true, "lte": true,
	}
	if !validOperators[strings.ToLower(r.Operator)] {
		return fmt.Errorf("invalid operator: %s", r.Operator)
	}
	r.Operator = strings.ToLower(r.Operator)

	return nil
}

// evaluate reports whether the rule matches the decoded JSON document
func (r *Rule) evaluate(doc any) (bool, error) {
	pattern, err := jsonpath.Compile(r.Expression)
	if err != nil {
		return false, fmt.Errorf("invalid JSONPath expression '%s': %w", r.Expression, err)
	}

	value, err := pattern.Lookup(doc)
	if err != nil {
		return false, fmt.Errorf("JSONPath expression '%s' returned no results: %w", r.Expression, err)
	}

	return compare(r.Operator, value, r.Threshold)
}

// compare evaluates an operator against the extracted value and threshold
func compare(operator string, value, threshold any) (bool, error) {
	switch strings.ToLower(operator) {
	case "eq":
		return areEqual(value, threshold), nil
	case "ne":
		return !areEqual(value, threshold), nil
	case "gt":
		cmp, err := compareNumbers(value, threshold)
		return cmp > 0, err
	case "lt":
		cmp, err := compareNumbers(value, threshold)
		return cmp < 0, err
	case "gte":
		cmp, err := compareNumbers(value, threshold)
		return cmp >= 0, err
	case "lte":
		cmp, err := compareNumbers(value, threshold)
		return cmp <= 0, err
	default:
		return false, fmt.Errorf("unknown operator: %s", operator)
	}
}

// coerceToNumber attempts to convert a value to float64
func coerceToNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		num, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string '%s' to number", v)
		}
		return num, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", value)
	}
}

// areEqual compares two values with numeric coercion before falling back to
// string comparison
func areEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	numA, errA := coerceToNumber(a)
	numB, errB := coerceToNumber(b)
	if errA == nil && errB == nil {
		return numA == numB
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compareNumbers compares two values as numbers
func compareNumbers(a, b any) (int, error) {
	numA, err := coerceToNumber(a)
	if err != nil {
		return 0, fmt.Errorf("cannot compare: left value - %w", err)
	}

	numB, err := coerceToNumber(b)
	if err != nil {
		return 0, fmt.Errorf("cannot compare: right value - %w", err)
	}

	switch {
	case numA < numB:
		return -1, nil
	case numA > numB:
		return 1, nil
	default:
		return 0, nil
	}
}
