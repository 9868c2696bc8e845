package probes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{
			name: "valid",
			rule: Rule{Name: "lag", Expression: "$.replication.lag_seconds", Operator: "gt", Threshold: 30},
		},
		{
			name: "operator normalized",
			rule: Rule{Name: "lag", Expression: "$.lag", Operator: "GTE", Threshold: 1},
		},
		{
			name:    "missing name",
			rule:    Rule{Expression: "$.lag", Operator: "gt", Threshold: 1},
			wantErr: "rule name is required",
		},
		{
			name:    "missing expression",
			rule:    Rule{Name: "lag", Operator: "gt", Threshold: 1},
			wantErr: "rule expression is required",
		},
		{
			name:    "unknown operator",
			rule:    Rule{Name: "lag", Expression: "$.lag", Operator: "between", Threshold: 1},
			wantErr: "invalid operator: between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestRuleEvaluate(t *testing.T) {
	doc := decodeDoc(t, `{
		"replication": {"lag_seconds": 45.5},
		"connections": {"active": 120},
		"status": "degraded"
	}`)

	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{
			name: "gt matches",
			rule: Rule{Name: "lag", Expression: "$.replication.lag_seconds", Operator: "gt", Threshold: 30},
			want: true,
		},
		{
			name: "gt below threshold",
			rule: Rule{Name: "lag", Expression: "$.replication.lag_seconds", Operator: "gt", Threshold: 60},
			want: false,
		},
		{
			name: "lte boundary",
			rule: Rule{Name: "conns", Expression: "$.connections.active", Operator: "lte", Threshold: 120},
			want: true,
		},
		{
			name: "eq on string",
			rule: Rule{Name: "status", Expression: "$.status", Operator: "eq", Threshold: "degraded"},
			want: true,
		},
		{
			name: "ne on string",
			rule: Rule{Name: "status", Expression: "$.status", Operator: "ne", Threshold: "healthy"},
			want: true,
		},
		{
			name: "eq numeric coercion across types",
			rule: Rule{Name: "conns", Expression: "$.connections.active", Operator: "eq", Threshold: "120"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := tt.rule.evaluate(doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, matched)
		})
	}
}

func TestRuleEvaluateErrors(t *testing.T) {
	doc := decodeDoc(t, `{"status": "ok"}`)

	missing := Rule{Name: "lag", Expression: "$.replication.lag_seconds", Operator: "gt", Threshold: 30}
	_, err := missing.evaluate(doc)
	assert.ErrorContains(t, err, "returned no results")

	nonNumeric := Rule{Name: "status", Expression: "$.status", Operator: "gt", Threshold: 1}
	_, err = nonNumeric.evaluate(doc)
	assert.ErrorContains(t, err, "cannot convert")
}

func TestCompareNumbers(t *testing.T) {
	cmp, err := compareNumbers(int64(5), 5.0)
	require.NoError(t, err)
	assert.Zero(t, cmp)

	cmp, err = compareNumbers("4.5", 5)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = compareNumbers(6, int32(5))
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func decodeDoc(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}
