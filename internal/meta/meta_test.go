package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestNew_NonObjectIsEmpty(t *testing.T) {
	assert.True(t, New(`[1,2]`).IsZero())
	assert.True(t, New(`not json`).IsZero())
	assert.False(t, New(`{}`).IsZero())
}

func TestFirst_SkipsMissingAndNull(t *testing.T) {
	r := New(`{"a": null, "b": "", "c": "x"}`)

	v, ok := r.First("missing", "a", "b", "c")
	assert.True(t, ok)
	assert.Equal(t, "", v.String(), "empty string is a non-null value and wins")

	_, ok = r.First("missing", "a")
	assert.False(t, ok)
}

func TestNumber(t *testing.T) {
	r := New(`{"budget": "1,250.50", "bad": "abc", "n": 42, "flag": true, "zero": null}`)

	assert.Equal(t, 1250.5, r.Number("budget"))
	assert.Equal(t, 0.0, r.Number("bad"))
	assert.Equal(t, 42.0, r.Number("zero", "n"))
	assert.Equal(t, 1.0, r.Number("flag"))
	assert.Equal(t, 0.0, r.Number("missing"))
}

func TestNestedPath(t *testing.T) {
	r := New(`{"cost": {"projectCost": "5000"}}`)
	assert.Equal(t, 5000.0, r.Number("cost.projectCost"))
	assert.Equal(t, 5000.0, r.Object("cost").Number("projectCost"))
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		`{"v": true}`:  true,
		`{"v": false}`: false,
		`{"v": 0}`:     false,
		`{"v": 3}`:     true,
		`{"v": ""}`:    false,
		`{"v": "no"}`:  true,
		`{"v": null}`:  false,
		`{"v": []}`:    true,
		`{"v": {}}`:    true,
		`{"other": 1}`: false,
	}
	for raw, want := range cases {
		assert.Equal(t, want, New(raw).Truthy("v"), raw)
	}
}

func TestPresent_EmptyArrayIsNoSignal(t *testing.T) {
	assert.False(t, New(`{"deps": []}`).Present("deps"))
	assert.True(t, New(`{"deps": ["A1"]}`).Present("deps"))
	assert.True(t, New(`{"deps": "A1"}`).Present("deps"))
	assert.False(t, New(`{"deps": null, "other": ["x"]}`).Present("deps"))
}

func TestContains(t *testing.T) {
	r := New(`{"docStatus": "Pending approval", "budgetStatus": "OK"}`)
	assert.True(t, r.Contains("pending", "budgetStatus", "docStatus"))
	assert.False(t, r.Contains("pending", "budgetStatus"))
}

func TestList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`"A, B ,C"`, []string{"A", "B", "C"}},
		{`"A;B"`, []string{"A", "B"}},
		{`"A, B; C"`, []string{"A", "B; C"}},
		{`"  solo "`, []string{"solo"}},
		{`""`, nil},
		{`["x", "", 7, null, {"id": "u-1"}]`, []string{"x", "7", "u-1"}},
		{`0`, nil},
		{`12`, []string{"12"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, List(gjson.Parse(tt.raw)), tt.raw)
	}
}
