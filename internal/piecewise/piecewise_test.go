package piecewise

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionStrictness(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		p    Point
		want bool
	}{
		{"greater above", Gt(AxisX, 1032.92), Point{X: 1033}, true},
		{"greater on boundary", Gt(AxisX, 1032.92), Point{X: 1032.92}, false},
		{"greater below", Gt(AxisX, 1032.92), Point{X: 1000}, false},
		{"less below", Lt(AxisZ, -150), Point{Z: -151}, true},
		{"less on boundary", Lt(AxisZ, -150), Point{Z: -150}, false},
		{"yaw axis", Gt(AxisYaw, 5), Point{Yaw: 5.5}, true},
		{"y axis", Lt(AxisY, 10), Point{Y: 9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Holds(tt.p))
		})
	}
}

func TestLookupFirstMatchWins(t *testing.T) {
	table := NewTable(
		Rule[string]{Name: "inner", When: Box(0, 10, 0, 10), Value: "inner"},
		Rule[string]{Name: "outer", When: Box(-100, 100, -100, 100), Value: "outer"},
		Rule[string]{Name: "fallback", Value: "fallback"},
	)

	rule, idx, ok := table.Lookup(Point{X: 5, Z: 5})
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "inner", rule.Value)

	// On the inner boundary the point falls through to the next rule.
	rule, idx, ok = table.Lookup(Point{X: 10, Z: 5})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "outer", rule.Value)

	rule, idx, ok = table.Lookup(Point{X: 500, Z: 5})
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "fallback", rule.Name)
}

func TestLookupNoMatch(t *testing.T) {
	table := NewTable(Rule[int]{When: Between(AxisX, 0, 1), Value: 7})

	rule, idx, ok := table.Lookup(Point{X: 2})
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.Zero(t, rule.Value)
	assert.Equal(t, 42, table.Value(Point{X: 2}, 42))
	assert.Equal(t, 7, table.Value(Point{X: 0.5}, 42))

	var nilTable *Table[int]
	_, idx, ok = nilTable.Lookup(Point{})
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.Zero(t, nilTable.Len())
}

func TestEmptyPredicateMatchesEverything(t *testing.T) {
	assert.True(t, Predicate{}.Matches(Point{X: -1e6, Z: 1e6, Yaw: 720}))
}

func TestConditionJSON(t *testing.T) {
	data, err := json.Marshal(Gt(AxisX, 1032.92))
	require.NoError(t, err)
	assert.JSONEq(t, `{"axis":"x","op":">","value":1032.92}`, string(data))

	var c Condition
	require.NoError(t, json.Unmarshal([]byte(`{"axis":"yaw","op":"<","value":-2}`), &c))
	assert.Equal(t, Lt(AxisYaw, -2), c)

	err = json.Unmarshal([]byte(`{"axis":"w","op":"<","value":1}`), &c)
	assert.ErrorIs(t, err, ErrUnknownAxis)

	err = json.Unmarshal([]byte(`{"axis":"x","op":">=","value":1}`), &c)
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestTableJSONPreservesOrder(t *testing.T) {
	table := NewTable[float32]()
	table.Add("a", Box(0, 1, 0, 1), 1)
	table.Add("b", Between(AxisYaw, -2, 2), 2)
	table.Add("c", nil, 3)

	data, err := json.Marshal(table)
	require.NoError(t, err)

	var decoded Table[float32]
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 3, decoded.Len())
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, decoded.Rules[i].Name)
	}
	assert.Equal(t, table.Rules[1].When, decoded.Rules[1].When)
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "x > 1.5", Gt(AxisX, 1.5).String())
	assert.Equal(t, "yaw < -2", Lt(AxisYaw, -2).String())
	assert.Equal(t, "Axis(9)", Axis(9).String())
	assert.Equal(t, "Op(9)", Op(9).String())
}
