// Package piecewise implements ordered first-match lookup tables keyed by
// threshold predicates over a position and heading.
//
// A Table is scanned in authored order and the first rule whose predicate
// holds wins. Comparisons are strict, so a point lying exactly on a threshold
// never satisfies the rule guarded by it and falls through to the next one.
package piecewise

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownAxis = errors.New("piecewise: unknown axis")
	ErrUnknownOp   = errors.New("piecewise: unknown operator")
)

// Axis selects the coordinate a Condition tests.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisYaw
)

var axisNames = map[Axis]string{
	AxisX:   "x",
	AxisY:   "y",
	AxisZ:   "z",
	AxisYaw: "yaw",
}

func (a Axis) String() string {
	if s, ok := axisNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis maps "x", "y", "z" or "yaw" to an Axis.
func ParseAxis(s string) (Axis, error) {
	for a, name := range axisNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAxis, s)
}

// Op is a strict comparison operator.
type Op int

const (
	Greater Op = iota
	Less
)

func (o Op) String() string {
	switch o {
	case Greater:
		return ">"
	case Less:
		return "<"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp maps ">" or "<" to an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case ">":
		return Greater, nil
	case "<":
		return Less, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Point is the sample a predicate is evaluated against. Yaw is in degrees.
type Point struct {
	X, Y, Z float32
	Yaw     float32
}

func (p Point) coord(a Axis) float32 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	case AxisZ:
		return p.Z
	case AxisYaw:
		return p.Yaw
	}
	return 0
}

// Condition is a single strict threshold test such as "x > 1032.92".
type Condition struct {
	Axis  Axis
	Op    Op
	Value float32
}

// Holds reports whether p satisfies the condition.
func (c Condition) Holds(p Point) bool {
	v := p.coord(c.Axis)
	switch c.Op {
	case Greater:
		return v > c.Value
	case Less:
		return v < c.Value
	}
	return false
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Axis, c.Op, c.Value)
}

type conditionJSON struct {
	Axis  string  `json:"axis"`
	Op    string  `json:"op"`
	Value float32 `json:"value"`
}

func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionJSON{Axis: c.Axis.String(), Op: c.Op.String(), Value: c.Value})
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	axis, err := ParseAxis(raw.Axis)
	if err != nil {
		return err
	}
	op, err := ParseOp(raw.Op)
	if err != nil {
		return err
	}
	*c = Condition{Axis: axis, Op: op, Value: raw.Value}
	return nil
}

// Predicate is a conjunction of conditions. The empty predicate matches
// every point and is the usual way to author a fallback rule.
type Predicate []Condition

// Matches reports whether every condition holds for p.
func (pr Predicate) Matches(p Point) bool {
	for _, c := range pr {
		if !c.Holds(p) {
			return false
		}
	}
	return true
}

// Gt and Lt are shorthands for authoring conditions in Go code.
func Gt(a Axis, v float32) Condition { return Condition{Axis: a, Op: Greater, Value: v} }
func Lt(a Axis, v float32) Condition { return Condition{Axis: a, Op: Less, Value: v} }

// Between returns the open interval lo < axis < hi.
func Between(a Axis, lo, hi float32) Predicate {
	return Predicate{Gt(a, lo), Lt(a, hi)}
}

// Box returns the open rectangle x in (x0, x1), z in (z0, z1).
func Box(x0, x1, z0, z1 float32) Predicate {
	return Predicate{Gt(AxisX, x0), Lt(AxisX, x1), Gt(AxisZ, z0), Lt(AxisZ, z1)}
}

// Rule pairs a predicate with the value it selects.
type Rule[T any] struct {
	Name  string    `json:"name,omitempty"`
	When  Predicate `json:"when"`
	Value T         `json:"value"`
}

// Table is an ordered list of rules evaluated first-match-wins.
type Table[T any] struct {
	Rules []Rule[T] `json:"rules"`
}

// NewTable builds a table from rules in the order given.
func NewTable[T any](rules ...Rule[T]) *Table[T] {
	return &Table[T]{Rules: rules}
}

// Add appends a rule at the lowest priority.
func (t *Table[T]) Add(name string, when Predicate, value T) {
	t.Rules = append(t.Rules, Rule[T]{Name: name, When: when, Value: value})
}

// Len returns the number of rules.
func (t *Table[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rules)
}

// Lookup returns the first rule matching p and its index. ok is false when
// no rule matches; the returned rule is then the zero value and index is -1.
func (t *Table[T]) Lookup(p Point) (rule Rule[T], index int, ok bool) {
	if t == nil {
		return rule, -1, false
	}
	for i, r := range t.Rules {
		if r.When.Matches(p) {
			return r, i, true
		}
	}
	return rule, -1, false
}

// Value is Lookup without the index, falling back to def on no match.
func (t *Table[T]) Value(p Point, def T) T {
	if r, _, ok := t.Lookup(p); ok {
		return r.Value
	}
	return def
}
