package stats

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/zeusync/gameplay/internal/core/observability/log"
)

// ScriptStrategy evaluates a tengo script for every query, letting designers
// redefine the stacking rules per Host without a rebuild.
//
// The script sees two globals and must assign a number to `result`:
//
//	query  {name, value, tier, tags}
//	group  [{name, value, tier, tags, pwn}, ...] members sharing a tag with
//	       query, in insertion order, query excluded
//
// Tiers are passed by name ("base", "additive", ...). The math module is
// importable. When the script fails the fallback strategy answers instead
// and the error is logged.
type ScriptStrategy struct {
	compiled *tengo.Compiled
	fallback StackingStrategy
	log      log.Log
	lastErr  error
}

var _ StackingStrategy = (*ScriptStrategy)(nil)

type ScriptOption func(*ScriptStrategy)

func WithFallback(s StackingStrategy) ScriptOption {
	return func(ss *ScriptStrategy) {
		if s != nil {
			ss.fallback = s
		}
	}
}

func WithScriptLogger(l log.Log) ScriptOption {
	return func(ss *ScriptStrategy) {
		if l != nil {
			ss.log = l
		}
	}
}

// NewScriptStrategy compiles src. Compile errors are returned immediately.
func NewScriptStrategy(src []byte, opts ...ScriptOption) (*ScriptStrategy, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math"))
	_ = script.Add("query", map[string]any{})
	_ = script.Add("group", []any{})
	_ = script.Add("result", nil)

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("stats: compile stacking script: %w", err)
	}

	ss := &ScriptStrategy{
		compiled: compiled,
		fallback: TieredStrategy{},
		log:      log.NewNop(),
	}
	for _, opt := range opts {
		opt(ss)
	}
	return ss, nil
}

func (ss *ScriptStrategy) Calculate(members []*Stat, query *Stat) float64 {
	v, err := ss.Evaluate(members, query)
	if err != nil {
		ss.lastErr = err
		ss.log.Warn("stacking script failed, using fallback",
			log.Stringer("query", query),
			log.Error(err),
		)
		return ss.fallback.Calculate(members, query)
	}
	return v
}

// Evaluate runs the script once and reports script errors instead of falling back.
func (ss *ScriptStrategy) Evaluate(members []*Stat, query *Stat) (float64, error) {
	group := make([]tengo.Object, 0, len(members))
	for _, m := range members {
		if m == query || !intersects(m.tags, query.tags) {
			continue
		}
		group = append(group, statObject(m))
	}

	if err := ss.compiled.Set("query", statObject(query)); err != nil {
		return 0, err
	}
	if err := ss.compiled.Set("group", &tengo.ImmutableArray{Value: group}); err != nil {
		return 0, err
	}
	if err := ss.compiled.Set("result", nil); err != nil {
		return 0, err
	}
	if err := ss.compiled.Run(); err != nil {
		return 0, fmt.Errorf("stats: run stacking script: %w", err)
	}

	res := ss.compiled.Get("result")
	switch res.ValueType() {
	case "float", "int":
		return res.Float(), nil
	default:
		return 0, fmt.Errorf("%w: got %s", ErrScriptNoResult, res.ValueType())
	}
}

// LastError returns the most recent script failure seen by Calculate.
func (ss *ScriptStrategy) LastError() error {
	return ss.lastErr
}

func statObject(s *Stat) tengo.Object {
	tags := make([]tengo.Object, len(s.tags))
	for i, t := range s.tags {
		tags[i] = &tengo.Int{Value: int64(t)}
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"name":  &tengo.String{Value: s.name},
		"value": &tengo.Float{Value: s.value},
		"tier":  &tengo.String{Value: s.tier.String()},
		"pwn":   &tengo.String{Value: s.pwn.String()},
		"tags":  &tengo.ImmutableArray{Value: tags},
	}}
}
