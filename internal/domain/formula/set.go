package formula

import (
	"sort"

	"github.com/cockroachdb/errors"
)

var ErrCycle = errors.New("formula dependency cycle")

// Set is a group of compiled formulas keyed by the metric they produce,
// ordered so that a formula runs after every formula it reads.
type Set struct {
	order []string
	exprs map[string]*Expression
}

// NewSet compiles sources and orders them by dependency.
func NewSet(sources map[string]string) (*Set, error) {
	exprs := make(map[string]*Expression, len(sources))
	for key, src := range sources {
		expr, err := Compile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "formula %q", key)
		}
		exprs[key] = expr
	}

	keys := make([]string, 0, len(exprs))
	for key := range exprs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(keys))
	order := make([]string, 0, len(keys))

	var visit func(key string) error
	visit = func(key string) error {
		switch state[key] {
		case done:
			return nil
		case visiting:
			return errors.Wrapf(ErrCycle, "through %q", key)
		}
		state[key] = visiting
		for _, ref := range exprs[key].References() {
			if _, derived := exprs[ref]; !derived {
				continue
			}
			if err := visit(ref); err != nil {
				return err
			}
		}
		state[key] = done
		order = append(order, key)
		return nil
	}

	for _, key := range keys {
		if err := visit(key); err != nil {
			return nil, err
		}
	}

	return &Set{order: order, exprs: exprs}, nil
}

// Keys returns the produced keys in evaluation order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Expression returns the compiled formula for key.
func (s *Set) Expression(key string) (*Expression, bool) {
	if s == nil {
		return nil, false
	}
	expr, ok := s.exprs[key]
	return expr, ok
}

// Apply evaluates every formula in order, writing results into row. Keys whose
// formula failed are left absent from row and reported with their error.
func (s *Set) Apply(row map[string]float64) map[string]error {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	var failed map[string]error
	for _, key := range s.order {
		v, err := s.exprs[key].Eval(row)
		if err != nil {
			delete(row, key)
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[key] = err
			continue
		}
		row[key] = v
	}
	return failed
}
