// Package projection converts internal records into API-facing shapes.
// Fields are copied by identical name; fields that need computing (for
// example role links flattened to a list of names) are registered as
// transforms and derived from the raw source record. The package never
// queries — everything it projects must already be loaded.
package projection

import "reflect"

// Projector maps model M to response R. Safe for concurrent use once all
// transforms are registered (register at construction, not per request).
type Projector[M any, R any] struct {
	transforms map[string]func(*M) any
}

// New returns an empty projector for the M → R pair.
func New[M any, R any]() *Projector[M, R] {
	return &Projector[M, R]{transforms: make(map[string]func(*M) any)}
}

// Transform registers a custom computation for one destination field,
// overriding the by-name copy. The function receives the raw source record,
// not the partially copied result.
func (p *Projector[M, R]) Transform(field string, fn func(*M) any) *Projector[M, R] {
	p.transforms[field] = fn
	return p
}

// One projects a single record.
func (p *Projector[M, R]) One(src *M) R {
	var dst R
	sv := reflect.ValueOf(src).Elem()
	dv := reflect.ValueOf(&dst).Elem()
	dt := dv.Type()

	for i := 0; i < dt.NumField(); i++ {
		field := dt.Field(i)
		if !field.IsExported() {
			continue
		}
		if _, ok := p.transforms[field.Name]; ok {
			continue
		}
		s := sv.FieldByName(field.Name)
		if !s.IsValid() || !s.Type().AssignableTo(field.Type) {
			continue
		}
		dv.Field(i).Set(s)
	}

	for name, fn := range p.transforms {
		fv := dv.FieldByName(name)
		if !fv.IsValid() {
			continue
		}
		out := reflect.ValueOf(fn(src))
		if out.IsValid() && out.Type().AssignableTo(fv.Type()) {
			fv.Set(out)
		}
	}
	return dst
}

// Many projects a slice, preserving order. Always returns a non-nil slice so
// empty pages serialize as [] rather than null.
func (p *Projector[M, R]) Many(src []M) []R {
	out := make([]R, 0, len(src))
	for i := range src {
		out = append(out, p.One(&src[i]))
	}
	return out
}

// PageOf projects a slice and wraps it in page metadata.
func (p *Projector[M, R]) PageOf(src []M, offset, limit int, total *int64) Page[R] {
	return NewPage(p.Many(src), offset, limit, total)
}
