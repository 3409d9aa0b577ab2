package combinator

import (
	"sdslc/internal/scan"
)

// Rule is a parser for T. On failure the scanner is where it was at entry.
type Rule[T any] func(s *scan.Scanner, r *Result) (T, bool)

// Unit is the value of rules that only recognise.
type Unit struct{}

// Option is the value of Optional.
type Option[T any] struct {
	Value T
	Some  bool
}

// Attempt wraps a rule that may consume input before failing.
func Attempt[T any](rule Rule[T]) Rule[T] {
	return func(s *scan.Scanner, r *Result) (T, bool) {
		m := s.Mark()
		v, ok := rule(s, r)
		if !ok {
			s.Reset(m)
		}
		return v, ok
	}
}

// Alt tries alternatives in order and returns the first success.
func Alt[T any](rules ...Rule[T]) Rule[T] {
	return func(s *scan.Scanner, r *Result) (T, bool) {
		m := s.Mark()
		for _, rule := range rules {
			if v, ok := rule(s, r); ok {
				return v, true
			}
			s.Reset(m)
			if r.Fatal(s) {
				break
			}
		}
		var zero T
		return zero, false
	}
}

// Optional never fails.
func Optional[T any](rule Rule[T]) Rule[Option[T]] {
	return func(s *scan.Scanner, r *Result) (Option[T], bool) {
		m := s.Mark()
		v, ok := rule(s, r)
		if !ok {
			s.Reset(m)
			return Option[T]{}, true
		}
		return Option[T]{Value: v, Some: true}, true
	}
}

// Many applies rule zero or more times. A success that consumes nothing ends
// the loop.
func Many[T any](rule Rule[T]) Rule[[]T] {
	return func(s *scan.Scanner, r *Result) ([]T, bool) {
		var out []T
		for {
			m := s.Mark()
			v, ok := rule(s, r)
			if !ok {
				s.Reset(m)
				return out, true
			}
			out = append(out, v)
			if s.Off == uint32(m) {
				return out, true
			}
		}
	}
}

// SepBy parses zero or more items separated by sep. A trailing separator is
// left unconsumed.
func SepBy[T, S any](item Rule[T], sep Rule[S]) Rule[[]T] {
	return func(s *scan.Scanner, r *Result) ([]T, bool) {
		first, ok := item(s, r)
		if !ok {
			return nil, true
		}
		out := []T{first}
		for {
			m := s.Mark()
			if _, ok := sep(s, r); !ok {
				s.Reset(m)
				return out, true
			}
			v, ok := item(s, r)
			if !ok {
				s.Reset(m)
				return out, true
			}
			out = append(out, v)
		}
	}
}

// SepBy1 is SepBy requiring at least one item.
func SepBy1[T, S any](item Rule[T], sep Rule[S]) Rule[[]T] {
	list := SepBy(item, sep)
	return func(s *scan.Scanner, r *Result) ([]T, bool) {
		m := s.Mark()
		out, _ := list(s, r)
		if len(out) == 0 {
			s.Reset(m)
			return nil, false
		}
		return out, true
	}
}

// FollowedBy succeeds when rule would match here; it consumes nothing.
func FollowedBy[T any](rule Rule[T]) Rule[Unit] {
	return func(s *scan.Scanner, r *Result) (Unit, bool) {
		m := s.Mark()
		_, ok := rule(s, r)
		s.Reset(m)
		return Unit{}, ok
	}
}

// NotFollowedBy succeeds when rule would not match here. Expectations raised
// by the probe are not recorded.
func NotFollowedBy[T any](rule Rule[T]) Rule[Unit] {
	return func(s *scan.Scanner, r *Result) (Unit, bool) {
		m := s.Mark()
		r.silent++
		_, ok := rule(s, r)
		r.silent--
		s.Reset(m)
		return Unit{}, !ok
	}
}

// Map transforms the value of a successful rule.
func Map[T, U any](rule Rule[T], fn func(T) U) Rule[U] {
	return func(s *scan.Scanner, r *Result) (U, bool) {
		v, ok := rule(s, r)
		if !ok {
			var zero U
			return zero, false
		}
		return fn(v), true
	}
}

// Between parses open body close and returns body.
func Between[O, T, C any](open Rule[O], body Rule[T], close Rule[C]) Rule[T] {
	return Attempt(func(s *scan.Scanner, r *Result) (T, bool) {
		var zero T
		if _, ok := open(s, r); !ok {
			return zero, false
		}
		v, ok := body(s, r)
		if !ok {
			return zero, false
		}
		if _, ok := close(s, r); !ok {
			return zero, false
		}
		return v, true
	})
}

// Lazy defers construction for recursive grammars.
func Lazy[T any](get func() Rule[T]) Rule[T] {
	return func(s *scan.Scanner, r *Result) (T, bool) {
		return get()(s, r)
	}
}
