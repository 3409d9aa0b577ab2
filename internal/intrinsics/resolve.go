package intrinsics

import (
	"fmt"
	"math"
	"strings"

	"sdslc/internal/target"
	"sdslc/internal/types"
)

// Match is a resolved call: the chosen signature with its parameter types
// bound to concrete types.
type Match struct {
	Sig    *Signature
	Params []*types.Type
	Ret    *types.Type
	Cost   int
}

// NoMatchError reports a call no signature accepts.
type NoMatchError struct {
	Name       string
	Args       []*types.Type
	Candidates []*Signature
}

func (e *NoMatchError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("unknown intrinsic %s", e.Name)
	}
	return fmt.Sprintf("no matching overload for %s(%s); candidates: %s",
		e.Name, typeList(e.Args), sigList(e.Candidates))
}

// AmbiguousError reports a call two or more signatures accept at the same
// cost.
type AmbiguousError struct {
	Name    string
	Args    []*types.Type
	Matches []*Signature
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous call %s(%s); candidates: %s", e.Name, typeList(e.Args), sigList(e.Matches))
}

// ProfileError reports a signature that needs a newer profile.
type ProfileError struct {
	Name     string
	Required target.Profile
	Profile  target.Profile
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("%s requires profile %s or later (compiling for %s)", e.Name, e.Required, e.Profile)
}

func typeList(ts []*types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func sigList(sigs []*Signature) string {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

// Resolve picks the cheapest signature of a builtin function for args.
func Resolve(name string, args []*types.Type, profile target.Profile) (Match, error) {
	return resolve(name, functions[name], nil, args, profile)
}

// ResolveMethod resolves obj.name(args) for textures and buffers.
func ResolveMethod(receiver *types.Type, name string, args []*types.Type, profile target.Profile) (Match, error) {
	key := receiverKey(receiver)
	return resolve(key+"."+name, methods[key+"."+name], receiver, args, profile)
}

func resolve(name string, sigs []*Signature, receiver *types.Type, args []*types.Type, profile target.Profile) (Match, error) {
	best := Match{Cost: math.MaxInt}
	var tied []*Signature
	for _, sig := range sigs {
		m, ok := bind(sig, receiver, args)
		if !ok {
			continue
		}
		switch {
		case m.Cost < best.Cost:
			best, tied = m, []*Signature{sig}
		case m.Cost == best.Cost:
			tied = append(tied, sig)
		}
	}
	if best.Sig == nil {
		return Match{}, &NoMatchError{Name: name, Args: args, Candidates: sigs}
	}
	if len(tied) > 1 {
		return Match{}, &AmbiguousError{Name: name, Args: args, Matches: tied}
	}
	if best.Sig.MinProfile > profile {
		return Match{}, &ProfileError{Name: name, Required: best.Sig.MinProfile, Profile: profile}
	}
	return best, nil
}

const invalidCost = math.MaxInt / 4

// bind checks args against sig: arity, class compatibility, slot
// unification and conversion cost.
func bind(sig *Signature, receiver *types.Type, args []*types.Type) (Match, bool) {
	if len(args) != len(sig.Params) {
		return Match{}, false
	}
	adapted := make([]*types.Type, len(args))
	for i, p := range sig.Params {
		t, ok := p.Class.adapt(args[i])
		if !ok {
			return Match{}, false
		}
		adapted[i] = t
	}
	slots := make(map[int]*types.Type)
	for _, p := range sig.Params {
		slot := p.Class.Slot
		if slot == 0 || slots[slot] != nil {
			continue
		}
		slots[slot] = unify(sig, slot, adapted, args)
	}
	params := make([]*types.Type, len(args))
	for i, p := range sig.Params {
		if p.Class.Slot > 0 {
			params[i] = slots[p.Class.Slot]
		} else {
			params[i] = adapted[i]
		}
	}
	ret := returnType(sig.Ret, slots, receiver)
	if sig.Check != nil {
		var ok bool
		params, ret, ok = sig.Check(params)
		if !ok {
			return Match{}, false
		}
	}
	cost := 0
	for i, p := range sig.Params {
		if p.Qual.Writes() {
			if !types.Equal(args[i], params[i]) {
				return Match{}, false
			}
			continue
		}
		c := types.Convert(args[i], params[i])
		if !c.OK() {
			return Match{}, false
		}
		cost += c.Cost
	}
	return Match{Sig: sig, Params: params, Ret: ret, Cost: cost}, true
}

// unify picks, among the adapted argument types of a slot, the one all
// slot arguments convert to most cheaply; earlier arguments win ties.
func unify(sig *Signature, slot int, adapted, args []*types.Type) *types.Type {
	var best *types.Type
	bestCost := invalidCost
	for i, p := range sig.Params {
		if p.Class.Slot != slot {
			continue
		}
		cand := adapted[i]
		cost := 0
		for j, q := range sig.Params {
			if q.Class.Slot != slot {
				continue
			}
			c := types.Convert(args[j], cand)
			if !c.OK() {
				cost = invalidCost
				break
			}
			cost += c.Cost
		}
		if cost < bestCost {
			best, bestCost = cand, cost
		}
	}
	if best == nil {
		for i, p := range sig.Params {
			if p.Class.Slot == slot {
				return adapted[i]
			}
		}
	}
	return best
}

func returnType(r Return, slots map[int]*types.Type, receiver *types.Type) *types.Type {
	switch r.Kind {
	case RetVoid:
		return types.Void
	case RetConcrete:
		if r.Type == nil {
			return types.Invalid
		}
		return r.Type
	case RetSlot:
		return slots[r.Slot]
	case RetScalarOf:
		return types.ScalarOf(slots[r.Slot].Scalar)
	case RetShapeOf:
		return slots[r.Slot].WithScalar(r.Scalar)
	case RetVectorOf:
		return types.VectorOf(slots[r.Slot].Scalar, r.Size)
	case RetElem:
		if receiver != nil && receiver.Elem != nil {
			return receiver.Elem
		}
	}
	return types.Invalid
}
