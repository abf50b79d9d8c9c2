package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/rvegen/pkg/config"
	"github.com/chazu/rvegen/pkg/geom"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: radius-min -> radius_min
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpBox wraps a geom.Box so it can be returned from `box` or `cube`
// and consumed by `rve :domain`.
type sexpBox struct {
	box geom.Box
}

func (b *sexpBox) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(box %s %s)",
		(&sexpVec3{vec: b.box.Min}).SexpString(ps),
		(&sexpVec3{vec: b.box.Max}).SexpString(ps))
}
func (b *sexpBox) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt64 extracts an integer from a SexpInt.
func toInt64(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts an r3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toBox extracts a geom.Box from a sexpBox.
func toBox(s zygo.Sexp) (geom.Box, error) {
	if b, ok := s.(*sexpBox); ok {
		return b.box, nil
	}
	return geom.Box{}, fmt.Errorf("expected box, got %T (%s)", s, s.SexpString(nil))
}

func corner(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// scriptState collects what the builtins of one evaluation produce.
type scriptState struct {
	params  *config.Params
	defined bool
}

// rveSetter applies one `rve` keyword to the parameters.
type rveSetter func(p *config.Params, v zygo.Sexp) error

func floatKey(dst func(p *config.Params) *float64) rveSetter {
	return func(p *config.Params, v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		*dst(p) = f
		return nil
	}
}

func intKey(set func(p *config.Params, n int64) error) rveSetter {
	return func(p *config.Params, v zygo.Sexp) error {
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		return set(p, n)
	}
}

// rveKeys lists the keywords accepted by `rve`. :domain and :min/:max are
// applied in sorted key order, so :min/:max override :domain.
var rveKeys = map[string]rveSetter{
	"domain": func(p *config.Params, v zygo.Sexp) error {
		b, err := toBox(v)
		if err != nil {
			return err
		}
		p.Domain = config.DomainParams{Min: corner(b.Min), Max: corner(b.Max)}
		return nil
	},
	"max": func(p *config.Params, v zygo.Sexp) error {
		vec, err := toVec3(v)
		if err != nil {
			return err
		}
		p.Domain.Max = corner(vec)
		return nil
	},
	"min": func(p *config.Params, v zygo.Sexp) error {
		vec, err := toVec3(v)
		if err != nil {
			return err
		}
		p.Domain.Min = corner(vec)
		return nil
	},
	"radius-min": floatKey(func(p *config.Params) *float64 { return &p.RadiusMin }),
	"radius-max": floatKey(func(p *config.Params) *float64 { return &p.RadiusMax }),
	"target":     floatKey(func(p *config.Params) *float64 { return &p.TargetVolumeFraction }),
	"samples": intKey(func(p *config.Params, n int64) error {
		p.IntegrationPoints = n
		return nil
	}),
	"tries": intKey(func(p *config.Params, n int64) error {
		p.TriesPerInclusion = int(n)
		return nil
	}),
	"seed": intKey(func(p *config.Params, n int64) error {
		if n < 0 {
			return fmt.Errorf("must not be negative, got %d", n)
		}
		p.Seed = uint64(n)
		return nil
	}),
	"circle-points": intKey(func(p *config.Params, n int64) error {
		p.Mesh.CircleDiscretizationPoints = int(n)
		return nil
	}),
	"preview-cells": intKey(func(p *config.Params, n int64) error {
		p.Mesh.PreviewCells = int(n)
		return nil
	}),
}

// registerBuiltins installs the RVE builtins into a zygomys environment.
// They record their effect in st during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *scriptState) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}

		return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (box (vec3 0 0 0) (vec3 2 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("box requires a min and a max corner, got %d arguments", len(args))
		}
		min, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: min: %w", err)
		}
		max, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: max: %w", err)
		}
		return &sexpBox{box: geom.NewBox(min, max)}, nil
	})

	// -----------------------------------------------------------------------
	// (cube 2) is the box from (-1,-1,-1) to (1,1,1)
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("cube requires exactly 1 argument, got %d", len(args))
		}
		side, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: side: %w", err)
		}
		if side <= 0 {
			return zygo.SexpNull, fmt.Errorf("cube: side must be positive, got %g", side)
		}
		h := side / 2
		return &sexpBox{box: geom.NewBox(r3.Vec{X: -h, Y: -h, Z: -h}, r3.Vec{X: h, Y: h, Z: h})}, nil
	})

	// -----------------------------------------------------------------------
	// (rve :domain (cube 2) :radius-min 0.1 :radius-max 0.2 :target 0.3
	//      :samples 1000000 :tries 100 :seed 13
	//      :circle-points 12 :preview-cells 64)
	// -----------------------------------------------------------------------
	env.AddFunction("rve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if st.defined {
			return zygo.SexpNull, fmt.Errorf("rve: a script may describe only one rve")
		}
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("rve: unexpected positional argument %s",
				pa.positional[0].SexpString(nil))
		}

		for _, key := range slices.Sorted(maps.Keys(pa.kw)) {
			set, ok := rveKeys[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("rve: unknown keyword :%s", key)
			}
			if err := set(st.params, pa.kw[key]); err != nil {
				return zygo.SexpNull, fmt.Errorf("rve: %s: %w", key, err)
			}
		}
		st.defined = true

		return zygo.SexpNull, nil
	})
}
