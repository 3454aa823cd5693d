package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/meshgen/pkg/kernel"
	"github.com/chazu/meshgen/pkg/lattice"
	"github.com/chazu/meshgen/pkg/marching"
	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chazu/meshgen/pkg/parametric"
	"github.com/chazu/meshgen/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/ungerik/go3d/vec3"
)

// Defaults applied when a keyword is omitted.
const (
	defaultGridRes      = 10
	defaultRingTheta    = 32
	defaultLatticeSize  = 8
	defaultIsoSize      = 32
	defaultIsoMargin    = 0.1
	defaultSolidCells   = 64
	defaultSphereRes    = 16
	defaultTorusTheta   = 32
	defaultTorusPhi     = 16
	defaultTorusMinor   = 0.25
	defaultRingInnerRad = 0.5
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vec3.T.
type sexpVec3 struct {
	vec vec3.T
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape is an unnamed mesh generator returned by quad, ring, sphere,
// torus, lattice and isosurface and consumed by defmesh.
type sexpShape struct {
	kind scene.Kind
	gen  scene.Generator
	desc string
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string { return "(" + s.desc + ")" }
func (s *sexpShape) Type() *zygo.RegisteredType            { return nil }

// sexpSolid wraps a kernel.Solid.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string { return "(" + s.desc + ")" }
func (s *sexpSolid) Type() *zygo.RegisteredType            { return nil }

// sexpMeshRef is returned by defmesh.
type sexpMeshRef struct {
	name string
}

func (m *sexpMeshRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %q)", m.name)
}
func (m *sexpMeshRef) Type() *zygo.RegisteredType { return nil }

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
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	result := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
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

// only rejects keywords outside allowed.
func (pa kwArgs) only(allowed ...string) error {
	var unknown []string
	for k := range pa.kw {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, ":"+k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%s: unknown keyword %s", pa.fn, strings.Join(unknown, ", "))
}

func (pa kwArgs) number(key string, def float32) (float32, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", pa.fn, key, err)
	}
	return float32(f), nil
}

func (pa kwArgs) integer(key string, def int) (int, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", pa.fn, key, err)
	}
	return n, nil
}

func (pa kwArgs) vector(key string, def vec3.T) (vec3.T, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return vec3.T{}, fmt.Errorf("%s: %s: %w", pa.fn, key, err)
	}
	return vec, nil
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

// toInt extracts an integer. Floats are rejected so that a resolution is
// never silently truncated.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vec3.T from a sexpVec3.
func toVec3(s zygo.Sexp) (vec3.T, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return vec3.T{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a kernel.Solid from a sexpSolid.
func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the mesh DSL builtins into a zygomys
// environment. defmesh adds entries to s; solid builtins go through k,
// which may be nil, in which case they fail.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene, k kernel.Kernel) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v vec3.T
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = float32(f)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (quad :width 2 :height 1 :res-width 8 :res-height 4)
	// -----------------------------------------------------------------------
	env.AddFunction("quad", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("quad", args)
		if err := pa.only("width", "height", "res-width", "res-height"); err != nil {
			return zygo.SexpNull, err
		}
		var p parametric.QuadParams
		var err error
		if p.Width, err = pa.number("width", 1); err != nil {
			return zygo.SexpNull, err
		}
		if p.Height, err = pa.number("height", 1); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResWidth, err = pa.integer("res-width", defaultGridRes); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResHeight, err = pa.integer("res-height", defaultGridRes); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{
			kind: scene.KindQuad,
			gen:  p,
			desc: fmt.Sprintf("quad %gx%g %dx%d", p.Width, p.Height, p.ResWidth, p.ResHeight),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (ring :inner 0.5 :outer 1 :res-radius 4 :res-theta 32)
	// -----------------------------------------------------------------------
	env.AddFunction("ring", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("ring", args)
		if err := pa.only("inner", "outer", "res-radius", "res-theta"); err != nil {
			return zygo.SexpNull, err
		}
		var p parametric.RingParams
		var err error
		if p.InnerRadius, err = pa.number("inner", defaultRingInnerRad); err != nil {
			return zygo.SexpNull, err
		}
		if p.OuterRadius, err = pa.number("outer", 1); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResRadius, err = pa.integer("res-radius", 2); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResTheta, err = pa.integer("res-theta", defaultRingTheta); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{
			kind: scene.KindRing,
			gen:  p,
			desc: fmt.Sprintf("ring %g..%g %dx%d", p.InnerRadius, p.OuterRadius, p.ResRadius, p.ResTheta),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 1 :res-theta 16 :res-phi 16)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("sphere", args)
		if err := pa.only("radius", "res-theta", "res-phi"); err != nil {
			return zygo.SexpNull, err
		}
		var p parametric.SphereParams
		var err error
		if p.Radius, err = pa.number("radius", 1); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResTheta, err = pa.integer("res-theta", defaultSphereRes); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResPhi, err = pa.integer("res-phi", defaultSphereRes); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{kind: scene.KindSphere, gen: p, desc: fmt.Sprintf("sphere %g", p.Radius)}, nil
	})

	// -----------------------------------------------------------------------
	// (torus :major 1 :minor 0.25 :res-theta 32 :res-phi 16)
	// -----------------------------------------------------------------------
	env.AddFunction("torus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("torus", args)
		if err := pa.only("major", "minor", "res-theta", "res-phi"); err != nil {
			return zygo.SexpNull, err
		}
		var p parametric.TorusParams
		var err error
		if p.MajorRadius, err = pa.number("major", 1); err != nil {
			return zygo.SexpNull, err
		}
		if p.MinorRadius, err = pa.number("minor", defaultTorusMinor); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResTheta, err = pa.integer("res-theta", defaultTorusTheta); err != nil {
			return zygo.SexpNull, err
		}
		if p.ResPhi, err = pa.integer("res-phi", defaultTorusPhi); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{kind: scene.KindTorus, gen: p, desc: fmt.Sprintf("torus %g %g", p.MajorRadius, p.MinorRadius)}, nil
	})

	// -----------------------------------------------------------------------
	// (lattice :size 8 :center (vec3 0 0 0) :half-extent 1)
	// -----------------------------------------------------------------------
	env.AddFunction("lattice", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("lattice", args)
		if err := pa.only("size", "center", "half-extent"); err != nil {
			return zygo.SexpNull, err
		}
		size, err := pa.integer("size", defaultLatticeSize)
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := pa.vector("center", vec3.T{})
		if err != nil {
			return zygo.SexpNull, err
		}
		half, err := pa.number("half-extent", 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		gen := scene.GeneratorFunc(func() (*mesh.Buffer, error) {
			if !(half > 0) {
				return nil, fmt.Errorf("lattice: %w: half-extent = %v, need > 0", mesh.ErrInvalidDimension, half)
			}
			l, err := lattice.New(size)
			if err != nil {
				return nil, err
			}
			return l.Transform(center, half).Buffer(), nil
		})
		return &sexpShape{kind: scene.KindLattice, gen: gen, desc: fmt.Sprintf("lattice %d", size)}, nil
	})

	registerSolidBuiltins(env, k)

	// -----------------------------------------------------------------------
	// (isosurface solid :size 32 :iso 0 :margin 0.1)
	// (isosurface solid :center (vec3 0 0 0) :half-extent 2)
	// -----------------------------------------------------------------------
	env.AddFunction("isosurface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("isosurface", args)
		if err := pa.only("size", "iso", "margin", "center", "half-extent"); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("isosurface requires exactly one solid, got %d arguments", len(pa.positional))
		}
		sol, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("isosurface: %w", err)
		}

		iso := marching.Isosurface{Field: sol.solid}
		if iso.Size, err = pa.integer("size", defaultIsoSize); err != nil {
			return zygo.SexpNull, err
		}
		if iso.Iso, err = pa.number("iso", 0); err != nil {
			return zygo.SexpNull, err
		}
		margin, err := pa.number("margin", defaultIsoMargin)
		if err != nil {
			return zygo.SexpNull, err
		}

		center, half := kernel.Bounds(sol.solid, 0)
		half *= 1 + margin
		if iso.Size > 0 {
			// The lattice stops one cell short of +halfExtent.
			half += 2 * half / float32(iso.Size)
		}
		if iso.Center, err = pa.vector("center", center); err != nil {
			return zygo.SexpNull, err
		}
		if iso.HalfExtent, err = pa.number("half-extent", half); err != nil {
			return zygo.SexpNull, err
		}

		return &sexpShape{
			kind: scene.KindIsosurface,
			gen:  iso,
			desc: fmt.Sprintf("isosurface %s %d", sol.desc, iso.Size),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (defmesh "name" (quad ...))
	// (defmesh "name" (box 1 1 1) :cells 64)
	// -----------------------------------------------------------------------
	env.AddFunction("defmesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("defmesh", args)
		if err := pa.only("cells", lineKW); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defmesh requires a name and a body expression")
		}

		meshName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh: name: %w", err)
		}

		line, err := pa.integer(lineKW, 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		entry := &scene.Entry{Name: meshName, Line: line}
		switch body := pa.positional[1].(type) {
		case *sexpShape:
			// :cells only steers the solid mesher.
			if err := pa.only(lineKW); err != nil {
				return zygo.SexpNull, err
			}
			entry.Kind = body.kind
			entry.Generator = body.gen
		case *sexpSolid:
			cells, err := pa.integer("cells", defaultSolidCells)
			if err != nil {
				return zygo.SexpNull, err
			}
			sol := body.solid
			entry.Kind = scene.KindSolid
			entry.Generator = scene.GeneratorFunc(func() (*mesh.Buffer, error) {
				return k.ToMesh(sol, cells)
			})
		default:
			return zygo.SexpNull, fmt.Errorf("defmesh: expected shape or solid, got %T (%s)",
				pa.positional[1], pa.positional[1].SexpString(nil))
		}
		s.Add(entry)

		return &sexpMeshRef{name: meshName}, nil
	})
}
