package engine

import (
	"errors"
	"fmt"

	"github.com/chazu/meshgen/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
)

var errNoKernel = errors.New("no geometry kernel configured")

// registerSolidBuiltins installs the constructive solid builtins. Every
// builtin returns a sexpSolid; isosurface and defmesh turn them into meshes.
func registerSolidBuiltins(env *zygo.Zlisp, k kernel.Kernel) {

	// positional float helper shared by the primitives.
	floats := func(fn string, args []zygo.Sexp, names ...string) ([]float64, error) {
		if len(args) != len(names) {
			return nil, fmt.Errorf("%s requires %d arguments, got %d", fn, len(names), len(args))
		}
		out := make([]float64, len(args))
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", fn, names[i], err)
			}
			out[i] = f
		}
		return out, nil
	}

	// -----------------------------------------------------------------------
	// (box 2 1 1)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if k == nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", errNoKernel)
		}
		v, err := floats("box", args, "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Box(v[0], v[1], v[2])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("box %g %g %g", v[0], v[1], v[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (ball 1)
	// -----------------------------------------------------------------------
	env.AddFunction("ball", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if k == nil {
			return zygo.SexpNull, fmt.Errorf("ball: %w", errNoKernel)
		}
		v, err := floats("ball", args, "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Sphere(v[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("ball %g", v[0])}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 2 :radius 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if k == nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", errNoKernel)
		}
		pa := parseArgs("cylinder", args)
		if err := pa.only("height", "radius"); err != nil {
			return zygo.SexpNull, err
		}
		h, err := pa.number("height", 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		r, err := pa.number("radius", 0.5)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Cylinder(float64(h), float64(r))
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("cylinder %g %g", h, r)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b c ...), (intersection a b ...), (difference a b c ...)
	// Folded left to right.
	// -----------------------------------------------------------------------
	booleans := []struct {
		name string
		op   func(a, b kernel.Solid) (kernel.Solid, error)
	}{
		{"union", func(a, b kernel.Solid) (kernel.Solid, error) { return k.Union(a, b) }},
		{"difference", func(a, b kernel.Solid) (kernel.Solid, error) { return k.Difference(a, b) }},
		{"intersection", func(a, b kernel.Solid) (kernel.Solid, error) { return k.Intersection(a, b) }},
	}
	for _, b := range booleans {
		env.AddFunction(b.name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if k == nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", b.name, errNoKernel)
			}
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", b.name, len(args))
			}
			acc, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: argument 1: %w", b.name, err)
			}
			cur := acc.solid
			for i := 1; i < len(args); i++ {
				next, err := toSolid(args[i])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", b.name, i+1, err)
				}
				if cur, err = b.op(cur, next.solid); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", b.name, err)
				}
			}
			return &sexpSolid{solid: cur, desc: fmt.Sprintf("%s of %d", b.name, len(args))}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate solid (vec3 1 0 0)), (rotate solid (vec3 0 0 90))
	// -----------------------------------------------------------------------
	transforms := []struct {
		name string
		op   func(s kernel.Solid, x, y, z float64) (kernel.Solid, error)
	}{
		{"translate", func(s kernel.Solid, x, y, z float64) (kernel.Solid, error) { return k.Translate(s, x, y, z) }},
		{"rotate", func(s kernel.Solid, x, y, z float64) (kernel.Solid, error) { return k.Rotate(s, x, y, z) }},
	}
	for _, tr := range transforms {
		env.AddFunction(tr.name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if k == nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", tr.name, errNoKernel)
			}
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3, got %d arguments", tr.name, len(args))
			}
			sol, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", tr.name, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", tr.name, err)
			}
			out, err := tr.op(sol.solid, float64(v[0]), float64(v[1]), float64(v[2]))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", tr.name, err)
			}
			return &sexpSolid{solid: out, desc: tr.name + " " + sol.desc}, nil
		})
	}
}
