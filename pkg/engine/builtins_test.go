package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/meshgen/pkg/kernel/sdfx"
	"github.com/chazu/meshgen/pkg/marching"
	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chazu/meshgen/pkg/parametric"
	"github.com/chazu/meshgen/pkg/scene"
	"github.com/ungerik/go3d/vec3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(ring :outer 2)`,
			expect: `(ring "__kw_outer" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(quad :width 4 :height 2)`,
			expect: `(quad "__kw_width" 4 "__kw_height" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def cell-count 8)`,
			expect: `(def cell_count 8)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:res-width`,
			expect: `"__kw_res-width"`,
		},
		{
			name:   "defmesh tagged with its line",
			input:  "\n\n(defmesh \"a\" (quad))",
			expect: "\n\n(defmesh \"__kw___line\" 3 \"a\" (quad))",
		},
		{
			name:   "line count skips multi-line strings",
			input:  "\"x\ny\"\n(defmesh \"a\" (ring))",
			expect: "\"x\ny\"\n(defmesh \"__kw___line\" 3 \"a\" (ring))",
		},
		{
			name:   "defmesh prefix of longer symbol untouched",
			input:  `(defmesh-all x)`,
			expect: `(defmesh_all x)`,
		},
		{
			name:   "defmesh in comment untouched",
			input:  `; (defmesh "a" (quad))`,
			expect: `// (defmesh "a" (quad))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalScene evaluates source with the sdfx kernel and fails on any error.
func evalScene(t *testing.T, source string) *scene.Scene {
	t.Helper()
	s, evalErrs, err := NewEngine(sdfx.New()).Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
	return s
}

// evalFails evaluates source and returns the eval errors, failing if there
// are none.
func evalFails(t *testing.T, source string) []EvalError {
	t.Helper()
	s, evalErrs, err := NewEngine(sdfx.New()).Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatalf("expected eval errors, got scene with %d entries", s.Len())
	}
	return evalErrs
}

// ---------------------------------------------------------------------------
// Parametric shapes
// ---------------------------------------------------------------------------

func TestQuad(t *testing.T) {
	s := evalScene(t, `
(defmesh "floor"
  (quad :width 4 :height 2 :res-width 8 :res-height 4))
`)
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
	floor := s.Lookup("floor")
	if floor == nil {
		t.Fatal("expected entry named 'floor'")
	}
	if floor.Kind != scene.KindQuad {
		t.Errorf("expected quad, got %s", floor.Kind)
	}
	p, ok := floor.Generator.(parametric.QuadParams)
	if !ok {
		t.Fatalf("expected QuadParams, got %T", floor.Generator)
	}
	want := parametric.QuadParams{Width: 4, Height: 2, ResWidth: 8, ResHeight: 4}
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}
}

func TestQuadDefaults(t *testing.T) {
	s := evalScene(t, `(defmesh "q" (quad))`)
	p := s.Lookup("q").Generator.(parametric.QuadParams)
	want := parametric.QuadParams{Width: 1, Height: 1, ResWidth: defaultGridRes, ResHeight: defaultGridRes}
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}
}

func TestVariableReference(t *testing.T) {
	s := evalScene(t, `
(def n 6)
(def r 2.5)
(defmesh "disc" (ring :inner 1 :outer r :res-radius 3 :res-theta (* n 2)))
`)
	p, ok := s.Lookup("disc").Generator.(parametric.RingParams)
	if !ok {
		t.Fatalf("expected RingParams, got %T", s.Lookup("disc").Generator)
	}
	want := parametric.RingParams{InnerRadius: 1, OuterRadius: 2.5, ResRadius: 3, ResTheta: 12}
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}
}

func TestStubShapes(t *testing.T) {
	s := evalScene(t, `
(defmesh "ball" (sphere :radius 2))
(defmesh "donut" (torus :major 3 :minor 1))
`)
	for _, name := range []string{"ball", "donut"} {
		e := s.Lookup(name)
		if e == nil {
			t.Fatalf("missing entry %q", name)
		}
		if _, err := e.Generator.Generate(); !errors.Is(err, mesh.ErrNotImplemented) {
			t.Errorf("%s: err = %v, want ErrNotImplemented", name, err)
		}
	}
	if s.Lookup("ball").Kind != scene.KindSphere || s.Lookup("donut").Kind != scene.KindTorus {
		t.Error("wrong kinds for stub shapes")
	}
}

func TestLattice(t *testing.T) {
	s := evalScene(t, `(defmesh "grid" (lattice :size 4 :center (vec3 10 0 0) :half-extent 2))`)
	e := s.Lookup("grid")
	if e.Kind != scene.KindLattice {
		t.Fatalf("expected lattice, got %s", e.Kind)
	}
	buf, err := e.Generator.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if buf.VertexCount() != 64 {
		t.Errorf("vertex count = %d, want 64", buf.VertexCount())
	}
	if got, want := buf.Positions[0], (vec3.T{8, -2, -2}); got != want {
		t.Errorf("first point = %v, want %v", got, want)
	}
}

func TestResolutionMustBeInteger(t *testing.T) {
	errs := evalFails(t, `(defmesh "q" (quad :res-width 2.5))`)
	if !strings.Contains(errs[0].Message, "expected integer") {
		t.Errorf("message = %q, want integer complaint", errs[0].Message)
	}
}

func TestUnknownKeyword(t *testing.T) {
	errs := evalFails(t, `(defmesh "q" (quad :depth 3))`)
	if !strings.Contains(errs[0].Message, "unknown keyword :depth") {
		t.Errorf("message = %q", errs[0].Message)
	}
}

func TestDefmeshRecordsLine(t *testing.T) {
	s := evalScene(t, `(def w 2)

(defmesh "floor"
  (quad :width w))
(defmesh "disc" (ring))
`)
	for name, want := range map[string]int{"floor": 3, "disc": 5} {
		e := s.Lookup(name)
		if e == nil {
			t.Fatalf("missing entry %q", name)
		}
		if e.Line != want {
			t.Errorf("%s: Line = %d, want %d", name, e.Line, want)
		}
	}
}

func TestCellsOnlyForSolids(t *testing.T) {
	errs := evalFails(t, `(defmesh "q" (quad) :cells 8)`)
	if !strings.Contains(errs[0].Message, "unknown keyword :cells") {
		t.Errorf("message = %q, want :cells rejected for a shape body", errs[0].Message)
	}
}

func TestVec3(t *testing.T) {
	env := evalScene(t, `(def v (vec3 1 2.5 -3))`)
	if env.Len() != 0 {
		t.Errorf("vec3 alone should not define meshes")
	}
	evalFails(t, `(vec3 1 2)`)
}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

func TestIsosurfaceOfSolids(t *testing.T) {
	s := evalScene(t, `
(def body (difference (box 2 2 2) (ball 1.2)))
(def moved (translate (rotate body (vec3 0 0 45)) (vec3 5 0 0)))
(defmesh "shell" (isosurface moved :size 24))
`)
	e := s.Lookup("shell")
	if e == nil || e.Kind != scene.KindIsosurface {
		t.Fatalf("expected isosurface entry, got %+v", e)
	}
	iso, ok := e.Generator.(marching.Isosurface)
	if !ok {
		t.Fatalf("expected marching.Isosurface, got %T", e.Generator)
	}
	if iso.Size != 24 {
		t.Errorf("size = %d, want 24", iso.Size)
	}
	if iso.Center[0] < 4.9 || iso.Center[0] > 5.1 {
		t.Errorf("center = %v, want x near 5", iso.Center)
	}
	buf, err := iso.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if buf.TriangleCount() == 0 {
		t.Error("expected triangles")
	}
}

func TestSolidMesh(t *testing.T) {
	s := evalScene(t, `
(defmesh "peg" (union (cylinder :height 2 :radius 0.5) (box 1 1 0.2)) :cells 16)
`)
	e := s.Lookup("peg")
	if e.Kind != scene.KindSolid {
		t.Fatalf("expected solid, got %s", e.Kind)
	}
	buf, err := e.Generator.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if buf.IsEmpty() {
		t.Error("expected geometry")
	}
}

func TestSolidErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"union needs two", `(union (ball 1))`, "at least 2"},
		{"union of non-solid", `(union (ball 1) 3)`, "expected solid"},
		{"translate needs vec3", `(translate (ball 1) 3)`, "expected vec3"},
		{"isosurface of shape", `(isosurface (quad))`, "expected solid"},
		{"defmesh of number", `(defmesh "x" 3)`, "expected shape or solid"},
		{"defmesh without body", `(defmesh "x")`, "requires a name"},
		{"box arity", `(box 1 2)`, "requires 3 arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evalFails(t, tt.source)
			if !strings.Contains(errs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.want)
			}
		})
	}
}

func TestSolidsWithoutKernel(t *testing.T) {
	_, evalErrs, err := NewEngine(nil).Evaluate(`(box 1 1 1)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "no geometry kernel") {
		t.Errorf("eval errors = %v, want missing kernel", evalErrs)
	}
}

// ---------------------------------------------------------------------------
// Regression: plain Lisp still works alongside the builtins
// ---------------------------------------------------------------------------

func TestEmptySourceStillWorks(t *testing.T) {
	s := evalScene(t, "")
	if s.Len() != 0 {
		t.Errorf("expected empty scene, got %d entries", s.Len())
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	s := evalScene(t, `
(def w (+ 1 1))
(defmesh "wide" (quad :width (* w 3) :res-width 2 :res-height 2))
`)
	p := s.Lookup("wide").Generator.(parametric.QuadParams)
	if p.Width != 6 {
		t.Errorf("width = %v, want 6", p.Width)
	}
}
