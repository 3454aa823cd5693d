package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/chazu/meshgen/pkg/engine"
	"github.com/chazu/meshgen/pkg/kernel/sdfx"
	"github.com/chazu/meshgen/pkg/marching"
	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chazu/meshgen/pkg/tessellate"
	"github.com/ungerik/go3d/vec3"
	"github.com/wailsapp/wails/v2/pkg/logger"
)

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	log    logger.Logger
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
// Attribute arrays are flat, three floats per vertex; absent attributes
// are omitted.
type MeshData struct {
	Name      string    `json:"name"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals,omitempty"`
	Tangents  []float32 `json:"tangents,omitempty"`
	Binormals []float32 `json:"binormals,omitempty"`
	TexCoords []float32 `json:"texcoords,omitempty"`
	Indices   []uint32  `json:"indices"`
	Color     string    `json:"color"`
}

var _ mesh.Sink = (*MeshData)(nil)

// SetAttribute implements mesh.Sink.
func (m *MeshData) SetAttribute(a mesh.Attribute, data []vec3.T) error {
	flat := mesh.Flat(data)
	switch a {
	case mesh.AttrPosition:
		m.Positions = flat
	case mesh.AttrNormal:
		m.Normals = flat
	case mesh.AttrTangent:
		m.Tangents = flat
	case mesh.AttrBinormal:
		m.Binormals = flat
	case mesh.AttrTexCoord:
		m.TexCoords = flat
	default:
		return fmt.Errorf("unsupported attribute %s", a)
	}
	return nil
}

// SetIndices implements mesh.Sink.
func (m *MeshData) SetIndices(tris []mesh.Tri) error {
	m.Indices = make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		m.Indices = append(m.Indices, t[0], t[1], t[2])
	}
	return nil
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine backed by the sdfx kernel.
// A nil logger falls back to the Wails default logger.
func NewApp(log logger.Logger) *App {
	if log == nil {
		log = logger.NewDefaultLogger()
	}
	return &App{
		engine: engine.NewEngine(sdfx.New()),
		log:    log,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a validated scene.
	ev := a.engine.EvaluateAll(source)
	for _, w := range ev.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: warningText(w)})
	}
	if len(ev.Errors) > 0 {
		for _, e := range ev.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 2: Tessellate every scene entry.
	res, err := tessellate.Tessellate(a.context(), ev.Scene)
	if err != nil {
		a.log.Error(fmt.Sprintf("Tessellate error: %v", err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	for _, s := range res.Skipped {
		a.log.Debug(fmt.Sprintf("skipped mesh %q: %v", s.Name, s.Err))
	}

	// Step 3: Hand each buffer to the frontend format.
	for i, buf := range res.Meshes {
		md := MeshData{
			Name:  buf.Name,
			Color: colorPalette[i%len(colorPalette)],
		}
		if err := buf.Emit(&md); err != nil {
			a.log.Error(fmt.Sprintf("Emit error: %v", err))
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			return result
		}
		if md.Indices == nil {
			md.Indices = []uint32{}
		}
		result.Meshes = append(result.Meshes, md)
	}

	return result
}

func warningText(w engine.EvalWarning) string {
	if w.Entry == "" {
		return w.Message
	}
	return fmt.Sprintf("mesh %q: %s", w.Entry, strings.TrimSpace(w.Message))
}

// EdgeTable returns the marching-cubes edge table, one row of
// marching.RowLen entries per cube configuration. GPU geometry stages
// upload it once at startup.
func (a *App) EdgeTable() [][]int {
	table := marching.EdgeTable()
	out := make([][]int, len(table))
	for i := range table {
		out[i] = append([]int(nil), table[i][:]...)
	}
	return out
}
