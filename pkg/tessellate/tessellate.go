// Package tessellate runs the generators of a scene and collects one mesh
// buffer per entry.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chazu/meshgen/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// Skipped records an entry whose generator is not implemented.
type Skipped struct {
	Name string
	Err  error
}

// Result holds the generated buffers in scene order.
type Result struct {
	Meshes  []*mesh.Buffer
	Skipped []Skipped
}

// Tessellate generates every entry of s concurrently. Buffers come back in
// scene order, named after their entry. Entries whose generator reports
// mesh.ErrNotImplemented are skipped; any other failure aborts the run.
// The tessellator never mutates the scene.
func Tessellate(ctx context.Context, s *scene.Scene) (*Result, error) {
	if s == nil {
		return &Result{}, nil
	}

	bufs := make([]*mesh.Buffer, s.Len())
	errs := make([]error, s.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range s.Entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := generate(e)
			if errors.Is(err, mesh.ErrNotImplemented) {
				errs[i] = err
				return nil
			}
			if err != nil {
				return fmt.Errorf("tessellate: entry %q: %w", e.Name, err)
			}
			bufs[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Meshes: make([]*mesh.Buffer, 0, len(bufs))}
	for i, e := range s.Entries {
		if errs[i] != nil {
			res.Skipped = append(res.Skipped, Skipped{Name: e.Name, Err: errs[i]})
			continue
		}
		res.Meshes = append(res.Meshes, bufs[i])
	}
	return res, nil
}

func generate(e *scene.Entry) (*mesh.Buffer, error) {
	if e.Generator == nil {
		return nil, errors.New("no generator")
	}
	buf, err := e.Generator.Generate()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, errors.New("generator returned no buffer")
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	buf.Name = e.Name
	return buf, nil
}
