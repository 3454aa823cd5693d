package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/meshgen/pkg/engine"
	"github.com/chazu/meshgen/pkg/kernel/sdfx"
	"github.com/chazu/meshgen/pkg/lattice"
	"github.com/chazu/meshgen/pkg/marching"
	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chazu/meshgen/pkg/parametric"
	"github.com/chazu/meshgen/pkg/tessellate"
	"github.com/spf13/cobra"
	"github.com/ungerik/go3d/vec3"
)

// cli carries the resolved configuration and logger for one invocation.
type cli struct {
	configPath string
	cfg        Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: DefaultConfig()}

	root := &cobra.Command{
		Use:           "meshgen",
		Short:         "Generate procedural meshes",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "TOML config file")
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVarP(&c.cfg.Output, "output", "o", c.cfg.Output, "output file, - for stdout")
	pf.BoolVar(&c.cfg.Indent, "indent", c.cfg.Indent, "indent JSON output")

	root.AddCommand(
		c.evalCmd(),
		c.quadCmd(),
		c.ringCmd(),
		c.latticeCmd(),
		c.tableCmd(),
	)
	return root
}

// setup merges the config file under the flags and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.configPath != "" {
		fileCfg, err := LoadConfig(c.configPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("log-level") {
			c.cfg.LogLevel = fileCfg.LogLevel
		}
		if !flags.Changed("output") {
			c.cfg.Output = fileCfg.Output
		}
		if !flags.Changed("indent") {
			c.cfg.Indent = fileCfg.Indent
		}
		if !flags.Changed("timeout") {
			c.cfg.EvalTimeout = fileCfg.EvalTimeout
		}
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	level, _ := c.cfg.Level()
	c.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// write encodes v as JSON to the configured output.
func (c *cli) write(cmd *cobra.Command, v any) error {
	if c.cfg.Output == "-" {
		return c.encode(cmd.OutOrStdout(), v)
	}
	f, err := os.Create(c.cfg.Output)
	if err != nil {
		return err
	}
	if err := c.encode(f, v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.cfg.Output, err)
	}
	c.log.Debug("wrote output", "path", c.cfg.Output)
	return nil
}

func (c *cli) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if c.cfg.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", c.cfg.Output, err)
	}
	return nil
}

func (c *cli) evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a mesh script and write every mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			timeout, _ := c.cfg.Timeout()

			eng := engine.NewEngine(sdfx.New())
			eng.Timeout = timeout
			res := eng.EvaluateAll(string(source))
			for _, w := range res.Warnings {
				c.log.Warn(w.Message, "mesh", w.Entry, "line", w.Line)
			}
			if len(res.Errors) > 0 {
				for _, e := range res.Errors {
					c.log.Error(e.Message, "line", e.Line)
				}
				return fmt.Errorf("%s: %d errors", args[0], len(res.Errors))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			out, err := tessellate.Tessellate(ctx, res.Scene)
			if err != nil {
				return err
			}
			for _, s := range out.Skipped {
				c.log.Info("skipped mesh", "mesh", s.Name, "reason", s.Err)
			}
			if len(out.Meshes) == 0 {
				c.log.Warn("script defines no meshes", "script", args[0])
			}
			for _, m := range out.Meshes {
				c.log.Debug("generated", "mesh", m.Name, "vertices", m.VertexCount(), "triangles", m.TriangleCount())
			}
			return c.write(cmd, out.Meshes)
		},
	}
	cmd.Flags().StringVar(&c.cfg.EvalTimeout, "timeout", c.cfg.EvalTimeout, "evaluation timeout")
	return cmd
}

func (c *cli) quadCmd() *cobra.Command {
	var p parametric.QuadParams
	cmd := &cobra.Command{
		Use:   "quad",
		Short: "Tessellate a planar quad",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := p.Generate()
			if err != nil {
				return err
			}
			buf.Name = "quad"
			return c.write(cmd, buf)
		},
	}
	f := cmd.Flags()
	f.Float32Var(&p.Width, "width", 1, "extent along X")
	f.Float32Var(&p.Height, "height", 1, "extent along Y")
	f.IntVar(&p.ResWidth, "res-width", 10, "samples along X")
	f.IntVar(&p.ResHeight, "res-height", 10, "samples along Y")
	return cmd
}

func (c *cli) ringCmd() *cobra.Command {
	var p parametric.RingParams
	cmd := &cobra.Command{
		Use:   "ring",
		Short: "Tessellate an annulus with a tangent frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := p.Generate()
			if err != nil {
				return err
			}
			buf.Name = "ring"
			return c.write(cmd, buf)
		},
	}
	f := cmd.Flags()
	f.Float32Var(&p.InnerRadius, "inner", 0.5, "inner radius")
	f.Float32Var(&p.OuterRadius, "outer", 1, "outer radius")
	f.IntVar(&p.ResRadius, "res-radius", 2, "samples across the band")
	f.IntVar(&p.ResTheta, "res-theta", 32, "samples around the ring")
	return cmd
}

func (c *cli) latticeCmd() *cobra.Command {
	var (
		size   int
		half   float32
		center []float32
	)
	cmd := &cobra.Command{
		Use:   "lattice",
		Short: "Emit the points of a cubic lattice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(center) != 3 {
				return fmt.Errorf("--center needs 3 values, got %d", len(center))
			}
			l, err := lattice.New(size)
			if err != nil {
				return err
			}
			if !(half > 0) {
				return fmt.Errorf("%w: half-extent = %v, need > 0", mesh.ErrInvalidDimension, half)
			}
			buf := l.Transform(vec3.T{center[0], center[1], center[2]}, half).Buffer()
			buf.Name = "lattice"
			c.log.Debug("lattice", "points", buf.VertexCount(), "cells", l.CellCount())
			return c.write(cmd, buf)
		},
	}
	f := cmd.Flags()
	f.IntVar(&size, "size", 8, "samples per axis")
	f.Float32Var(&half, "half-extent", 1, "half the cube edge length")
	f.Float32SliceVar(&center, "center", []float32{0, 0, 0}, "cube center x,y,z")
	return cmd
}

func (c *cli) tableCmd() *cobra.Command {
	var flat bool
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Dump the marching-cubes edge table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flat {
				return c.write(cmd, marching.Flat32())
			}
			return c.write(cmd, marching.EdgeTable())
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "write one flat array of 256*20 values")
	return cmd
}
