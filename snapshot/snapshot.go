// Package snapshot renders single frames of the knot as anti-aliased
// vector images with gg.
//
// Triangles are projected with the compositor's matrices, back faces are
// dropped, and the rest are painted far to near with one flat color each.
package snapshot

import (
	"fmt"
	"io"
	"sort"

	"github.com/gogpu/gg"

	"trefoil/frame"
	"trefoil/knot"
	"trefoil/shader"
	"trefoil/vmath"
)

type Options struct {
	Width  int
	Height int

	Material frame.Material
	Light    vmath.Vec3

	// Outline strokes every face edge with this width in pixels. Zero
	// disables it.
	Outline float64
}

// DefaultOptions match the compositor defaults at 640x360.
func DefaultOptions() Options {
	return Options{
		Width:    640,
		Height:   360,
		Material: frame.DefaultMaterial,
		Light:    frame.LightPosition,
	}
}

type face struct {
	pts   [3][2]float64
	depth float32
	color vmath.Vec3
}

// Render draws mesh under st into a new gg context. The caller closes it.
func Render(mesh knot.Mesh, st frame.State, opts Options) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("snapshot: invalid size %dx%d", opts.Width, opts.Height)
	}
	faces := project(mesh, st, opts)

	dc := gg.NewContext(opts.Width, opts.Height)
	bg := frame.ClearColor
	dc.ClearWithColor(gg.RGB(float64(bg.X), float64(bg.Y), float64(bg.Z)))
	if opts.Outline > 0 {
		dc.SetLineWidth(opts.Outline)
	}

	for _, f := range faces {
		dc.MoveTo(f.pts[0][0], f.pts[0][1])
		dc.LineTo(f.pts[1][0], f.pts[1][1])
		dc.LineTo(f.pts[2][0], f.pts[2][1])
		dc.ClosePath()
		dc.SetRGB(float64(f.color.X), float64(f.color.Y), float64(f.color.Z))
		var err error
		if opts.Outline > 0 {
			if err = dc.FillPreserve(); err == nil {
				dc.SetRGB(0, 0, 0)
				err = dc.Stroke()
			}
		} else {
			err = dc.Fill()
		}
		if err != nil {
			_ = dc.Close()
			return nil, fmt.Errorf("snapshot: paint face: %w", err)
		}
	}
	return dc, nil
}

// project returns the front faces sorted far to near.
func project(mesh knot.Mesh, st frame.State, opts Options) []face {
	n := mesh.VertexCount()
	view := make([]vmath.Vec3, n)
	screen := make([][2]float64, n)
	ok := make([]bool, n)
	w, h := float64(opts.Width), float64(opts.Height)
	for i := 0; i < n; i++ {
		p := vmath.Mat4MulV4(st.ModelView, mesh.Vertices.Sample(i).Position.Vec4(1))
		view[i] = p.Vec3()
		clip := vmath.Mat4MulV4(st.Projection, p)
		if !(clip.W > 0) {
			continue
		}
		x, y, z := clip.X/clip.W, clip.Y/clip.W, clip.Z/clip.W
		if z < -1 || z > 1 {
			continue
		}
		screen[i] = [2]float64{(float64(x)*0.5 + 0.5) * w, (0.5 - float64(y)*0.5) * h}
		ok[i] = true
	}

	faces := make([]face, 0, len(mesh.Indices)/3)
	for k := 0; k+2 < len(mesh.Indices); k += 3 {
		a, b, c := int(mesh.Indices[k]), int(mesh.Indices[k+1]), int(mesh.Indices[k+2])
		if !ok[a] || !ok[b] || !ok[c] {
			continue
		}
		nrm := vmath.Cross(view[b].Sub(view[a]), view[c].Sub(view[a]))
		// The eye looks down -z, so front faces have a positive z normal.
		if nrm.Z <= 0 {
			continue
		}
		faces = append(faces, face{
			pts:   [3][2]float64{screen[a], screen[b], screen[c]},
			depth: (view[a].Z + view[b].Z + view[c].Z) / 3,
			color: shader.Shade(nrm, opts.Light, opts.Material),
		})
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].depth < faces[j].depth })
	return faces
}

// WritePNG renders a frame and encodes it to w.
func WritePNG(w io.Writer, mesh knot.Mesh, st frame.State, opts Options) error {
	dc, err := Render(mesh, st, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("snapshot: encode png: %w", err)
	}
	return nil
}

// SavePNG renders a frame into the file at path.
func SavePNG(path string, mesh knot.Mesh, st frame.State, opts Options) error {
	dc, err := Render(mesh, st, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
