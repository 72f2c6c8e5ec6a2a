package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"trefoil/frame"
	"trefoil/knot"
	"trefoil/shader"
	"trefoil/snapshot"
	"trefoil/softgl"
)

// exporter writes consecutive animation frames as numbered PNG files.
type exporter struct {
	mesh   knot.Mesh
	width  int
	height int
	scale  int
	dir    string

	// progress is called after each frame; may be nil.
	progress func()
}

func (e *exporter) framePath(i int) string {
	return filepath.Join(e.dir, fmt.Sprintf("frame%04d.png", i))
}

// raster renders through the software rasterizer, the same path the
// window uses.
func (e *exporter) raster(n int) ([]string, error) {
	target := softgl.NewImageTarget(e.width, e.height)
	gl := softgl.NewContext(target)
	prog, err := gl.CreateProgram(shader.Phong(frame.DefaultNames))
	if err != nil {
		return nil, fmt.Errorf("link program: %w", err)
	}
	res, err := frame.Upload(gl, e.mesh, prog)
	if err != nil {
		return nil, fmt.Errorf("upload mesh: %w", err)
	}
	comp := frame.NewCompositor(gl, res)
	aspect := float32(e.width) / float32(e.height)

	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := comp.Tick(aspect); err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		path := e.framePath(i)
		if err := writePNG(path, e.scaled(target.Img)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		if e.progress != nil {
			e.progress()
		}
	}
	return paths, nil
}

// vector renders through gg with the compositor's transform state.
func (e *exporter) vector(n int) ([]string, error) {
	comp := frame.NewCompositor(nil, frame.Resources{})
	aspect := float32(e.width) / float32(e.height)
	opts := snapshot.DefaultOptions()
	opts.Width, opts.Height = e.width*e.scale, e.height*e.scale

	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		comp.Advance(aspect)
		path := e.framePath(i)
		if err := snapshot.SavePNG(path, e.mesh, comp.State(), opts); err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		paths = append(paths, path)
		if e.progress != nil {
			e.progress()
		}
	}
	return paths, nil
}

func (e *exporter) scaled(src *image.RGBA) image.Image {
	if e.scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*e.scale, b.Dy()*e.scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
