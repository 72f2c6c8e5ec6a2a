package softgl

import "math"

func (c *Context) depthPass(w, x, y int, z float32) bool {
	if !c.depthTest {
		return true
	}
	idx := y*w + x
	if idx < 0 || idx >= len(c.depthBuf) {
		return false
	}
	d := c.depthBuf[idx]
	switch c.depthFunc {
	case Less:
		if !(z < d) {
			return false
		}
	case LessEqual:
		if !(z <= d) {
			return false
		}
	}
	c.depthBuf[idx] = z
	return true
}

// edgeFn is positive when (x, y) lies to the right of a->b in window
// coordinates, so counter-clockwise NDC triangles get positive area.
func edgeFn(x0, y0, x1, y1, x, y float32) float32 {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func (c *Context) fillTriangle(prog *programObject, w, h int, vp viewport, v0, v1, v2 *vertexOut) {
	area := edgeFn(v0.sx, v0.sy, v1.sx, v1.sy, v2.sx, v2.sy)
	if area == 0 || (c.cullFace && area < 0) {
		return
	}

	minX := int(math.Floor(float64(min(v0.sx, v1.sx, v2.sx))))
	maxX := int(math.Ceil(float64(max(v0.sx, v1.sx, v2.sx))))
	minY := int(math.Floor(float64(min(v0.sy, v1.sy, v2.sy))))
	maxY := int(math.Ceil(float64(max(v0.sy, v1.sy, v2.sy))))
	minX = max(minX, vp.x, 0)
	minY = max(minY, vp.y, 0)
	maxX = min(maxX, vp.x+vp.w-1, w-1)
	maxY = min(maxY, vp.y+vp.h-1, h-1)
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1 / area
	n := prog.src.Varyings
	var in Varyings

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			a0 := edgeFn(v1.sx, v1.sy, v2.sx, v2.sy, px, py) * invArea
			a1 := edgeFn(v2.sx, v2.sy, v0.sx, v0.sy, px, py) * invArea
			a2 := edgeFn(v0.sx, v0.sy, v1.sx, v1.sy, px, py) * invArea
			if a0 < 0 || a1 < 0 || a2 < 0 {
				continue
			}
			z := a0*v0.z + a1*v1.z + a2*v2.z
			if !c.depthPass(w, x, y, z) {
				continue
			}
			for i := 0; i < n; i++ {
				in[i] = a0*v0.vary[i] + a1*v1.vary[i] + a2*v2.vary[i]
			}
			c.target.SetPixel(x, y, ColorFromVec4(prog.src.Fragment(&prog.uniforms, &in)))
		}
	}
}

// strokeTriangle draws the three edges, shaded with the first vertex.
func (c *Context) strokeTriangle(prog *programObject, w, h int, v0, v1, v2 *vertexOut) {
	area := edgeFn(v0.sx, v0.sy, v1.sx, v1.sy, v2.sx, v2.sy)
	if c.cullFace && area < 0 {
		return
	}
	in := v0.vary
	col := ColorFromVec4(prog.src.Fragment(&prog.uniforms, &in))

	x0, y0 := pixel(v0)
	x1, y1 := pixel(v1)
	x2, y2 := pixel(v2)
	c.drawLine(w, h, x0, y0, x1, y1, col)
	c.drawLine(w, h, x1, y1, x2, y2, col)
	c.drawLine(w, h, x2, y2, x0, y0, col)
}

func pixel(v *vertexOut) (int, int) {
	return int(math.Floor(float64(v.sx))), int(math.Floor(float64(v.sy)))
}

func (c *Context) drawLine(w, h, x0, y0, x1, y1 int, col Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if x0 >= 0 && y0 >= 0 && x0 < w && y0 < h {
			c.target.SetPixel(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
