package render

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/ecs/system"
	"github.com/milk9111/heartwindow/levels"
	"golang.org/x/image/colornames"
)

// Depth values per pass, 0 nearest.
const (
	depthFar   = 1.0
	depthHeart = 0.6
	depthReal  = 0.4
	depthNear  = 0.2
)

// Surface wraps an ebiten image as a compositor target.
type Surface struct {
	Image *ebiten.Image
}

// Wrap adapts an existing image, such as the screen, to a Surface.
func Wrap(img *ebiten.Image) *Surface {
	return &Surface{Image: img}
}

func (s *Surface) Size() (int, int) {
	if s == nil || s.Image == nil {
		return 0, 0
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

func imageOf(s system.Surface) *ebiten.Image {
	if surf, ok := s.(*Surface); ok && surf != nil {
		return surf.Image
	}
	return nil
}

// DefaultHeartTint is used when no tint is configured.
var DefaultHeartTint = color.RGBA{R: 255, G: 105, B: 180, A: 90}

// Options tune the look of the composite.
type Options struct {
	// HeartTint colors the scene inside the window preview; alpha is the
	// mix amount.
	HeartTint color.RGBA
}

// Backend implements the compositor passes with ebiten images and Kage
// shaders.
type Backend struct {
	opts Options

	maskUpload  *ebiten.Image
	depthUpload *ebiten.Image
	depthFull   *ebiten.Image
	pixels      []byte

	tints map[string]color.RGBA
}

func NewBackend(opts Options) *Backend {
	if opts.HeartTint == (color.RGBA{}) {
		opts.HeartTint = DefaultHeartTint
	}
	return &Backend{opts: opts, tints: make(map[string]color.RGBA)}
}

// SetOptions swaps the tints; used by hot reload.
func (b *Backend) SetOptions(opts Options) {
	if opts.HeartTint == (color.RGBA{}) {
		opts.HeartTint = b.opts.HeartTint
	}
	b.opts = opts
}

func (b *Backend) NewSurface(width, height int) system.Surface {
	return &Surface{Image: ebiten.NewImage(width, height)}
}

func (b *Backend) Dispose(s system.Surface) {
	if img := imageOf(s); img != nil {
		img.Deallocate()
	}
}

func (b *Backend) Clear(s system.Surface) {
	if img := imageOf(s); img != nil {
		img.Clear()
	}
}

func (b *Backend) Copy(dst, src system.Surface) {
	d, s := imageOf(dst), imageOf(src)
	if d == nil || s == nil {
		return
	}
	d.Clear()
	d.DrawImage(s, nil)
}

// view returns the camera origin and the world-to-surface scale for dst.
func view(w *ecs.World, dst *ebiten.Image) (camX, camY, scale, camW, camH float64) {
	camX, camY, zoom, _ := system.CameraOrigin(w)
	camW, camH = float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	scale = zoom
	if e, ok := ecs.First(w, component.CameraComponent.Kind()); ok {
		if cam, ok := ecs.Get(w, e, component.CameraComponent.Kind()); ok && cam.Width > 0 && cam.Height > 0 {
			scale *= float64(dst.Bounds().Dx()) / cam.Width
			camW, camH = cam.Width, cam.Height
		}
	}
	return camX, camY, scale, camW, camH
}

// DrawMask fills the window rects of every mask-geometry entity.
func (b *Backend) DrawMask(dst system.Surface, w *ecs.World) {
	img := imageOf(dst)
	if img == nil || w == nil {
		return
	}
	_, _, _, camW, camH := view(w, img)
	sx := float64(img.Bounds().Dx()) / camW
	sy := float64(img.Bounds().Dy()) / camH
	ecs.ForEach2(w, component.MaskGeometryComponent.Kind(), component.WindowComponent.Kind(), func(_ ecs.Entity, _ *component.MaskGeometry, win *component.Window) {
		r := system.WindowScreenRect(win, camW, camH)
		vector.DrawFilledRect(img, float32(r.MinX*sx), float32(r.MinY*sy), float32((r.MaxX-r.MinX)*sx), float32((r.MaxY-r.MinY)*sy), colornames.White, false)
	})
}

func (b *Backend) readPixels(img *ebiten.Image) ([]byte, int, int) {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	n := 4 * width * height
	if cap(b.pixels) < n {
		b.pixels = make([]byte, n)
	}
	b.pixels = b.pixels[:n]
	img.ReadPixels(b.pixels)
	return b.pixels, width, height
}

func (b *Backend) ReadMask(src system.Surface) system.MaskFrame {
	img := imageOf(src)
	if img == nil {
		return system.MaskFrame{}
	}
	return MaskFromRGBA(b.readPixels(img))
}

// DrawDepth writes a grayscale depth image: far plane first, then every
// visible shape at its world's depth.
func (b *Backend) DrawDepth(dst system.Surface, w *ecs.World) {
	img := imageOf(dst)
	if img == nil || w == nil {
		return
	}
	img.Fill(gray(depthFar))
	camX, camY, scale, _, _ := view(w, img)
	for _, e := range ecs.Query(w, component.TransformComponent.Kind(), component.ShapeComponent.Kind()) {
		if app, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); ok && app.Dissolved {
			continue
		}
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		s, _ := ecs.Get(w, e, component.ShapeComponent.Kind())
		width, height := s.Width*scale, s.Height*scale
		x := (t.X-camX)*scale - width/2
		y := (t.Y-camY)*scale - height/2
		vector.DrawFilledRect(img, float32(x), float32(y), float32(width), float32(height), gray(depthOf(w, e)), false)
	}
}

func depthOf(w *ecs.World, e ecs.Entity) float64 {
	c, ok := ecs.Get(w, e, component.ClippableComponent.Kind())
	if !ok {
		return depthNear
	}
	if c.Layer == component.LayerHeart {
		return depthHeart
	}
	return depthReal
}

func gray(v float64) color.RGBA {
	g := uint8(common.Clamp01(v) * 255)
	return color.RGBA{R: g, G: g, B: g, A: 255}
}

func (b *Backend) ReadDepth(src system.Surface) system.DepthFrame {
	img := imageOf(src)
	if img == nil {
		return system.DepthFrame{}
	}
	return DepthFromRGBA(b.readPixels(img))
}

// DrawHidden draws the heart geometry that has not been revealed yet.
func (b *Backend) DrawHidden(dst system.Surface, w *ecs.World) {
	img := imageOf(dst)
	if img == nil || w == nil {
		return
	}
	camX, camY, scale, _, _ := view(w, img)
	system.DrawShapes(w, img, camX, camY, scale, func(e ecs.Entity) bool {
		c, ok := ecs.Get(w, e, component.ClippableComponent.Kind())
		return ok && c.Layer == component.LayerHeart && !c.Clipped
	})
}

func (b *Backend) Blend(dst, scene, hidden system.Surface, p system.BlendParams) {
	d, s, h := imageOf(dst), imageOf(scene), imageOf(hidden)
	if d == nil || s == nil || h == nil {
		return
	}
	width, height := s.Bounds().Dx(), s.Bounds().Dy()
	shader, err := LoadShader(ShaderBlend)
	if err != nil || p.Mask.Width != width || p.Mask.Height != height {
		if err != nil {
			log.Printf("render: blend: %v", err)
		}
		d.DrawImage(s, nil)
		return
	}

	b.maskUpload = ensureImage(b.maskUpload, width, height)
	b.maskUpload.WritePixels(MaskToRGBA(p.Mask))

	preview := float32(0)
	if p.Preview {
		preview = 1
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = s
	op.Images[1] = h
	op.Images[2] = b.maskUpload
	op.Uniforms = map[string]any{
		"Preview": preview,
		"Tint":    vec4(b.opts.HeartTint),
	}
	d.DrawRectShader(width, height, shader, op)
}

func (b *Backend) Distort(dst, src system.Surface, p system.DistortParams) {
	d, s := imageOf(dst), imageOf(src)
	if d == nil || s == nil {
		return
	}
	width, height := s.Bounds().Dx(), s.Bounds().Dy()
	shader, err := LoadShader(ShaderRipple)
	if err != nil || p.Depth.Width <= 0 || p.Depth.Height <= 0 {
		if err != nil {
			log.Printf("render: ripple: %v", err)
		}
		d.DrawImage(s, nil)
		return
	}

	b.depthUpload = ensureImage(b.depthUpload, p.Depth.Width, p.Depth.Height)
	b.depthUpload.WritePixels(DepthToRGBA(p.Depth))
	b.depthFull = ensureImage(b.depthFull, width, height)
	b.depthFull.Clear()
	scaleOp := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	scaleOp.GeoM.Scale(float64(width)/float64(p.Depth.Width), float64(height)/float64(p.Depth.Height))
	b.depthFull.DrawImage(b.depthUpload, scaleOp)

	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = s
	op.Images[1] = b.depthFull
	op.Uniforms = map[string]any{
		"Offset": float32(p.Offset),
		"Center": []float32{float32(width) / 2, float32(height) / 2},
	}
	d.DrawRectShader(width, height, shader, op)
}

func (b *Backend) Transition(dst, still system.Surface, p system.TransitionParams) {
	d, s := imageOf(dst), imageOf(still)
	if d == nil || s == nil {
		return
	}
	width, height := s.Bounds().Dx(), s.Bounds().Dy()
	shader, err := LoadShader(ShaderTransition)
	if err != nil {
		log.Printf("render: transition: %v", err)
		d.DrawImage(s, nil)
		return
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = s
	op.Uniforms = map[string]any{
		"Progress":     float32(p.Progress),
		"PatternScale": float32(p.PatternScale),
		"Tint":         vec4(b.previewTint(p.Preview)),
	}
	d.DrawRectShader(width, height, shader, op)
}

// previewTint is the background color of the previewed level.
func (b *Backend) previewTint(preview string) color.RGBA {
	if c, ok := b.tints[preview]; ok {
		return c
	}
	c := color.RGBA{A: 255}
	if preview != "" {
		if lvl, err := levels.LoadLevelFromFS(preview); err == nil {
			c = common.HexOr(lvl.Background, c)
		} else {
			log.Printf("render: preview %q: %v", preview, err)
		}
	}
	b.tints[preview] = c
	return c
}

func ensureImage(img *ebiten.Image, width, height int) *ebiten.Image {
	if img != nil {
		if b := img.Bounds(); b.Dx() == width && b.Dy() == height {
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(width, height)
}

// vec4 converts a color to premultiplied shader components.
func vec4(c color.RGBA) []float32 {
	return []float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}
