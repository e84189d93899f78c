//go:build !tinygo

package hal

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/klabuguen/LunaRTOS/internal/buildinfo"
)

// RunWindow opens a desktop window mirroring the board framebuffer. It
// blocks until the window closes.
func RunWindow(b Board, title string) error {
	hb, ok := b.(*hostBoard)
	if !ok || hb.fb == nil {
		return errors.New("hal: board has no host framebuffer")
	}

	g := &hostGame{fb: hb.fb}
	ebiten.SetWindowTitle(title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(hb.fb.width*2, hb.fb.height*2)
	ebiten.SetTPS(30)
	return ebiten.RunGame(g)
}

type hostGame struct {
	fb      *hostFramebuffer
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error { return nil }

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := RGB888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.ReplacePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.width, g.fb.height
}
