// Command gigatron runs a GT1 program against the Gigatron ROM core
// and displays it in a window, following the same direct-emulator
// mode a command-line ROM runner offers as an alternative to a full
// library UI.
package main

import (
	"flag"
	"image/color"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gigatron-rom/gigacore/core"
	"github.com/gigatron-rom/gigacore/gt1"
)

const (
	screenWidth  = 160
	screenHeight = 120
	sampleRate   = 48000
)

func main() {
	path := flag.String("rom", "", "path to a .gt1/.gt1z file or archive containing one")
	board := flag.String("board", "64k", "board variant: 64k or 128k")
	flag.Parse()

	if *path == "" {
		log.Fatal("gigatron: -rom is required")
	}

	variant := core.Board64K
	if *board == "128k" {
		variant = core.Board128K
	}

	// Load once up front to fail fast on a bad path, and to get the
	// display name for the window title; Boot (and every later F5 soft
	// reset) reloads the same path through RegisterReload, the same way
	// real hardware re-reads Reset.gt1 on every reset rather than
	// keeping a copy around.
	_, name, _, err := gt1.LoadFile(*path)
	if err != nil {
		log.Fatalf("gigatron: failed to load %s: %v", *path, err)
	}

	m := core.NewMachine(variant)
	gt1.RegisterReload(m, *path)
	m.Boot()

	player, err := newAudioPlayer()
	if err != nil {
		log.Printf("gigatron: audio disabled: %v", err)
	}

	game := &Game{machine: m, audio: player}

	ebiten.SetWindowSize(screenWidth*4, screenHeight*4)
	ebiten.SetWindowTitle("Gigatron — " + name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// Game wraps a core.Machine for ebiten's update/draw loop, polling
// input itself (the core never reaches out to an input device) and
// feeding decoded video/audio straight to the screen and speaker.
type Game struct {
	machine   *core.Machine
	audio     *audioPlayer
	offscreen *ebiten.Image
	rgba      []byte
}

func (g *Game) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}

	g.machine.SetControllerRaw(pollController())

	out := g.machine.RunFrame()
	g.blit(out)

	if g.audio != nil {
		g.audio.QueueSample(out.Audio)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.machine.Reset()
	}
	return nil
}

func (g *Game) blit(out *core.FrameOutput) {
	if g.offscreen == nil {
		g.offscreen = ebiten.NewImage(screenWidth, screenHeight)
		g.rgba = make([]byte, screenWidth*screenHeight*4)
	}
	for y := 0; y < screenHeight; y++ {
		for x := 0; x < screenWidth; x++ {
			c := decodeOutByte(out.Pixels[y][x])
			i := (y*screenWidth + x) * 4
			g.rgba[i+0] = c.R
			g.rgba[i+1] = c.G
			g.rgba[i+2] = c.B
			g.rgba[i+3] = 0xff
		}
	}
	g.offscreen.WritePixels(g.rgba)
}

// decodeOutByte unpacks the Gigatron's 2-bit-per-channel RGB packing
// of the OUT register (spec §6: "write one RGB byte per native
// cycle") into a full 8-bit color.
func decodeOutByte(b uint8) color.RGBA {
	expand := func(bits uint8) uint8 {
		return bits | bits<<2 | bits<<4 | bits<<6
	}
	r := expand(b & 0x03)
	g := expand((b >> 2) & 0x03)
	bl := expand((b >> 4) & 0x03)
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.offscreen == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/screenWidth, float64(sh)/screenHeight)
	screen.DrawImage(g.offscreen, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// pollController reads keyboard input and encodes it as the raw
// active-low TypeB controller byte the core's vblank capture expects.
func pollController() uint8 {
	state := uint8(0xff)
	press := func(key ebiten.Key, bit uint8) {
		if ebiten.IsKeyPressed(key) {
			state &^= bit
		}
	}
	press(ebiten.KeyArrowRight, 0x01)
	press(ebiten.KeyArrowLeft, 0x02)
	press(ebiten.KeyArrowDown, 0x04)
	press(ebiten.KeyArrowUp, 0x08)
	press(ebiten.KeyEnter, 0x10)
	press(ebiten.KeyBackspace, 0x20)
	press(ebiten.KeyZ, 0x40)
	press(ebiten.KeyX, 0x80)
	return state
}

// audioPlayer streams the core's per-frame audio sample out through
// oto. RunFrame emits one combined sample (the xout latch's last
// refresh of the frame, spec §3); we hold that level for the whole
// sampleRate/60 block, which is the same flat-level approach the
// core's own discontinuity correction in RefreshXout is designed to
// make inaudible at block boundaries.
type audioPlayer struct {
	ctx    *oto.Context
	player oto.Player
	ring   *sampleRing
}

type sampleRing struct {
	mu    sync.Mutex
	level byte
}

func (r *sampleRing) setLevel(b byte) {
	r.mu.Lock()
	r.level = b
	r.mu.Unlock()
}

func (r *sampleRing) Read(p []byte) (int, error) {
	r.mu.Lock()
	level := r.level
	r.mu.Unlock()
	for i := range p {
		p[i] = level
	}
	return len(p), nil
}

func newAudioPlayer() (*audioPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	ring := &sampleRing{level: 0x80}
	player := ctx.NewPlayer(ring)
	player.Play()

	return &audioPlayer{ctx: ctx, player: player, ring: ring}, nil
}

func (a *audioPlayer) QueueSample(sample uint8) {
	a.ring.setLevel(sample)
}
