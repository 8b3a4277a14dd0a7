package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/softgl/pkg/render"
	"github.com/taigrr/softgl/pkg/scene"
)

// torque is the angular acceleration a held key applies, in radians per
// second squared.
const torque = 3.0

// viewState is shared between the input goroutine and the render loop.
type viewState struct {
	mu        sync.Mutex
	spin      *Spin
	pitch     float64 // input torque
	yaw       float64
	wireframe bool
	axes      bool
	cols      int
	rows      int
	resized   bool
}

// runPreview renders cfg's scene into the terminal until the user quits.
// Each cell shows two pixels, so the framebuffer is cols × 2·rows.
func runPreview(cfg scene.Config, fps int) error {
	if fps <= 0 {
		fps = 30
	}

	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	cfg.Width, cfg.Height = cols, rows*2
	s, err := scene.Load(cfg)
	if err != nil {
		return err
	}
	// the file shader may not suit a live view
	if cfg.Shader == scene.ShaderShadow {
		s.Config.Shader = scene.ShaderGouraud
	}

	// stderr output would tear the alt screen
	render.SetLogger(nil)

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	state := &viewState{spin: NewSpin(fps), axes: s.Config.Axes, cols: cols, rows: rows}
	go handleInput(term, state, cancel)

	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()
	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		state.mu.Lock()
		state.spin.Impulse(state.pitch*dt, state.yaw*dt)
		// key releases are not always reported, so held torque fades
		state.pitch *= 0.9
		state.yaw *= 0.9
		state.spin.Update()
		rotation := state.spin.Matrix()
		shader := s.Config.Shader
		if state.wireframe {
			shader = scene.ShaderWireframe
		}
		s.Config.Axes = state.axes
		resized, cols, rows := state.resized, state.cols, state.rows
		state.resized = false
		state.mu.Unlock()

		if resized {
			term.Erase()
			term.Resize(cols, rows)
			if err := s.Resize(cols, rows*2); err != nil {
				cleanup()
				return err
			}
		}

		fb, err := s.RenderWith(shader, rotation.Mul(s.Model()))
		if err != nil {
			cleanup()
			return fmt.Errorf("render: %w", err)
		}
		fb.Draw(term, uv.Rect(0, 0, cols, rows))
		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func handleInput(term *uv.Terminal, state *viewState, quit context.CancelFunc) {
	for ev := range term.Events() {
		state.mu.Lock()
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			state.cols, state.rows, state.resized = ev.Width, ev.Height, true
		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				state.mu.Unlock()
				quit()
				return
			case ev.MatchString("w", "up"):
				state.pitch = -torque
			case ev.MatchString("s", "down"):
				state.pitch = torque
			case ev.MatchString("a", "left"):
				state.yaw = -torque
			case ev.MatchString("d", "right"):
				state.yaw = torque
			case ev.MatchString("r"):
				state.spin.Reset()
			case ev.MatchString("x"):
				state.wireframe = !state.wireframe
			case ev.MatchString("g"):
				state.axes = !state.axes
			}
		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w", "up", "s", "down"):
				state.pitch = 0
			case ev.MatchString("a", "left", "d", "right"):
				state.yaw = 0
			}
		}
		state.mu.Unlock()
	}
}
