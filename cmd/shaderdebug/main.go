// Shader debug tool - compiles every fluid program on the GPU, runs a few
// frames from fixed splats and writes the composited frame to a PNG file.
//
// Usage: go run ./cmd/shaderdebug -frames 30 -out debug.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/gpu/rlgpu"
	"github.com/pthm-cable/smoke/shaders"
	"github.com/pthm-cable/smoke/splat"
)

type windowSurface struct{}

func (windowSurface) Size() (int, int) { return rl.GetRenderWidth(), rl.GetRenderHeight() }

func main() {
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	frames := flag.Int("frames", 30, "Frames to solve before capture")
	additive := flag.Bool("additive", false, "Enable additive display")
	verbose := flag.Bool("v", false, "Log raylib output")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	dev := rlgpu.New(logger)
	defer dev.Close()

	update := config.Update{AdditiveMode: config.Ptr(*additive)}
	engine, err := fluid.New(dev, windowSurface{}, fluid.Options{
		Config: &update,
		Rand:   rand.New(rand.NewSource(1)),
		Logger: logger,
	})
	if err != nil {
		var ce *gpu.CompileError
		if errors.As(err, &ce) {
			fmt.Fprintf(os.Stderr, "%s (%s) failed to compile:\n%s\n", ce.Program, ce.Stage, ce.Log)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to start engine: %v\n", err)
		}
		os.Exit(1)
	}
	defer engine.Close()

	caps := engine.Capabilities()
	fmt.Printf("Format: %s  linear filtering: %v\n", caps.RGBA, caps.SupportLinearFiltering)
	for _, n := range caps.Notes {
		fmt.Printf("  fallback: %s\n", n)
	}
	for _, name := range shaders.Names() {
		if p, ok := engine.Program(name); ok {
			fmt.Printf("  %-20s %s\n", name, strings.Join(p.Uniforms(), " "))
		}
	}

	w, h := float64(*width), float64(*height)
	engine.AddSplats([]splat.Splat{
		{X: w * 0.3, Y: h * 0.5, DX: 600, DY: 0, Color: config.RGB{10, 2, 0}},
		{X: w * 0.7, Y: h * 0.5, DX: -600, DY: 0, Color: config.RGB{0, 2, 10}},
		{X: w * 0.5, Y: h * 0.8, DX: 0, DY: -400, Color: config.RGB{2, 10, 2}},
	})

	var img *rl.Image
	for i := range *frames {
		rl.BeginDrawing()
		engine.Update()
		if i == *frames-1 {
			img = rl.LoadImageFromScreen()
		}
		rl.EndDrawing()
	}
	if img == nil {
		fmt.Fprintf(os.Stderr, "No frames rendered\n")
		os.Exit(1)
	}

	// Export to PNG
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Smoke rendered to: %s (%dx%d, %d frames)\n", *outPath, *width, *height, *frames)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
