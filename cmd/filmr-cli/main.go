// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/mlnoga/filmr/internal/filmerrors"
	"github.com/mlnoga/filmr/internal/filmrlog"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/gpu"
	"github.com/mlnoga/filmr/internal/ops"
	"github.com/mlnoga/filmr/internal/verify"
)

const version = "0.1.0"

var (
	inFile  = flag.String("in", "", "input image `file`, PNG or JPEG")
	outFile = flag.String("out", "out.jpg", "save processed image to `file`")
	logFile = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")

	stock       = flag.String("stock", "kodak-portra-400", "film stock preset name, or a path to a JSON/YAML stock file")
	mode        = flag.String("mode", "positive", "output mode: positive or negative")
	seed        = flag.Uint64("seed", 1, "grain and light-leak random seed")
	shutter     = flag.Float64("shutter", 1.0/125.0, "exposure time in seconds, drives reciprocity failure")
	saturation  = flag.Float64("saturation", 1.0, "output saturation multiplier")
	warmth      = flag.Float64("warmth", 0, "illuminant color-temperature shift in [-1,1]")
	disableGrain    = flag.Bool("disable-grain", false, "disable grain synthesis")
	disableHalation = flag.Bool("disable-halation", false, "disable halation/bloom")
	lightLeaks      = flag.String("light-leaks", "", "path to a JSON file holding a list of light leak specs")
	pipelineFile    = flag.String("pipeline", "", "path to a JSON file holding a custom stage order, e.g. [\"linearize\",\"mtf\",\"develop\",\"output\",\"encode\"]")
	whiteBalance    = flag.String("wb", "auto", "white balance mode: auto or off")
	wbStrength      = flag.Float64("wb-strength", 1.0, "white balance correction strength in [0,1]")

	useGPU           = flag.Bool("gpu", false, "use the GPU compute backend")
	allowCPUFallback = flag.Bool("cpu-fallback", true, "fall back to the CPU backend if the GPU backend fails")

	doVerify = flag.Bool("verify", false, "run the quality verifier against the chosen stock and print a report instead of processing an image")

	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
)

func autoSuffix(base, from, to string) string {
	if strings.HasSuffix(base, from) {
		return base[:len(base)-len(from)] + to
	}
	return base + to
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *logFile == "%auto" {
		*logFile = autoSuffix(*outFile, filepath.Ext(*outFile), ".log")
	}
	if *logFile != "" {
		if err := filmrlog.AlsoToFile(*logFile); err != nil {
			fmt.Fprintf(os.Stderr, "error opening log file: %s\n", err.Error())
			return 2
		}
	}
	filmrlog.Printf("filmr %s starting\n", version)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			filmrlog.Printf("error creating cpu profile: %s\n", err.Error())
			return 2
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	film, err := loadStock(*stock)
	if err != nil {
		filmrlog.Printf("error loading stock %q: %s\n", *stock, err.Error())
		return classifyExit(err)
	}

	if *doVerify {
		report, err := verify.Verify(film, verify.DefaultThresholds())
		if err != nil {
			filmrlog.Printf("verification error: %s\n", err.Error())
			return classifyExit(err)
		}
		fmt.Print(report.String())
		if !report.Pass() {
			return 4
		}
		return 0
	}

	if *inFile == "" {
		filmrlog.Printf("error: -in is required unless -verify is set\n")
		return 2
	}

	opts, err := buildOptions()
	if err != nil {
		filmrlog.Printf("error building options: %s\n", err.Error())
		return classifyExit(err)
	}
	width, height, pix, err := readImage(*inFile)
	if err != nil {
		filmrlog.Printf("error reading input image: %s\n", err.Error())
		return 2
	}

	out, err := runPipeline(pix, width, height, film, opts)
	if err != nil {
		filmrlog.Printf("error processing image: %s\n", err.Error())
		return classifyExit(err)
	}

	if err := writeImage(*outFile, width, height, out); err != nil {
		filmrlog.Printf("error writing output image: %s\n", err.Error())
		return 2
	}
	filmrlog.Printf("wrote %s\n", *outFile)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err == nil {
			pprof.WriteHeapProfile(f)
			f.Close()
		}
	}
	return 0
}

// runPipeline picks the GPU or CPU backend per opts.UseGPU, falling back to
// CPU on a BackendError when AllowCPUFallback is set.
func runPipeline(pix []byte, width, height int, film *filmstock.FilmStock, opts *ops.Options) ([]byte, error) {
	c := ops.NewContext(filmrlog.Writer())
	if !opts.UseGPU {
		return ops.Process(pix, width, height, film, opts, c)
	}
	out, err := gpu.Process(pix, width, height, film, opts, c)
	if err == nil {
		return out, nil
	}
	if !opts.AllowCPUFallback {
		return nil, err
	}
	filmrlog.Printf("gpu backend failed (%v), falling back to cpu\n", err)
	return ops.Process(pix, width, height, film, opts, c)
}

func classifyExit(err error) int {
	switch err.(type) {
	case *filmerrors.ConfigurationError:
		return 2
	case *filmerrors.DimensionError:
		return 3
	case *filmerrors.BackendError:
		return 3
	case *filmerrors.NumericalError:
		return 4
	default:
		return 1
	}
}

func loadStock(name string) (*filmstock.FilmStock, error) {
	if strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		var stocks []*filmstock.FilmStock
		if strings.HasSuffix(name, ".json") {
			stocks, err = filmstock.LoadPresetsJSON(data)
		} else {
			stocks, err = filmstock.LoadPresetsYAML(data)
		}
		if err != nil {
			return nil, err
		}
		if len(stocks) == 0 {
			return nil, &filmerrors.ConfigurationError{Field: "stock", Msg: "no stocks found in " + name}
		}
		return stocks[0], nil
	}
	return filmstock.ByName(name)
}

func buildOptions() (*ops.Options, error) {
	opts := ops.DefaultOptions()
	if strings.EqualFold(*mode, "negative") {
		opts.OutputMode = ops.Negative
	}
	opts.Seed = *seed
	opts.ExposureTimeSeconds = float32(*shutter)
	opts.Saturation = float32(*saturation)
	opts.Warmth = float32(*warmth)
	opts.GrainEnabled = !*disableGrain
	opts.HalationEnabled = !*disableHalation
	if *lightLeaks != "" {
		leaks, err := loadLightLeaks(*lightLeaks)
		if err != nil {
			return nil, err
		}
		opts.LightLeaks = leaks
	}
	if *pipelineFile != "" {
		pipeline, err := loadPipeline(*pipelineFile)
		if err != nil {
			return nil, err
		}
		opts.Pipeline = pipeline
	}
	if strings.EqualFold(*whiteBalance, "off") {
		opts.WhiteBalance = ops.WBOff
	}
	opts.WhiteBalanceStrength = float32(*wbStrength)
	opts.UseGPU = *useGPU
	opts.AllowCPUFallback = *allowCPUFallback
	return opts, nil
}

func loadLightLeaks(path string) ([]ops.LeakSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var leaks []ops.LeakSpec
	if err := json.Unmarshal(data, &leaks); err != nil {
		return nil, &filmerrors.ConfigurationError{Field: "light_leaks", Msg: err.Error()}
	}
	return leaks, nil
}

func loadPipeline(path string) (*ops.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pipeline ops.Pipeline
	if err := json.Unmarshal(data, &pipeline); err != nil {
		return nil, &filmerrors.ConfigurationError{Field: "pipeline", Msg: err.Error()}
	}
	return &pipeline, nil
}

func readImage(path string) (width, height int, pix []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return 0, 0, nil, err
	}
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	pix = make([]byte, width*height*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pix[i] = byte(r >> 8)
			pix[i+1] = byte(g >> 8)
			pix[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return width, height, pix, nil
}

func writeImage(path string, width, height int, pix []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tif") || strings.HasSuffix(lower, ".tiff") {
		// Widen to 16 bits per channel so a scan-grade export doesn't
		// re-quantize the encoder's own tone curve on top of ours.
		img := image.NewNRGBA64(image.Rect(0, 0, width, height))
		i := 0
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r16, g16, b16 := uint16(pix[i])*257, uint16(pix[i+1])*257, uint16(pix[i+2])*257
				img.SetNRGBA64(x, y, color.NRGBA64{R: r16, G: g16, B: b16, A: 0xffff})
				i += 3
			}
		}
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, rgbColor{pix[i], pix[i+1], pix[i+2]})
			i += 3
		}
	}
	if strings.HasSuffix(lower, ".png") {
		return png.Encode(f, img)
	}
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
}

type rgbColor struct{ R, G, B byte }

func (c rgbColor) RGBA() (r, g, b, a uint32) {
	return uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101, 0xffff
}
