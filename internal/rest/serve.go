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

// Package rest exposes the film pipeline and verifier over HTTP with gin,
// mirroring the reference stacking service's api/v1 group layout without
// carrying over its per-request file-globbing job model, which doesn't
// fit a single-image processing library.
package rest

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/filmr/internal/filmerrors"
	"github.com/mlnoga/filmr/internal/filmrlog"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/gpu"
	"github.com/mlnoga/filmr/internal/ops"
	"github.com/mlnoga/filmr/internal/verify"
)

// Serve starts the HTTP API on 0.0.0.0:8080.
func Serve() {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.GET("/stocks", getStocks)
			v1.POST("/process", postProcess)
			v1.POST("/verify", postVerify)
		}
	}
	r.Run()
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// getStocks lists every built-in preset by name, manufacturer and type.
func getStocks(c *gin.Context) {
	presets := filmstock.Presets()
	out := make([]gin.H, 0, len(presets))
	for name, f := range presets {
		out = append(out, gin.H{
			"name":         name,
			"manufacturer": f.Manufacturer,
			"display_name": f.Name,
			"iso":          f.ISO,
			"color":        f.IsColor(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"stocks": out})
}

// postProcessArgs is the request body for /api/v1/process: a base64
// image plus a subset of the option surface the CLI exposes (no white
// balance or CPU-fallback settings; CPU fallback is always on).
type postProcessArgs struct {
	ImageBase64 string  `json:"image_base64" binding:"required"`
	Width       int     `json:"width" binding:"required"`
	Height      int     `json:"height" binding:"required"`
	Stock       string  `json:"stock"`
	Mode        string  `json:"mode"`
	Seed        uint64  `json:"seed"`
	ShutterSecs float32 `json:"shutter_seconds"`
	Saturation  float32 `json:"saturation"`
	Warmth      float32 `json:"warmth"`
	DisableGrain    bool          `json:"disable_grain"`
	DisableHalation bool          `json:"disable_halation"`
	UseGPU          bool          `json:"use_gpu"`
	LightLeaks      []ops.LeakSpec `json:"light_leaks"`
	Pipeline        []string      `json:"pipeline"`
}

func resolveOptions(a postProcessArgs) (*ops.Options, error) {
	opts := ops.DefaultOptions()
	if a.Mode == "negative" {
		opts.OutputMode = ops.Negative
	}
	opts.Seed = a.Seed
	if a.ShutterSecs > 0 {
		opts.ExposureTimeSeconds = a.ShutterSecs
	}
	if a.Saturation > 0 {
		opts.Saturation = a.Saturation
	}
	opts.Warmth = a.Warmth
	opts.GrainEnabled = !a.DisableGrain
	opts.HalationEnabled = !a.DisableHalation
	opts.UseGPU = a.UseGPU
	opts.LightLeaks = a.LightLeaks
	if len(a.Pipeline) > 0 {
		pipeline, err := ops.PipelineFromTypes(a.Pipeline)
		if err != nil {
			return nil, err
		}
		opts.Pipeline = pipeline
	}
	opts.AllowCPUFallback = true
	return opts, nil
}

func postProcess(c *gin.Context) {
	var args postProcessArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stockName := args.Stock
	if stockName == "" {
		stockName = "kodak-portra-400"
	}
	film, err := filmstock.ByName(stockName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pix, err := base64.StdEncoding.DecodeString(args.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base64 image: " + err.Error()})
		return
	}

	opts, err := resolveOptions(args)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	filmrlog.Printf("processing %dx%d image with stock %q\n", args.Width, args.Height, stockName)

	ctx := ops.NewContext(filmrlog.Writer())
	out, err := runPipeline(pix, args.Width, args.Height, film, opts, ctx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image_base64": base64.StdEncoding.EncodeToString(out),
		"width":        args.Width,
		"height":       args.Height,
	})
}

func runPipeline(pix []byte, width, height int, film *filmstock.FilmStock, opts *ops.Options, c *ops.Context) ([]byte, error) {
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
	fmt.Fprintf(c.Log, "gpu backend failed (%v), falling back to cpu\n", err)
	return ops.Process(pix, width, height, film, opts, c)
}

type postVerifyArgs struct {
	Stock string `json:"stock" binding:"required"`
}

func postVerify(c *gin.Context) {
	var args postVerifyArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	film, err := filmstock.ByName(args.Stock)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := verify.Verify(film, verify.DefaultThresholds())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	layers := make([]gin.H, 0, len(report.Layers))
	for _, l := range report.Layers {
		layers = append(layers, gin.H{"name": l.Name, "pass": l.Pass, "detail": l.Detail, "metrics": l.Metrics})
	}
	c.JSON(http.StatusOK, gin.H{"stock": args.Stock, "pass": report.Pass(), "layers": layers})
}

func statusFor(err error) int {
	switch err.(type) {
	case *filmerrors.ConfigurationError, *filmerrors.DimensionError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
