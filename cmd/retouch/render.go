package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/gogpu/retouch"
	"github.com/gogpu/retouch/gpu"
	"github.com/gogpu/retouch/history"
	"github.com/gogpu/retouch/pixel"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Apply adjustments to an image and save the result",
	Long: `Loads the input image (JPEG, PNG, GIF, TIFF, BMP or WebP), applies the
adjustments from --recipe and the filter flags, and saves the result in the
format implied by the output extension. Filter flags override the recipe.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

// filterFlag binds one command line flag to one parameter of a filter.
type filterFlag struct {
	name  string
	kind  retouch.FilterKind
	index int
	usage string
}

var filterFlags = []filterFlag{
	{"exposure", retouch.Exposition, 0, "exposure in stops"},
	{"saturation", retouch.Saturation, 0, "saturation amount (-1..1)"},
	{"contrast", retouch.Contrast, 0, "contrast amount (-0.5..0.5)"},
	{"ref-temp", retouch.WhiteBalance, 0, "reference white temperature in kelvin"},
	{"ref-tint", retouch.WhiteBalance, 1, "reference white tint"},
	{"temp", retouch.WhiteBalance, 2, "target white temperature in kelvin"},
	{"tint", retouch.WhiteBalance, 3, "target white tint"},
	{"sharpen", retouch.Sharpening, 0, "sharpening sigma"},
	{"sharpen-size", retouch.Sharpening, 1, "sharpening kernel size (0 = from sigma)"},
	{"gauss", retouch.GaussianBlur, 0, "gaussian blur sigma"},
	{"gauss-passes", retouch.GaussianBlur, 1, "gaussian blur box passes"},
	{"box-blur", retouch.BoxBlur, 0, "box blur radius"},
}

func init() {
	f := renderCmd.Flags()
	f.StringP("input", "i", "", "input image")
	f.StringP("output", "o", "", "output image")
	f.String("recipe", "", "TOML edit recipe")
	f.String("backend", "", "rendering backend (cpu, gpu)")
	f.String("gpu-backend", "", "GPU backend (vulkan, noop)")
	f.String("adapter", "", "GPU adapter name")
	f.Bool("cpu-fallback", false, "run filters on the CPU when the GPU rejects the image")
	f.Int("workers", 0, "CPU worker goroutines (0 = GOMAXPROCS)")
	f.String("preview", "", "scale the result to fit WxH")
	for _, ff := range filterFlags {
		f.Float64(ff.name, 0, ff.usage)
	}
	_ = renderCmd.MarkFlagRequired("input")
	_ = renderCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	inputPath, _ := flags.GetString("input")
	outputPath, _ := flags.GetString("output")
	recipePath, _ := flags.GetString("recipe")
	previewSpec, _ := flags.GetString("preview")

	recipe := &Recipe{}
	if recipePath != "" {
		var err error
		if recipe, err = loadRecipe(recipePath); err != nil {
			return err
		}
	}
	if flags.Changed("backend") {
		recipe.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("workers") {
		recipe.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("gpu-backend") {
		recipe.GPU.Backend, _ = flags.GetString("gpu-backend")
	}
	if flags.Changed("adapter") {
		recipe.GPU.Adapter, _ = flags.GetString("adapter")
	}
	if flags.Changed("cpu-fallback") {
		recipe.GPU.CPUFallback, _ = flags.GetBool("cpu-fallback")
	}
	if err := recipe.validate(); err != nil {
		return err
	}

	backend, _ := retouch.ParseBackend(recipe.Backend)
	if backend == retouch.BackendGPU && (recipe.GPU.Backend != "" || recipe.GPU.Adapter != "") {
		if err := gpu.Register(recipe.GPU.Backend, recipe.GPU.Adapter); err != nil {
			retouch.Logger().Warn("GPU accelerator not available", "err", err)
		}
	}

	var maxW, maxH int
	if previewSpec != "" {
		var err error
		if maxW, maxH, err = parseSize(previewSpec); err != nil {
			return err
		}
	}

	src, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	rec := history.NewRecorder(4)
	opts := []retouch.Option{
		retouch.WithBackend(backend),
		retouch.WithWorkers(recipe.Workers),
		retouch.WithHistory(rec),
	}
	if recipe.GPU.CPUFallback {
		opts = append(opts, retouch.WithCPUFallback())
	}
	s := retouch.NewSession(opts...)
	defer s.Close()

	if err := s.Load(pixel.FromImage(src)); err != nil {
		return err
	}
	if err := recipe.apply(s); err != nil {
		return err
	}
	if err := applyFilterFlags(cmd, s); err != nil {
		return err
	}

	start := time.Now()
	out, err := s.Render()
	if err != nil {
		return err
	}
	if e, ok := rec.Latest(); ok {
		retouch.Logger().Info("rendered",
			"size", fmt.Sprintf("%dx%d", out.Width, out.Height),
			"backend", backend,
			"frame", e.Hash(),
			"elapsed", time.Since(start))
	}
	if previewSpec != "" {
		if out, err = s.Preview(maxW, maxH); err != nil {
			return err
		}
	}

	if err := imaging.Save(out.ToImage(), outputPath); err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	return nil
}

// applyFilterFlags overrides single filter parameters set on the command
// line, keeping the rest of each parameter vector.
func applyFilterFlags(cmd *cobra.Command, s *retouch.Session) error {
	desired := s.Desired()
	changed := map[retouch.FilterKind][]float64{}
	for _, ff := range filterFlags {
		if !cmd.Flags().Changed(ff.name) {
			continue
		}
		v, _ := cmd.Flags().GetFloat64(ff.name)
		params, ok := changed[ff.kind]
		if !ok {
			params = desired.Filter(ff.kind)
		}
		params[ff.index] = v
		changed[ff.kind] = params
	}
	for _, kind := range retouch.Kinds() {
		if params, ok := changed[kind]; ok {
			if err := s.SetFilter(kind, params...); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}
