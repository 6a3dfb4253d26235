// Command retouch applies edit recipes to images from the command line.
//
//	retouch render -i photo.jpg -o out.png --exposure 0.5 --saturation 0.2
//	retouch render -i photo.tif -o out.tif --recipe warm.toml --backend gpu
//	retouch adapters
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gogpu/retouch"

	// Extra decoders for imaging.Open.
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "retouch",
	Short: "Non-destructive image adjustments with optional GPU acceleration",
	Long: `retouch applies exposure, saturation, contrast, white balance, sharpening
and blur adjustments to an image. Adjustments come from flags or a TOML
recipe; exposure, saturation and white balance can run on the GPU.`,
	Version:       retouch.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), logLevel)
		if err != nil {
			return err
		}
		retouch.SetLogger(l)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"retouch %s (%s/%s, %s)\n",
		retouch.Version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "retouch:", err)
		os.Exit(1)
	}
}
