package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chriscorrea/nodellm/internal/app"
	nodeIO "github.com/chriscorrea/nodellm/internal/io"
	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/media"

	"github.com/spf13/cobra"
)

// createImageCommand creates the image subcommand
func createImageCommand() *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image [prompt...]",
		Short: "Generate image(s) and save them as PNG",
		Long: `Generate images through the configured gateway and write them as PNG files.

With a single result the image is written to --out; with several, a numeric
suffix is added before the extension (nodellm-1.png, nodellm-2.png, ...).`,
		Example: `  nodellm image "A watercolor fox" --aspect-ratio 16:9 --image-size 2K
  nodellm image --image room.jpg "Repaint the walls teal" --out room-teal.png
  nodellm image -n 4 "Four variations of a paper crane"`,
		RunE: runImage,
	}

	imageCmd.Flags().StringSlice("image", nil, "Reference image file(s) sent with the prompt")
	imageCmd.Flags().StringSlice("file", nil, "Text file(s) prepended to the prompt")
	imageCmd.Flags().String("additional-text", "", "Extra instructions sent after the reference images")
	imageCmd.Flags().String("aspect-ratio", "", "Aspect ratio, one of "+strings.Join(common.AspectRatios, ", ")+" (default from parameters.aspect_ratio)")
	imageCmd.Flags().String("image-size", "", "Image size, one of "+strings.Join(common.ImageSizes, ", ")+" (default from parameters.image_size)")
	imageCmd.Flags().Float64("image-temperature", common.DefaultImageTemperature, "Sampling temperature for image generation")
	imageCmd.Flags().IntP("n", "n", 0, "Number of images to request (default from parameters.n)")
	imageCmd.Flags().StringP("out", "o", "nodellm.png", "Output PNG path")
	return imageCmd
}

func runImage(cmd *cobra.Command, args []string) error {
	cfg, err := profile()
	if err != nil {
		return err
	}
	providerName, err := resolveProvider(cmd, cfg)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	files, _ := flags.GetStringSlice("file")
	imagePaths, _ := flags.GetStringSlice("image")
	additional, _ := flags.GetString("additional-text")
	out, _ := flags.GetString("out")

	prompt, err := nodeIO.ReadPrompt(stdinFile(cmd), args, files)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	references, err := nodeIO.ReadImages(imagePaths)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	aspectRatio := override(flags, "aspect-ratio", cfg.Parameters.AspectRatio, flags.GetString)
	imageSize := override(flags, "image-size", cfg.Parameters.ImageSize, flags.GetString)
	temperature := override(flags, "image-temperature", cfg.Parameters.ImageTemperature, flags.GetFloat64)
	n := override(flags, "n", cfg.Parameters.N, flags.GetInt)

	base, err := baseConfiguration(cmd, cfg, providerName, common.KindImage)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	batch, err := a.Image(cmd.Context(), providerName, app.ImageParams(base, aspectRatio, imageSize, temperature), common.ImageInput{
		Prompt:         prompt,
		Images:         references,
		AdditionalText: additional,
		N:              n,
	})
	if err != nil {
		return err
	}

	paths, err := writeImages(out, batch)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// outputPaths returns one file name per image, numbering them when there are several
func outputPaths(out string, count int) []string {
	if count == 1 {
		return []string{out}
	}
	ext := filepath.Ext(out)
	stem := strings.TrimSuffix(out, ext)
	if ext == "" {
		ext = ".png"
	}
	paths := make([]string, count)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s-%d%s", stem, i+1, ext)
	}
	return paths
}

// writeImages saves every image of batch as PNG and returns the paths written
func writeImages(out string, batch media.Batch) ([]string, error) {
	paths := outputPaths(out, len(batch))
	for i, img := range batch {
		if err := writePNG(paths[i], img); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func writePNG(path string, img media.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	if err := media.SavePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return f.Close()
}
