package verbose

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/chriscorrea/nodellm/internal/llm/common"

	"github.com/fatih/color"
)

// values wider than this are shortened with an ellipsis
const maxValueWidth = 65

// OutputConfig contains parameters for verbose output formatting
type OutputConfig struct {
	Writer       io.Writer
	KeyColor     *color.Color
	ValueColor   *color.Color
	HeaderColor  *color.Color
	EnableColors bool
}

// DefaultOutputConfig returns a default configuration for verbose output
func DefaultOutputConfig(writer io.Writer) *OutputConfig {
	return &OutputConfig{
		Writer:       writer,
		KeyColor:     color.New(color.FgCyan, color.Bold),
		ValueColor:   color.New(color.FgMagenta),
		HeaderColor:  color.New(color.FgYellow, color.Bold),
		EnableColors: true,
	}
}

type param struct {
	Key   string
	Value string
}

// PrintRequestParameters displays request parameters in a formatted, multi-column table.
// The API key is always shown redacted.
func PrintRequestParameters(kind, providerName string, cfg common.Configuration, outputCfg *OutputConfig) {
	if outputCfg == nil {
		outputCfg = DefaultOutputConfig(os.Stderr) // Default to Stderr
	}

	w := tabwriter.NewWriter(outputCfg.Writer, 0, 0, 3, ' ', 0)

	params := []param{
		{Key: "Provider", Value: providerName},
		{Key: "Model", Value: cfg.Model},
		{Key: "API Base", Value: cfg.APIBase},
		{Key: "API Key", Value: common.RedactKey(cfg.APIKey)},
	}

	switch kind {
	case common.KindImage:
		params = append(params,
			param{Key: "Aspect Ratio", Value: cfg.AspectRatio},
			param{Key: "Image Size", Value: cfg.ImageSize},
			param{Key: "Temperature", Value: formatFloat(cfg.ImageTemperature, common.DefaultImageTemperature)},
		)
	default:
		maxTokens := common.DefaultMaxTokens
		if cfg.MaxTokens != nil {
			maxTokens = *cfg.MaxTokens
		}
		params = append(params,
			param{Key: "Temperature", Value: formatFloat(cfg.Temperature, common.DefaultTemperature)},
			param{Key: "Max Output Tokens", Value: fmt.Sprintf("%d", maxTokens)},
		)
	}

	// optionally, add attribution if it's configured
	if cfg.SiteName != "" {
		params = append(params, param{Key: "Site Name", Value: cfg.SiteName})
	}
	if cfg.SiteURL != "" {
		params = append(params, param{Key: "Site URL", Value: cfg.SiteURL})
	}

	// print rows in pairs
	for i := 0; i < len(params); i += 2 {
		p1 := params[i]
		if (i + 1) < len(params) {
			p2 := params[i+1]
			printRow(w, outputCfg, p1.Key, shorten(p1.Value), p2.Key, shorten(p2.Value))
		} else {
			printRow(w, outputCfg, p1.Key, shorten(p1.Value), "", "")
		}
	}

	fmt.Fprintf(w, "\n") // add a final newline for spacing
	w.Flush()            // flush to write the aligned content
}

func formatFloat(v *float64, fallback float64) string {
	if v == nil {
		return fmt.Sprintf("%.2f", fallback)
	}
	return fmt.Sprintf("%.2f", *v)
}

// shorten truncates s on a rune boundary
func shorten(s string) string {
	runes := []rune(s)
	if len(runes) <= maxValueWidth {
		return s
	}
	return string(runes[:maxValueWidth-3]) + "..."
}

// printRow prints a multi-column row for one or two key-value pairs
// and handles color formatting and alignment via tabwriter
func printRow(w io.Writer, outputCfg *OutputConfig, key1, value1, key2, value2 string) {
	keySprint := outputCfg.KeyColor.SprintFunc()
	valueSprint := outputCfg.ValueColor.SprintFunc()

	if !outputCfg.EnableColors {
		keySprint = fmt.Sprint
		valueSprint = fmt.Sprint
	}

	if key2 != "" {
		fmt.Fprintf(w, "%s:\t%s\t%s:\t%s\n",
			keySprint(key1),
			valueSprint(value1),
			keySprint(key2),
			valueSprint(value2),
		)
	} else {
		// one last item in an odd-numbered list
		fmt.Fprintf(w, "%s:\t%s\n",
			keySprint(key1),
			valueSprint(value1),
		)
	}
}
