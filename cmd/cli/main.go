package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"boxplot/adapters/chartdata"
	"boxplot/adapters/excel"
	"boxplot/domain/chart"
	"boxplot/internal/aggregate"
	"boxplot/internal/boxplot"
	"boxplot/internal/colors"
	"boxplot/internal/coltypes"
	"boxplot/internal/config"
	"boxplot/internal/format"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "boxplot-cli",
		Short: "Box plot CLI for transforming chart payloads and summarizing data files",
	}

	rootCmd.AddCommand(
		newTransformCmd(),
		newAggregateCmd(),
		newRenderCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// chartFlags are the flags shared by the commands that read a data file.
type chartFlags struct {
	file       string
	groupby    []string
	metrics    []string
	whisker    string
	defaults   string
	prerender  bool
	numberFmt  string
	xTicks     string
	emitFilter bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", os.Getenv("DATA_FILE"), "CSV or Excel data file (defaults to DATA_FILE)")
	cmd.Flags().StringSliceVar(&f.groupby, "groupby", nil, "Columns to group by")
	cmd.Flags().StringSliceVar(&f.metrics, "metric", nil, "Numeric columns to summarize")
	cmd.Flags().StringVar(&f.whisker, "whisker", string(aggregate.DefaultWhisker), "Whisker rule")
	cmd.Flags().StringVar(&f.defaults, "defaults", os.Getenv("CHART_DEFAULTS_FILE"), "YAML chart defaults file")
	cmd.Flags().BoolVar(&f.prerender, "prerender-tooltips", true, "Embed rendered tooltip HTML in the option")
	cmd.Flags().StringVar(&f.numberFmt, "number-format", format.SmartNumber, "Number format id")
	cmd.Flags().StringVar(&f.xTicks, "x-ticks-layout", "auto", "x axis tick layout")
	cmd.Flags().BoolVar(&f.emitFilter, "emit-filter", false, "Enable cross-filtering")
}

func (f *chartFlags) formData() chart.FormData {
	metrics := make([]chart.MetricSpec, len(f.metrics))
	for i, m := range f.metrics {
		metrics[i] = chart.MetricSpec{Name: m}
	}
	groupby := f.groupby
	if groupby == nil {
		groupby = []string{}
	}
	return chart.FormData{
		VizType:        chart.VizTypeBoxPlot,
		Groupby:        groupby,
		Metrics:        metrics,
		NumberFormat:   f.numberFmt,
		XTicksLayout:   f.xTicks,
		EmitFilter:     f.emitFilter,
		WhiskerOptions: f.whisker,
	}
}

// props reads the data file and aggregates it into transformer input.
func (f *chartFlags) props() (chart.ChartProps, error) {
	if f.file == "" {
		return chart.ChartProps{}, fmt.Errorf("--file is required")
	}
	if len(f.metrics) == 0 {
		return chart.ChartProps{}, fmt.Errorf("at least one --metric is required")
	}

	fd := f.formData()
	req := aggregate.RequestFor(fd)

	data := excel.NewDataReader(f.file)
	records, err := data.Records(req.Columns())
	if err != nil {
		return chart.ChartProps{}, err
	}
	rows, err := aggregate.Aggregate(records, req)
	if err != nil {
		return chart.ChartProps{}, err
	}
	return chart.ChartProps{
		FormData:    fd,
		QueriesData: []chart.QueryData{{Data: rows, ColNames: req.Columns()}},
	}, nil
}

func (f *chartFlags) transformer() (*boxplot.Transformer, error) {
	layout, err := config.LoadLayout(f.defaults)
	if err != nil {
		return nil, err
	}
	opts := []boxplot.Option{boxplot.WithLayout(layout)}
	if f.prerender {
		opts = append(opts, boxplot.WithPrerenderedTooltips())
	}
	return boxplot.New(colors.NewRegistry(), format.NewRegistry(), coltypes.Resolver{}, opts...), nil
}

func newTransformCmd() *cobra.Command {
	var defaults string
	var prerender bool

	cmd := &cobra.Command{
		Use:   "transform [props.json]",
		Short: "Transform a chart-data payload into a box plot option",
		Long: `Transform a chart props payload (form_data, queries_data and filter_state)
into the rendered chart option. Reads stdin when no file or "-" is given.

Example: boxplot-cli transform props.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			props, err := chartdata.DecodeProps(payload)
			if err != nil {
				return err
			}
			f := chartFlags{defaults: defaults, prerender: prerender}
			tr, err := f.transformer()
			if err != nil {
				return err
			}
			out, err := tr.Transform(props)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&defaults, "defaults", os.Getenv("CHART_DEFAULTS_FILE"), "YAML chart defaults file")
	cmd.Flags().BoolVar(&prerender, "prerender-tooltips", true, "Embed rendered tooltip HTML in the option")
	return cmd
}

func newAggregateCmd() *cobra.Command {
	var f chartFlags

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Summarize a data file into per-group box plot statistics",
		Long: `Aggregate raw rows into the <metric>__<stat> result rows a box plot consumes.

Example: boxplot-cli aggregate --file sales.csv --groupby region --metric amount --whisker "Min/max (no outliers)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := f.props()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), props.QueriesData[0])
		},
	}

	f.register(cmd)
	return cmd
}

func newRenderCmd() *cobra.Command {
	var f chartFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Aggregate a data file and print the box plot option",
		Long: `Aggregate a data file and transform it in one step.

Example: boxplot-cli render --file sales.csv --groupby region --metric amount`,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := f.props()
			if err != nil {
				return err
			}
			tr, err := f.transformer()
			if err != nil {
				return err
			}
			out, err := tr.Transform(props)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out.Option)
		},
	}

	f.register(cmd)
	return cmd
}

func newExportCmd() *cobra.Command {
	var f chartFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write per-box statistics of a data file to an Excel workbook",
		Long: `Aggregate a data file and write one row per box to the Statistics sheet.

Example: boxplot-cli export --file sales.csv --groupby region --metric amount --out stats.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := f.props()
			if err != nil {
				return err
			}
			tr, err := f.transformer()
			if err != nil {
				return err
			}
			out, err := tr.Transform(props)
			if err != nil {
				return err
			}

			file, err := os.Create(filepath.Clean(output))
			if err != nil {
				return err
			}
			if err := excel.ExportStatistics(file, out.Option.BoxPlot.Data); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d boxes to %s\n", len(out.Option.BoxPlot.Data), output)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&output, "out", "statistics.xlsx", "Output workbook")
	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
