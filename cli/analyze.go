package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/emotionflow/emotion-timeline/models"
	"github.com/emotionflow/emotion-timeline/orchestrator"
	"github.com/emotionflow/emotion-timeline/textutil"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		method, smoothing, out string
		chunk, smooth, topK    int
		csvOut                 bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Score a text file (or stdin) and print the top emotions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			p := orchestrator.NewPipeline(a.cfg, models.NewLoader(a.cfg), nil)
			o := p.DefaultOptions()
			f := cmd.Flags()
			if f.Changed("method") {
				o.Segmentation.Method = textutil.Method(method)
			}
			if f.Changed("chunk") {
				o.Segmentation = o.Segmentation.WithParam(chunk)
			}
			if f.Changed("smooth") {
				o.SmoothWindow = smooth
			}
			if f.Changed("smoothing") {
				o.Smoothing = orchestrator.Smoothing(smoothing)
			}
			if f.Changed("top-k") {
				o.TopK = topK
			}

			res, err := p.Run(cmd.Context(), text, o)
			if err != nil {
				return err
			}
			if out != "" {
				a.cfg.Paths.Outputs = out
				if err := p.Persist(cmd.Context(), res); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if csvOut {
				b, err := res.CSV()
				if err != nil {
					return err
				}
				_, err = w.Write(b)
				return err
			}
			printSummary(w, res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&method, "method", "", "segmentation method: sentences, words or bundled")
	f.IntVar(&chunk, "chunk", 0, "sentences per chunk, words per chunk or word budget, depending on --method")
	f.IntVar(&smooth, "smooth", 0, "smoothing window in segments")
	f.StringVar(&smoothing, "smoothing", "", "trailing or centered")
	f.IntVar(&topK, "top-k", 0, "number of emotions to plot")
	f.StringVar(&out, "out", "", "write the session (json, csv, svg) under this directory")
	f.BoolVar(&csvOut, "csv", false, "print the details table as CSV")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		b   []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), ""), nil
}

func printSummary(w io.Writer, res *orchestrator.Result) {
	fmt.Fprintf(w, "session %s: %d segments scored by %s\n", res.SessionID, len(res.Segments), res.Backend)
	fmt.Fprintf(w, "top emotions: %s\n", strings.Join(res.Top, ", "))
	if res.Dir != "" {
		fmt.Fprintf(w, "saved to %s\n", res.Dir)
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"emotion", "mean score"})
	for _, m := range res.Means {
		table.Append([]string{m.Label, strconv.FormatFloat(m.Score, 'f', 3, 64)})
	}
	table.Render()
}
