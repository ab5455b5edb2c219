// Command seqsplit builds an input part and a sequence splitter on top of
// it, then prints the shapes and masks before and after the split.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/celestialized/neuralmonkey/pkg/model"
	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

type options struct {
	configPath     string
	batch          int
	steps          int
	dim            int
	factor         int
	projectionSize int
	activation     string
	seed           int64
	verbose        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}
	defaults := model.DefaultSplitterConfig()

	cmd := &cobra.Command{
		Use:           "seqsplit",
		Short:         "Split encoder states into a longer, narrower sequence",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML splitter configuration; flags set explicitly override it")
	f.IntVar(&opts.batch, "batch", 2, "Batch size of the generated input")
	f.IntVar(&opts.steps, "time", 3, "Number of timesteps of the generated input")
	f.IntVar(&opts.dim, "dim", 4, "Feature dimension of the generated input")
	f.IntVar(&opts.factor, "factor", defaults.Factor, "Split factor")
	f.IntVar(&opts.projectionSize, "projection-size", 0, "Project to this many features before splitting (0 disables)")
	f.StringVar(&opts.activation, "activation", "",
		"Projection activation ("+strings.Join(tensor.ActivationNames(), ", ")+")")
	f.Int64Var(&opts.seed, "seed", defaults.Seed, "Seed for generated data and projection weights")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log graph construction at debug level")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	out := cmd.OutOrStdout()
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := splitterConfig(cmd, opts)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ds := model.NewDataset("generated").
		Add("source", randomStates(rng, opts.batch, opts.steps, opts.dim)).
		Add("source"+model.MaskSuffix, randomMask(rng, opts.batch, opts.steps))

	g := model.NewGraph(model.WithLogger(logger))
	encoder, err := model.NewTemporalInputFromDataset(g, "encoder", ds, "source")
	if err != nil {
		return err
	}
	splitter, err := model.NewSequenceSplitter(g, encoder, cfg)
	if err != nil {
		return err
	}

	states, err := splitter.TemporalStates()
	if err != nil {
		return err
	}
	mask, err := splitter.TemporalMask()
	if err != nil {
		return err
	}

	parentStates, _ := encoder.TemporalStates()
	parentMask, _ := encoder.TemporalMask()
	printSection(out, "Input")
	fmt.Fprintf(out, "  states: %v\n", parentStates.Shape)
	fmt.Fprintf(out, "  mask:   %s\n", parentMask)
	printSection(out, "Split (factor "+fmt.Sprint(splitter.Factor())+")")
	fmt.Fprintf(out, "  states: %v\n", states.Shape)
	fmt.Fprintf(out, "  mask:   %s\n", mask)

	feed, err := g.FeedDict(splitter, ds, false)
	if err != nil {
		return err
	}

	printSection(out, "Graph")
	fmt.Fprintf(out, "  dependencies: %s\n", strings.Join(splitter.Dependencies().Names(), ", "))
	keys := make([]string, 0, len(feed))
	for key := range feed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "  feed %s %v\n", key, feed[key].Shape)
	}
	for _, v := range g.Variables() {
		fmt.Fprintf(out, "  variable %s %v\n", v.Name, v.Value.Shape)
	}
	return nil
}

// splitterConfig layers explicitly set flags over the config file, or over
// the defaults when no file is given.
func splitterConfig(cmd *cobra.Command, opts options) (model.SplitterConfig, error) {
	cfg := model.DefaultSplitterConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = model.LoadSplitterConfig(opts.configPath); err != nil {
			return model.SplitterConfig{}, err
		}
	}

	f := cmd.Flags()
	if opts.configPath == "" || f.Changed("factor") {
		cfg.Factor = opts.factor
	}
	if opts.configPath == "" || f.Changed("projection-size") {
		cfg.ProjectionSize = opts.projectionSize
	}
	if opts.configPath == "" || f.Changed("activation") {
		cfg.ProjectionActivation = opts.activation
	}
	if opts.configPath == "" || f.Changed("seed") {
		cfg.Seed = opts.seed
	}
	return cfg, cfg.Validate()
}

func randomStates(rng *rand.Rand, batch, steps, dim int) *tensor.Tensor {
	t := tensor.NewTensor([]int{batch, steps, dim})
	for i := range t.Data {
		t.Data[i] = float32(rng.NormFloat64())
	}
	return t
}

// randomMask marks a random-length prefix of every sequence valid.
func randomMask(rng *rand.Rand, batch, steps int) *tensor.Tensor {
	m := tensor.NewTensor([]int{batch, steps})
	for b := 0; b < batch; b++ {
		length := steps
		if steps > 1 {
			length = 1 + rng.Intn(steps)
		}
		for s := 0; s < length; s++ {
			m.Set([]int{b, s}, 1)
		}
	}
	return m
}

func printSection(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, strings.Repeat("=", 50))
}
