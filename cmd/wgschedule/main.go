// Command wgschedule prints the noise schedule tables a WaveGrad model
// samples with.
//
// Usage:
//
//	wgschedule [flags] [step ...]
//
// Without step arguments it prints every -every'th step plus the last one.
//
// Examples:
//
//	wgschedule
//	wgschedule -config config.json -every 100
//	wgschedule -iter 6 -beta-min 1e-6 -beta-max 0.01
//	wgschedule -iter 50 0 1 49
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/cwbudde/algo-wavegrad/config"
	"github.com/cwbudde/algo-wavegrad/diffusion/schedule"
)

func main() {
	cfgPath := flag.String("config", "", "JSON configuration file (defaults are used when empty)")
	iter := flag.Int("iter", 0, "override the number of diffusion steps")
	betaMin := flag.Float64("beta-min", math.NaN(), "override the first beta")
	betaMax := flag.Float64("beta-max", math.NaN(), "override the last beta")
	every := flag.Int("every", 0, "print every n-th step (default: about 20 rows)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wgschedule [flags] [step ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the coefficient tables of a WaveGrad noise schedule.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wgschedule -config config.json -every 100\n")
		fmt.Fprintf(os.Stderr, "  wgschedule -iter 6 -beta-min 1e-6 -beta-max 0.01\n")
		fmt.Fprintf(os.Stderr, "  wgschedule -iter 50 0 1 49\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ns := &cfg.Model.NoiseSchedule
	if *iter > 0 {
		ns.NIter = *iter
	}
	if !math.IsNaN(*betaMin) {
		ns.BetasRange[0] = *betaMin
	}
	if !math.IsNaN(*betaMax) {
		ns.BetasRange[1] = *betaMax
	}

	sched, err := cfg.Schedule()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	steps, err := resolveSteps(flag.Args(), sched.Steps(), *every)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("steps=%d betas=[%g, %g] hop=%d segment=%d frames\n\n",
		sched.Steps(), ns.BetasRange[0], ns.BetasRange[1], cfg.TotalFactor(), cfg.MelSegmentLength())
	printTable(sched, steps)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// resolveSteps returns the explicit steps given on the command line, or an
// evenly spaced selection that always includes the first and last step.
func resolveSteps(args []string, n, every int) ([]int, error) {
	if len(args) > 0 {
		steps := make([]int, 0, len(args))
		for _, a := range args {
			t, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("invalid step %q: %w", a, err)
			}
			if t < 0 || t >= n {
				return nil, fmt.Errorf("step %d out of range [0, %d)", t, n)
			}
			steps = append(steps, t)
		}
		return steps, nil
	}

	if every <= 0 {
		every = max(1, n/20)
	}
	var steps []int
	for t := 0; t < n; t += every {
		steps = append(steps, t)
	}
	if steps[len(steps)-1] != n-1 {
		steps = append(steps, n-1)
	}
	return steps, nil
}

func printTable(sched *schedule.Schedule, steps []int) {
	betas := sched.Betas()
	acp := sched.AlphaCumprod()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Step\tBeta\tAlpha Cumprod\tNoise Level\t1/sqrt(acp)\tsqrt(1/acp-1)\tCoef1\tCoef2\tLog Var\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "----\t----\t-------------\t-----------\t-----------\t-------------\t-----\t-----\t-------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, t := range steps {
		c := sched.Coefficients(t)
		if _, err := fmt.Fprintf(tw, "%d\t%.6g\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t%.4f\n",
			t,
			betas[t],
			acp[t],
			c.NoiseLevel,
			c.SqrtRecipAlphaCumprod,
			c.SqrtRecipm1AlphaCumprod,
			c.PosteriorMeanCoef1,
			c.PosteriorMeanCoef2,
			c.PosteriorLogVarianceClipped,
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
