package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luxfi/lwe"
	"github.com/luxfi/lwe/internal/cache"
	"github.com/luxfi/lwe/sage"
)

const version = "0.1.0"

// Config holds the settings that may come from flags or the environment.
type Config struct {
	EstimatorCmd  string
	EstimatorPath string
	Cache         string
	CacheDir      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Verbose       bool
}

// estimatorFactory creates the estimator that runs the attack search.
type estimatorFactory func(cfg Config, progress io.Writer) lwe.Estimator

func newSageEstimator(cfg Config, progress io.Writer) lwe.Estimator {
	return sage.New(sage.Config{
		Command:  strings.Fields(cfg.EstimatorCmd),
		Path:     cfg.EstimatorPath,
		Progress: progress,
	})
}

type options struct {
	sDist       string
	eDist       string
	samples     string
	exact       bool
	preset      string
	listPresets bool
	dryRun      bool
	jsonOut     bool
}

func newRootCmd(stdout, stderr io.Writer, newEstimator estimatorFactory) *cobra.Command {
	var opts options
	v := viper.New()

	cmd := &cobra.Command{
		Use:   progName + " <ring_dim> <q> --s-dist JSON --e-dist JSON [--m M] [--exact]",
		Short: "Estimate the bit security of LWE parameters",
		Long: "Estimate the security of LWE-like parameters as floor(log2) of the cheapest\n" +
			"attack's ring operations, using the Sage lattice-estimator.\n\n" +
			"Distributions: " + strings.Join(lwe.SupportedDistributions(), ", ") + ".",
		Example: `  lwe-estimate 1024 12289 --s-dist '{"name": "Binary"}' --e-dist '{"name": "DiscreteGaussian", "stddev": 3.2}'
  lwe-estimate 512 3329 --s-dist '{"name": "CenteredBinomial", "eta": 3}' --e-dist '{"name": "CenteredBinomial", "eta": 2}' --m 1024 --exact
  lwe-estimate --preset STD128_LMKCDEY`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(v)
			startLogging(stderr, cfg.Verbose)

			if opts.listPresets {
				return listPresets(stdout)
			}

			params, err := parametersFromArgs(args, opts)
			if err != nil {
				return err
			}
			if opts.dryRun {
				return describe(stdout, params, opts.jsonOut)
			}

			mode := lwe.ModeRough
			if opts.exact {
				mode = lwe.ModeExact
			}

			var progress io.Writer
			if cfg.Verbose {
				progress = stderr
			}
			estimator, closeCache, err := withCache(cfg, newEstimator(cfg, progress))
			if err != nil {
				return err
			}
			defer closeCache()

			start := time.Now()
			est, err := estimator.Estimate(cmd.Context(), params, mode)
			if err != nil {
				return err
			}
			if best, ok := est.Cheapest(); ok {
				l, _ := best.Log2()
				log.Infof("cheapest attack %s: rop 2^%.1f (%s)", best.Name, l, time.Since(start).Round(time.Millisecond))
			}

			if opts.jsonOut {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(est)
			}
			_, err = fmt.Fprintln(stdout, est.Bits)
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.sDist, "s-dist", "", `secret distribution spec, e.g. '{"name": "DiscreteGaussianAlpha", "alpha": 0.001}'`)
	f.StringVar(&opts.eDist, "e-dist", "", `error distribution spec, e.g. '{"name": "CenteredBinomial", "eta": 3}'`)
	f.StringVar(&opts.samples, "m", "", "number of samples (omit or \"oo\" for unbounded)")
	f.BoolVar(&opts.exact, "exact", false, "run the full estimate instead of the rough one")
	f.StringVar(&opts.preset, "preset", "", "estimate a named parameter set instead of <ring_dim> <q>")
	f.BoolVar(&opts.listPresets, "list-presets", false, "list named parameter sets and exit")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the resolved parameters without estimating")
	f.BoolVar(&opts.jsonOut, "json", false, "print the full result as JSON")

	f.String("estimator-cmd", strings.Join(sage.DefaultCommand, " "), "interpreter used to run the estimator")
	f.String("estimator-path", "", "directory added to the interpreter's import path (lattice-estimator checkout)")
	f.String("cache", "none", "result cache: none, memory, file or redis")
	f.String("cache-dir", cache.DefaultDir(), "directory of the file cache")
	f.String("redis", "localhost:6379", "Redis address of the redis cache")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
	f.BoolP("verbose", "v", false, "log progress to stderr")

	v.SetEnvPrefix("LWE_ESTIMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"estimator-cmd", "estimator-path", "cache", "cache-dir", "redis", "redis-password", "redis-db", "verbose"} {
		// BindPFlag only fails for a nil flag.
		_ = v.BindPFlag(name, f.Lookup(name))
	}

	return cmd
}

func loadConfig(v *viper.Viper) Config {
	return Config{
		EstimatorCmd:  v.GetString("estimator-cmd"),
		EstimatorPath: v.GetString("estimator-path"),
		Cache:         v.GetString("cache"),
		CacheDir:      v.GetString("cache-dir"),
		RedisAddr:     v.GetString("redis"),
		RedisPassword: v.GetString("redis-password"),
		RedisDB:       v.GetInt("redis-db"),
		Verbose:       v.GetBool("verbose"),
	}
}

func parametersFromArgs(args []string, opts options) (lwe.Parameters, error) {
	samples, err := lwe.ParseSamples(opts.samples)
	if err != nil {
		return lwe.Parameters{}, err
	}

	if opts.preset != "" {
		if len(args) > 0 || opts.sDist != "" || opts.eDist != "" {
			return lwe.Parameters{}, fmt.Errorf("--preset cannot be combined with <ring_dim> <q> or distribution specs")
		}
		p, ok := lwe.LookupPreset(opts.preset)
		if !ok {
			return lwe.Parameters{}, fmt.Errorf("unknown preset %q (see --list-presets)", opts.preset)
		}
		params := p.Parameters()
		params.Samples = samples
		return params, nil
	}

	if len(args) != 2 {
		return lwe.Parameters{}, fmt.Errorf("expected <ring_dim> <q>, got %d arguments", len(args))
	}
	if opts.sDist == "" {
		return lwe.Parameters{}, fmt.Errorf("--s-dist is required")
	}
	if opts.eDist == "" {
		return lwe.Parameters{}, fmt.Errorf("--e-dist is required")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return lwe.Parameters{}, fmt.Errorf("%w: ring dimension %q is not an integer", lwe.ErrInvalidParameters, args[0])
	}
	q, err := lwe.ParseModulus(args[1])
	if err != nil {
		return lwe.Parameters{}, err
	}
	return lwe.NewParameters(n, q, []byte(opts.sDist), []byte(opts.eDist), samples)
}

// withCache wraps base with the configured result cache. The returned
// function releases the cache.
func withCache(cfg Config, base lwe.Estimator) (lwe.Estimator, func(), error) {
	var c cache.Cache
	switch cfg.Cache {
	case "", "none":
		return base, func() {}, nil
	case "memory":
		c = cache.NewMemoryCache(64)
	case "file":
		fc, err := cache.NewFileCache(cfg.CacheDir)
		if err != nil {
			return nil, nil, fmt.Errorf("create cache: %w", err)
		}
		c = fc
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create cache: %w", err)
		}
		c = rc
	default:
		return nil, nil, fmt.Errorf("unknown cache %q (want none, memory, file or redis)", cfg.Cache)
	}

	log.Debugf("using %s cache", cfg.Cache)
	return cache.NewEstimator(base, c), func() {
		if err := c.Close(); err != nil {
			log.Warningf("close cache: %v", err)
		}
	}, nil
}

func listPresets(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRING DIM\tLOG Q\tLWE DIM\tTARGET\tSECRET")
	for _, p := range lwe.Presets() {
		secret := "ternary"
		if p.SecretDist == lwe.Gaussian {
			secret = fmt.Sprintf("gaussian(%g)", lwe.PresetSigma)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n", p.Name, p.RingDim, p.LogQ, p.LWEDim, p.Security, secret)
	}
	return tw.Flush()
}

func describe(w io.Writer, params lwe.Parameters, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(params)
	}

	fmt.Fprintf(w, "n:      %d\n", params.N)
	fmt.Fprintf(w, "q:      %s\n", params.Q)
	fmt.Fprintf(w, "m:      %s\n", params.Samples)
	for _, d := range []struct {
		label string
		dist  lwe.Distribution
	}{{"secret", params.Secret}, {"error", params.Error}} {
		ring := "none"
		if X, err := lwe.RingDistribution(d.dist); err == nil {
			ring = fmt.Sprintf("%s %+v", X.Type(), X)
		}
		if _, err := fmt.Fprintf(w, "%-7s %s (ring sampler: %s)\n", d.label+":", lwe.Describe(d.dist), ring); err != nil {
			return err
		}
	}
	return nil
}
