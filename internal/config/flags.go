package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagSampler = flag.String("sampler", "", "Sampler mode: readback or analytic")
	flagFilter  = flag.String("filter", "", "Readback filter: nearest or bilinear")
	flagBackend = flag.String("backend", "", "Compute backend: cpu or opencl")
	flagWorkers = flag.Int("workers", 0, "Compute worker goroutines")
	flagPaused  = flag.Bool("paused", false, "Start with the clock paused")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSampler != "" {
		cfg.Sampler.Mode = *flagSampler
	}
	if *flagFilter != "" {
		cfg.Sampler.Filter = *flagFilter
	}
	if *flagBackend != "" {
		cfg.Compute.Backend = *flagBackend
	}
	if *flagWorkers > 0 {
		cfg.Compute.Workers = *flagWorkers
	}
	if *flagPaused {
		cfg.Surface.Paused = true
	}
}
