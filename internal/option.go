package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

// ScanSettings are the per-invocation flags of scan mode.
type ScanSettings struct {
	// Fix enables repairs.
	Fix bool
	// Yes auto-applies the top candidate instead of prompting.
	Yes bool
	// DryRun reports fixes without writing.
	DryRun bool
	// Strict makes warnings (skipped links, unreadable documents) fatal.
	Strict bool
	// CheckExternal probes even placeholder and trusted hosts.
	CheckExternal bool
	// Root overrides the configured corpus root when non-empty.
	Root string
}

type application struct {
	config *Config
	scan   ScanSettings
	stdin  io.Reader
	stdout io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithScanSettings sets the scan-mode flags.
func WithScanSettings(s ScanSettings) Option {
	return func(a *application) {
		a.scan = s
	}
}

// WithIO overrides the streams used for interactive prompts and report
// output. Defaults to os.Stdin and os.Stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *application) {
		a.stdin = in
		a.stdout = out
	}
}
