package desim

// envOptions holds configuration gathered from EnvOption values, applied
// during NewEnvironment. Grounded on eventloop/options.go's loopOptions.
type envOptions struct {
	initialTime Time
	logger      Logger
}

// EnvOption configures an Environment at construction time.
type EnvOption interface {
	applyEnv(*envOptions)
}

type envOptionFunc func(*envOptions)

func (f envOptionFunc) applyEnv(o *envOptions) { f(o) }

// WithInitialTime sets the Environment's virtual clock at construction,
// instead of the default of 0.
func WithInitialTime(t Time) EnvOption {
	return envOptionFunc(func(o *envOptions) {
		o.initialTime = t
	})
}

// WithLogger installs a structured Logger. The default, if this option is
// omitted, is a no-op logger (see NewNoopLogger).
func WithLogger(logger Logger) EnvOption {
	return envOptionFunc(func(o *envOptions) {
		o.logger = logger
	})
}

func resolveEnvOptions(opts []EnvOption) *envOptions {
	cfg := &envOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyEnv(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = NewNoopLogger()
	}
	return cfg
}
