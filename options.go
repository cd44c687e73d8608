package scrollspy

import "fmt"

// Option is a functional option for configuring a tracking session.
type Option func(*options) error

type options struct {
	band       Band
	fallback   bool
	thresholds []float64
	logger     Logger
}

// defaultThresholds fires at every 10% step of visibility.
func defaultThresholds() []float64 {
	t := make([]float64, 11)
	for i := range t {
		t[i] = float64(i) / 10
	}
	return t
}

func defaultOptions() options {
	return options{
		band:       DefaultBand(),
		fallback:   true,
		thresholds: defaultThresholds(),
		logger:     debugLogger{},
	}
}

// WithActivationBand sets the part of the viewport in which visible area
// counts toward activation. Default is DefaultBand().
func WithActivationBand(b Band) Option {
	return func(o *options) error {
		o.band = b
		return nil
	}
}

// WithRootMargin sets the activation band from CSS margin shorthand,
// e.g. "-40% 0px -40% 0px".
func WithRootMargin(margin string) Option {
	return func(o *options) error {
		b, err := ParseBand(margin)
		if err != nil {
			return fmt.Errorf("root margin: %w", err)
		}
		o.band = b
		return nil
	}
}

// WithInitialFallback enables or disables the one-shot geometry scan run
// one frame after the observer is set up. Default is enabled.
func WithInitialFallback(enabled bool) Option {
	return func(o *options) error {
		o.fallback = enabled
		return nil
	}
}

// WithThresholds sets the visibility ratios at which the host reports
// changes. Each value must be within [0, 1]. Default is 0, 0.1, ..., 1.
func WithThresholds(thresholds ...float64) Option {
	return func(o *options) error {
		if len(thresholds) == 0 {
			return fmt.Errorf("at least one threshold is required")
		}
		for _, t := range thresholds {
			if t < 0 || t > 1 {
				return fmt.Errorf("threshold %v out of range [0, 1]", t)
			}
		}
		o.thresholds = append([]float64(nil), thresholds...)
		return nil
	}
}

// WithLogger routes session logs to l. Default writes to the
// SCROLLSPY_DEBUG file when set.
func WithLogger(l Logger) Option {
	return func(o *options) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		o.logger = l
		return nil
	}
}
