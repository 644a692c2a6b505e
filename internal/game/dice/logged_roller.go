package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide audited randomness. Every draw
// is logged at debug level with its purpose, inputs and result, so a combat
// outcome can be reconstructed from the log.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// Between returns a uniform integer in [lo, hi]. An inverted range collapses to lo.
func (r *Roller) Between(purpose string, lo, hi int) int {
	expr, err := Range(lo, max(lo, hi))
	if err != nil {
		return lo
	}
	total := Roll(expr, r.src).Total()
	r.logger.Debug("dice range",
		zap.String("purpose", purpose),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("result", total),
	)
	return total
}

// Chance reports whether an event with the given percentage chance occurs.
// It always draws, so the number of draws per action is independent of the chance.
func (r *Roller) Chance(purpose string, percent float64) bool {
	draw := r.src.Float64()
	hit := draw < percent/100
	r.logger.Debug("dice chance",
		zap.String("purpose", purpose),
		zap.Float64("percent", percent),
		zap.Float64("draw", draw),
		zap.Bool("hit", hit),
	)
	return hit
}

// Variance returns a multiplier uniform in [1-spread, 1+spread).
func (r *Roller) Variance(purpose string, spread float64) float64 {
	draw := r.src.Float64()
	mult := 1 - spread + draw*2*spread
	r.logger.Debug("dice variance",
		zap.String("purpose", purpose),
		zap.Float64("spread", spread),
		zap.Float64("multiplier", mult),
	)
	return mult
}
