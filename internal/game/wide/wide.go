// Package wide provides the arbitrary-precision integer used for every value
// that can outgrow ordinary integers: gear bonuses, paragon points, resource
// maxima, and power ratings.
//
// Int is an immutable value type; every arithmetic method returns a new Int.
// The zero value represents 0 and is ready to use.
package wide

import (
	"fmt"
	"math"
	"math/big"
)

// Int is an immutable arbitrary-precision integer.
type Int struct {
	v *big.Int
}

var log10Of2 = math.Log10(2)

// Zero is the wide integer 0.
var Zero = Int{}

// New returns n as a wide integer.
func New(n int64) Int {
	return Int{v: big.NewInt(n)}
}

// FromBig copies b into a wide integer. A nil b yields zero.
func FromBig(b *big.Int) Int {
	if b == nil {
		return Int{}
	}
	return Int{v: new(big.Int).Set(b)}
}

// Parse parses a base-10 integer string.
//
// Postcondition: Returns the parsed value or an error describing the malformed input.
func Parse(s string) (Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, fmt.Errorf("wide: invalid integer %q", s)
	}
	return Int{v: b}, nil
}

// MustParse is Parse for constants known to be valid. It panics on malformed input.
func MustParse(s string) Int {
	w, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return w
}

func (w Int) big() *big.Int {
	if w.v == nil {
		return new(big.Int)
	}
	return w.v
}

// Big returns a copy of the underlying value.
func (w Int) Big() *big.Int {
	return new(big.Int).Set(w.big())
}

// Sign returns -1, 0 or +1.
func (w Int) Sign() int {
	if w.v == nil {
		return 0
	}
	return w.v.Sign()
}

// Cmp compares w and o, returning -1, 0 or +1.
func (w Int) Cmp(o Int) int {
	return w.big().Cmp(o.big())
}

// Add returns w + o.
func (w Int) Add(o Int) Int {
	return Int{v: new(big.Int).Add(w.big(), o.big())}
}

// Mul returns w * o.
func (w Int) Mul(o Int) Int {
	return Int{v: new(big.Int).Mul(w.big(), o.big())}
}

// MulInt64 returns w * n.
func (w Int) MulInt64(n int64) Int {
	return Int{v: new(big.Int).Mul(w.big(), big.NewInt(n))}
}

// Max returns the larger of w and o.
func (w Int) Max(o Int) Int {
	if w.Cmp(o) >= 0 {
		return w
	}
	return o
}

// Int64 converts w to int64.
//
// Postcondition: ok is false when w does not fit; the returned value is then
// saturated to math.MinInt64 or math.MaxInt64.
func (w Int) Int64() (n int64, ok bool) {
	b := w.big()
	if b.IsInt64() {
		return b.Int64(), true
	}
	if b.Sign() < 0 {
		return math.MinInt64, false
	}
	return math.MaxInt64, false
}

// Saturate converts w to an int clamped to [lo, hi].
//
// Precondition: lo <= hi.
// Postcondition: clamped reports whether w lay outside [lo, hi].
func (w Int) Saturate(lo, hi int64) (n int64, clamped bool) {
	switch {
	case w.big().Cmp(big.NewInt(lo)) < 0:
		return lo, true
	case w.big().Cmp(big.NewInt(hi)) > 0:
		return hi, true
	}
	n, _ = w.Int64()
	return n, false
}

// Log10p1 returns log10(w + 1) for w >= 0, and 0 for negative w.
// The result is finite for every representable w: the logarithm is taken from
// the mantissa and binary exponent rather than from a float64 conversion.
func (w Int) Log10p1() float64 {
	if w.Sign() < 0 {
		return 0
	}
	x := new(big.Int).Add(w.big(), big.NewInt(1))
	f := new(big.Float).SetInt(x)
	mant := new(big.Float)
	exp := f.MantExp(mant)
	m, _ := mant.Float64()
	return (math.Log2(m) + float64(exp)) * log10Of2
}

// FromFloat truncates a non-negative finite float toward zero.
// NaN and negative inputs yield zero; +Inf is rejected by returning zero as well.
func FromFloat(f float64) Int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return Int{}
	}
	b, _ := new(big.Float).SetFloat64(math.Floor(f)).Int(nil)
	return Int{v: b}
}

// String returns the base-10 representation.
func (w Int) String() string {
	return w.big().String()
}

// MarshalText implements encoding.TextMarshaler.
func (w Int) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so YAML and JSON
// documents may carry wide values as plain integers or strings.
func (w *Int) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
