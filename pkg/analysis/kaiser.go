package analysis

import "math"

// kaiser returns an n-point Kaiser window with shape parameter beta.
// The ratio I0(beta*sqrt(1-x^2))/I0(beta) is evaluated through the
// exponentially scaled Bessel function so that the very large beta values
// produced by low-contrast images do not overflow.
func kaiser(n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		x := 2*float64(i)/float64(n-1) - 1
		arg := beta * math.Sqrt(1-x*x)
		w[i] = i0e(arg) / i0e(beta) * math.Exp(arg-beta)
	}
	return w
}

// i0e returns exp(-x)*I0(x) for x >= 0, with I0 the modified Bessel function
// of the first kind, order zero. Polynomial approximations after Abramowitz
// & Stegun 9.8.1 and 9.8.2.
func i0e(x float64) float64 {
	if x < 3.75 {
		t := x / 3.75
		t *= t
		p := 1.0 + t*(3.5156229+t*(3.0899424+t*(1.2067492+t*(0.2659732+t*(0.0360768+t*0.0045813)))))
		return p * math.Exp(-x)
	}
	t := 3.75 / x
	p := 0.39894228 + t*(0.01328592+t*(0.00225319+t*(-0.00157565+
		t*(0.00916281+t*(-0.02057706+t*(0.02635537+t*(-0.01647633+t*0.00392377)))))))
	return p / math.Sqrt(x)
}
