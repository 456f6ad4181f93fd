package analysis

import "math"

// Batch indicator math over price series, oldest first. Every function
// validates the window against the input length and returns
// InsufficientDataError instead of a short or padded result.

// SMA returns the simple moving average; output has len(prices)-period+1
// points, one per full window.
func SMA(prices []float64, period int) ([]float64, error) {
	if len(prices) < period {
		return nil, InsufficientDataError{Need: period, Got: len(prices)}
	}

	out := make([]float64, 0, len(prices)-period+1)
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, nil
}

// EMA returns the exponential moving average seeded with the SMA of the
// first period values, multiplier 2/(period+1).
func EMA(prices []float64, period int) ([]float64, error) {
	if len(prices) < period {
		return nil, InsufficientDataError{Need: period, Got: len(prices)}
	}

	var seed float64
	for _, p := range prices[:period] {
		seed += p
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(prices)-period+1)
	out = append(out, seed)
	ema := seed
	for _, p := range prices[period:] {
		ema = (p-ema)*k + ema
		out = append(out, ema)
	}
	return out, nil
}

// RSI computes the relative strength index over the whole series with
// Wilder smoothing and returns the final value. Needs period+1 prices.
func RSI(prices []float64, period int) (float64, error) {
	if len(prices) <= period {
		return 0, InsufficientDataError{Need: period + 1, Got: len(prices)}
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains = append(gains, d)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -d)
		}
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss < 1e-10 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// MACDResult holds the aligned MACD line, signal line and histogram. All
// three slices share the signal line's length.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes fast/slow EMA difference and its signal-period EMA.
// Needs slowPeriod+signalPeriod prices.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (MACDResult, error) {
	need := slowPeriod + signalPeriod
	if len(prices) < need {
		return MACDResult{}, InsufficientDataError{Need: need, Got: len(prices)}
	}

	fast, err := EMA(prices, fastPeriod)
	if err != nil {
		return MACDResult{}, err
	}
	slow, err := EMA(prices, slowPeriod)
	if err != nil {
		return MACDResult{}, err
	}

	// The fast EMA starts earlier; drop its leading points so both
	// series cover the same candles.
	offset := slowPeriod - fastPeriod
	macd := make([]float64, len(slow))
	for i := range slow {
		macd[i] = fast[i+offset] - slow[i]
	}

	signal, err := EMA(macd, signalPeriod)
	if err != nil {
		return MACDResult{}, err
	}

	macdTail := macd[len(macd)-len(signal):]
	hist := make([]float64, len(signal))
	for i := range signal {
		hist[i] = macdTail[i] - signal[i]
	}

	return MACDResult{MACD: macdTail, Signal: signal, Histogram: hist}, nil
}

// BollingerBands holds the middle SMA and the +-k standard deviation
// envelopes.
type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes period-window bands with stdDev deviations around
// the SMA. Standard deviation is population stddev over each window.
func Bollinger(prices []float64, period int, stdDev float64) (BollingerBands, error) {
	middle, err := SMA(prices, period)
	if err != nil {
		return BollingerBands{}, err
	}

	upper := make([]float64, len(middle))
	lower := make([]float64, len(middle))
	for i, mid := range middle {
		var variance float64
		for _, p := range prices[i : i+period] {
			d := p - mid
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mid + stdDev*sd
		lower[i] = mid - stdDev*sd
	}

	return BollingerBands{Upper: upper, Middle: middle, Lower: lower}, nil
}

// ATR computes the average true range with Wilder smoothing and returns
// the final value. Needs period+1 candles.
func ATR(highs, lows, closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, InsufficientDataError{Need: period + 1, Got: len(closes)}
	}

	trs := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		tr := highs[i] - lows[i]
		if hc := math.Abs(highs[i] - closes[i-1]); hc > tr {
			tr = hc
		}
		if lc := math.Abs(lows[i] - closes[i-1]); lc > tr {
			tr = lc
		}
		trs = append(trs, tr)
	}

	var atr float64
	for i := 0; i < period; i++ {
		atr += trs[i]
	}
	atr /= float64(period)

	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr, nil
}

// StochasticResult holds aligned %K and %D series; %D is the dPeriod SMA
// of %K, so it is shorter by dPeriod-1 points.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes the %K oscillator over kPeriod windows and its
// dPeriod SMA. A zero-range window yields %K = 50.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (StochasticResult, error) {
	if len(closes) < kPeriod {
		return StochasticResult{}, InsufficientDataError{Need: kPeriod, Got: len(closes)}
	}

	k := make([]float64, 0, len(closes)-kPeriod+1)
	for i := 0; i+kPeriod <= len(closes); i++ {
		winHigh := highs[i]
		winLow := lows[i]
		for j := i + 1; j < i+kPeriod; j++ {
			if highs[j] > winHigh {
				winHigh = highs[j]
			}
			if lows[j] < winLow {
				winLow = lows[j]
			}
		}
		c := closes[i+kPeriod-1]
		if winHigh == winLow {
			k = append(k, 50)
		} else {
			k = append(k, 100*(c-winLow)/(winHigh-winLow))
		}
	}

	d, err := SMA(k, dPeriod)
	if err != nil {
		return StochasticResult{}, err
	}
	return StochasticResult{K: k, D: d}, nil
}

// OBV computes on-balance volume, seeded with the first volume.
func OBV(closes, volumes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, InsufficientDataError{Need: 2, Got: len(closes)}
	}
	if len(volumes) < len(closes) {
		return nil, InsufficientDataError{Need: len(closes), Got: len(volumes)}
	}

	out := make([]float64, len(closes))
	out[0] = volumes[0]
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out, nil
}
