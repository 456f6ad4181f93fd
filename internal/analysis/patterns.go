package analysis

import (
	"math"

	"quant_bot/internal/models"
)

// PatternDetector scans candle windows for reversal formations. A nil
// pattern with nil error means the window is valid but holds no
// qualifying formation.
type PatternDetector struct {
	minCandles int
	tolerance  float64 // height-similarity bound, fraction of price
}

func NewPatternDetector() *PatternDetector {
	return &PatternDetector{minCandles: 20, tolerance: 0.03}
}

func NewPatternDetectorWith(minCandles int, tolerance float64) *PatternDetector {
	return &PatternDetector{minCandles: minCandles, tolerance: tolerance}
}

// HeadAndShoulders is a bearish reversal: a head peak above two
// shoulders of similar height, necklined through the flanking troughs.
type HeadAndShoulders struct {
	LeftShoulder  models.Candle
	Head          models.Candle
	RightShoulder models.Candle
	LeftTrough    models.Candle
	RightTrough   models.Candle

	LeftTroughIdx    int
	RightShoulderIdx int
	NecklineSlope    float64 // per candle
}

// TargetPrice projects the post-breakout objective: the neckline value
// under the right shoulder minus the head height.
func (p HeadAndShoulders) TargetPrice() float64 {
	headHeight := p.Head.High - p.LeftTrough.Low
	necklineAtBreakout := p.LeftTrough.Low + p.NecklineSlope*float64(p.RightShoulderIdx-p.LeftTroughIdx)
	return necklineAtBreakout - headHeight
}

type DoubleTop struct {
	FirstPeak  models.Candle
	SecondPeak models.Candle
	Trough     models.Candle
	Height     float64 // average peak height
}

func (p DoubleTop) TargetPrice() float64 {
	patternHeight := p.Height - p.Trough.Low
	return p.Trough.Low - patternHeight
}

type DoubleBottom struct {
	FirstTrough  models.Candle
	SecondTrough models.Candle
	Peak         models.Candle
	Depth        float64 // average trough depth
}

func (p DoubleBottom) TargetPrice() float64 {
	patternHeight := p.Peak.High - p.Depth
	return p.Peak.High + patternHeight
}

// DetectHeadAndShoulders scans consecutive peak triples on the high
// series. Peaks must sit >=3 candles apart and the shoulders within
// tolerance of each other.
func (d *PatternDetector) DetectHeadAndShoulders(candles []models.Candle) (*HeadAndShoulders, error) {
	if len(candles) < d.minCandles {
		return nil, InsufficientDataError{Need: d.minCandles, Got: len(candles)}
	}

	highs := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
	}

	peaks := findPeaks(highs, 3)
	if len(peaks) < 3 {
		return nil, nil
	}

	for i := 0; i+2 < len(peaks); i++ {
		leftIdx, headIdx, rightIdx := peaks[i], peaks[i+1], peaks[i+2]
		if headIdx-leftIdx < 3 || rightIdx-headIdx < 3 {
			continue
		}

		leftPeak, headPeak, rightPeak := highs[leftIdx], highs[headIdx], highs[rightIdx]
		if headPeak <= leftPeak || headPeak <= rightPeak {
			continue
		}
		if math.Abs(leftPeak-rightPeak)/leftPeak > d.tolerance {
			continue
		}

		leftTrough, okL := lowestBetween(highs, leftIdx, headIdx)
		rightTrough, okR := lowestBetween(highs, headIdx, rightIdx)
		if !okL || !okR {
			continue
		}

		return &HeadAndShoulders{
			LeftShoulder:     candles[leftIdx],
			Head:             candles[headIdx],
			RightShoulder:    candles[rightIdx],
			LeftTrough:       candles[leftTrough],
			RightTrough:      candles[rightTrough],
			LeftTroughIdx:    leftTrough,
			RightShoulderIdx: rightIdx,
			NecklineSlope:    (highs[rightTrough] - highs[leftTrough]) / float64(rightTrough-leftTrough),
		}, nil
	}
	return nil, nil
}

// DetectDoubleTop looks for two peaks of similar height >=5 candles
// apart with an intervening trough more than 3% below each.
func (d *PatternDetector) DetectDoubleTop(candles []models.Candle) (*DoubleTop, error) {
	if len(candles) < d.minCandles {
		return nil, InsufficientDataError{Need: d.minCandles, Got: len(candles)}
	}

	highs := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
	}

	peaks := findPeaks(highs, 2)
	if len(peaks) < 2 {
		return nil, nil
	}

	for i := 0; i+1 < len(peaks); i++ {
		firstIdx, secondIdx := peaks[i], peaks[i+1]
		if secondIdx-firstIdx < 5 {
			continue
		}

		first, second := highs[firstIdx], highs[secondIdx]
		if math.Abs(first-second)/first > d.tolerance {
			continue
		}

		troughIdx, ok := lowestBetween(highs, firstIdx, secondIdx)
		if !ok {
			continue
		}
		trough := highs[troughIdx]
		if (first-trough)/first <= 0.03 || (second-trough)/second <= 0.03 {
			continue
		}

		return &DoubleTop{
			FirstPeak:  candles[firstIdx],
			SecondPeak: candles[secondIdx],
			Trough:     candles[troughIdx],
			Height:     (first + second) / 2,
		}, nil
	}
	return nil, nil
}

// DetectDoubleBottom mirrors DetectDoubleTop on the low series.
func (d *PatternDetector) DetectDoubleBottom(candles []models.Candle) (*DoubleBottom, error) {
	if len(candles) < d.minCandles {
		return nil, InsufficientDataError{Need: d.minCandles, Got: len(candles)}
	}

	lows := make([]float64, len(candles))
	for i, c := range candles {
		lows[i] = c.Low
	}

	troughs := findTroughs(lows, 2)
	if len(troughs) < 2 {
		return nil, nil
	}

	for i := 0; i+1 < len(troughs); i++ {
		firstIdx, secondIdx := troughs[i], troughs[i+1]
		if secondIdx-firstIdx < 5 {
			continue
		}

		first, second := lows[firstIdx], lows[secondIdx]
		if math.Abs(first-second)/first > d.tolerance {
			continue
		}

		peakIdx, ok := highestBetween(lows, firstIdx, secondIdx)
		if !ok {
			continue
		}
		peak := lows[peakIdx]
		if (peak-first)/first <= 0.03 || (peak-second)/second <= 0.03 {
			continue
		}

		return &DoubleBottom{
			FirstTrough:  candles[firstIdx],
			SecondTrough: candles[secondIdx],
			Peak:         candles[peakIdx],
			Depth:        (first + second) / 2,
		}, nil
	}
	return nil, nil
}

// findPeaks returns up to count local maxima in encounter order. A peak
// is strictly greater than both neighbors.
func findPeaks(prices []float64, count int) []int {
	var peaks []int
	for i := 1; i+1 < len(prices); i++ {
		if prices[i] > prices[i-1] && prices[i] > prices[i+1] {
			peaks = append(peaks, i)
			if len(peaks) >= count {
				break
			}
		}
	}
	return peaks
}

func findTroughs(prices []float64, count int) []int {
	var troughs []int
	for i := 1; i+1 < len(prices); i++ {
		if prices[i] < prices[i-1] && prices[i] < prices[i+1] {
			troughs = append(troughs, i)
			if len(troughs) >= count {
				break
			}
		}
	}
	return troughs
}

// lowestBetween returns the index of the minimum value strictly inside
// (start, end).
func lowestBetween(prices []float64, start, end int) (int, bool) {
	if start+1 >= end || end >= len(prices) {
		return 0, false
	}
	minIdx := start + 1
	for i := start + 2; i < end; i++ {
		if prices[i] < prices[minIdx] {
			minIdx = i
		}
	}
	return minIdx, true
}

func highestBetween(prices []float64, start, end int) (int, bool) {
	if start+1 >= end || end >= len(prices) {
		return 0, false
	}
	maxIdx := start + 1
	for i := start + 2; i < end; i++ {
		if prices[i] > prices[maxIdx] {
			maxIdx = i
		}
	}
	return maxIdx, true
}
