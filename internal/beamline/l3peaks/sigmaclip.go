package l3peaks

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoValues is returned when there is nothing to clip.
	ErrNoValues = errors.New("sigma clip: no values")
	// ErrClippedAll is returned when a clipping pass rejects every value.
	ErrClippedAll = errors.New("sigma clip: every value rejected")
)

// ClipResult summarises a converged sigma clip.
type ClipResult struct {
	Lower      float64 // lower rejection bound of the final pass
	Upper      float64 // upper rejection bound of the final pass
	Mean       float64 // mean of the surviving values
	Std        float64 // population standard deviation of the surviving values
	Kept       int     // number of surviving values
	Iterations int     // number of passes, including the final one that removed nothing
}

// SigmaClip repeatedly discards values outside
// [mean - low·std, mean + high·std] until a pass discards nothing. Bounds are
// inclusive and std is the population standard deviation. values is not
// modified.
func SigmaClip(values []float64, low, high float64) (ClipResult, error) {
	if len(values) == 0 {
		return ClipResult{}, ErrNoValues
	}
	c := make([]float64, len(values))
	copy(c, values)

	var res ClipResult
	for {
		mean, std := stat.PopMeanStdDev(c, nil)
		res.Iterations++
		res.Mean, res.Std = mean, std
		res.Lower = mean - std*low
		res.Upper = mean + std*high

		kept := c[:0]
		for _, v := range c {
			if v >= res.Lower && v <= res.Upper {
				kept = append(kept, v)
			}
		}
		removed := len(c) - len(kept)
		c = kept
		if len(c) == 0 {
			return res, ErrClippedAll
		}
		if removed == 0 {
			break
		}
	}
	res.Kept = len(c)
	return res, nil
}
