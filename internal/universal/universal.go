// Package universal implements the histogram-based pulse-distance /
// pulse-width classifier (§4.D): the fallback used when no
// fixed-protocol decoder in the cascade recognizes a buffer.
package universal

import (
	"math"
	"sort"

	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// BinWidthUs is the histogram bin size. Widen it if the pulse source's
// capture resolution is coarser than this, per §9's tuning note;
// §8 property 4 must still hold at the widened size.
const BinWidthUs = 50

// MaxUs bounds the histogram range; durations beyond it fall in the
// last bin rather than growing the table unbounded.
const MaxUs = 10000

const numBins = MaxUs / BinWidthUs

// MinBits is the smallest bit count the classifier will attempt,
// matching §4.D's "at least 2*min_bits + 4 entries" gate with the
// spec's own minimum.
const MinBits = 8

type cluster struct {
	repUs int
	count int
}

func histogram(values []int) []int {
	bins := make([]int, numBins)
	for _, v := range values {
		b := v / BinWidthUs
		if b < 0 {
			continue
		}
		if b >= numBins {
			b = numBins - 1
		}
		bins[b]++
	}
	return bins
}

// aggregateClusters groups histogram bins into runs (§4.D step 2): a
// run accumulates count and a count-weighted bin index until the array
// ends or two adjacent bins are empty. The cluster's representative
// duration is the rounded weighted-average bin, converted back to
// microseconds at the bin's midpoint.
func aggregateClusters(bins []int) []cluster {
	var clusters []cluster
	i := 0
	for i < len(bins) {
		if bins[i] == 0 {
			i++
			continue
		}
		var count, weighted, empties int
		j := i
		for j < len(bins) {
			if bins[j] == 0 {
				empties++
				if empties >= 2 {
					break
				}
				j++
				continue
			}
			empties = 0
			count += bins[j]
			weighted += bins[j] * j
			j++
		}
		if count > 0 {
			avgBin := int(math.Round(float64(weighted) / float64(count)))
			clusters = append(clusters, cluster{
				repUs: avgBin*BinWidthUs + BinWidthUs/2,
				count: count,
			})
		}
		i = j + 1
	}
	return clusters
}

// ErrCannotClassify covers both "more than two clusters" (biphase or
// noise) and "one cluster each side" (nothing to discriminate on).
var ErrCannotClassify = ircode.ErrDecodeFailed

// Classify implements §4.D end to end: builds mark/space histograms
// over the buffer's data region (header and trailing stop symbol
// skipped), aggregates each into at most two clusters, classifies as
// pulse-distance or pulse-width, and packs the data word LSB-first
// using the midpoint between the two discriminating clusters as the
// threshold.
func Classify(buf pulse.Buffer, minBits int) (ircode.Code, error) {
	if minBits < MinBits {
		minBits = MinBits
	}
	if buf.Len() < 2*minBits+4 {
		return ircode.Code{}, ErrCannotClassify
	}

	data := buf.Pairs
	if len(data) < 3 {
		return ircode.Code{}, ErrCannotClassify
	}
	body := data[1 : len(data)-1] // skip header pair and trailing stop symbol

	marks := make([]int, len(body))
	spaces := make([]int, len(body))
	for i, p := range body {
		marks[i] = p.Mark
		spaces[i] = p.Space
	}

	markClusters := aggregateClusters(histogram(marks))
	spaceClusters := aggregateClusters(histogram(spaces))

	if len(markClusters) > 2 || len(spaceClusters) > 2 {
		return ircode.Code{}, ErrCannotClassify
	}

	var id protocol.ID
	var discriminate func(p pulse.Pair) int
	var threshold int

	switch {
	case len(markClusters) == 2 && len(spaceClusters) == 1:
		id = protocol.PulseWidth
		threshold = midpoint(markClusters)
		discriminate = func(p pulse.Pair) int { return p.Mark }
	case len(markClusters) == 1 && len(spaceClusters) == 2:
		id = protocol.PulseDistance
		threshold = midpoint(spaceClusters)
		discriminate = func(p pulse.Pair) int { return p.Space }
	case len(markClusters) == 2 && len(spaceClusters) == 2:
		id = protocol.PulseDistance
		threshold = midpoint(spaceClusters)
		discriminate = func(p pulse.Pair) int { return p.Space }
	default:
		// one cluster on each side, or one side has zero usable data.
		return ircode.Code{}, ErrCannotClassify
	}

	var word uint64
	for i, p := range body {
		if discriminate(p) > threshold {
			word |= uint64(1) << uint(i)
		}
	}

	return ircode.Code{
		Protocol: id,
		Data:     word,
		Bits:     len(body),
	}, nil
}

func midpoint(clusters []cluster) int {
	sorted := append([]cluster(nil), clusters...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].repUs < sorted[j].repUs })
	return (sorted[0].repUs + sorted[1].repUs) / 2
}
