package describe

import (
	"math"
	"sort"

	"datadesc/internal/table"
)

// Summary is the descriptive-statistics record for one numeric column:
// count, mean, sample standard deviation and the five-number summary.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Describe computes the summary for one column of a loaded dataset.
// The dataset is never modified.
func Describe(ds *table.Dataset, column string) (Summary, error) {
	col, err := ds.Column(column)
	if err != nil {
		return Summary{}, err
	}
	return summarize(col), nil
}

// DescribeAll computes summaries for every column in declared order.
func DescribeAll(ds *table.Dataset) []Summary {
	names := ds.Names()
	summaries := make([]Summary, 0, len(names))
	for _, name := range names {
		col, err := ds.Column(name)
		if err != nil {
			// Names() only returns configured columns.
			continue
		}
		summaries = append(summaries, summarize(col))
	}
	return summaries
}

func summarize(col *table.Column) Summary {
	values := col.Values
	s := Summary{Column: col.Name, Count: len(values)}
	if len(values) == 0 {
		return s
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Mean = mean(values)
	s.Std = sampleStd(values, s.Mean)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = percentile(sorted, 25)
	s.Median = percentile(sorted, 50)
	s.Q75 = percentile(sorted, 75)
	return s
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd uses the n-1 denominator. A single value has no spread and
// reports 0.
func sampleStd(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// percentile linearly interpolates at rank p/100*(n-1) over pre-sorted
// values.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
