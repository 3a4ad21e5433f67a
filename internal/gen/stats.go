package gen

import (
	"math"
	"sort"
)

// ColumnSummary holds descriptive statistics for one numeric column.
// Purely informational; nothing reads these for control decisions.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe computes count, mean, standard deviation, min, quartiles, and max
// for every numeric column, in column order. Non-numeric columns and missing
// values are skipped; a column with no numeric values is omitted.
func (d *Dataset) Describe() []ColumnSummary {
	var summaries []ColumnSummary
	for _, col := range d.Columns {
		values := d.numericColumn(col)
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		summaries = append(summaries, ColumnSummary{
			Column: col,
			Count:  len(values),
			Mean:   mean(values),
			Std:    stddev(values),
			Min:    values[0],
			Q1:     quantile(values, 0.25),
			Median: quantile(values, 0.5),
			Q3:     quantile(values, 0.75),
			Max:    values[len(values)-1],
		})
	}
	return summaries
}

func (d *Dataset) numericColumn(col string) []float64 {
	var values []float64
	for _, row := range d.Rows {
		switch v := row[col].(type) {
		case int64:
			values = append(values, float64(v))
		case int:
			values = append(values, float64(v))
		case float64:
			values = append(values, v)
		}
	}
	return values
}

func mean(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// stddev computes the population standard deviation in a single pass.
func stddev(x []float64) float64 {
	n := float64(len(x))
	sum, sumSq := 0.0, 0.0
	for _, v := range x {
		sum += v
		sumSq += v * v
	}
	m := sum / n
	variance := (sumSq / n) - m*m
	if variance < 0 {
		// Guard against catastrophic cancellation on constant columns.
		variance = 0
	}
	return math.Sqrt(variance)
}

// quantile returns the q-quantile of sorted values using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
