package session

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ClassSummary aggregates the regions of one class across a session.
type ClassSummary struct {
	Cls        string
	Count      int
	MeanConf   float64
	StdDevConf float64
}

// Summary holds per-session aggregate figures for the side panel.
type Summary struct {
	Photos    int
	Decided   int
	Defective int
	Regions   int
	Classes   []ClassSummary
}

// Summarize computes per-class region counts and confidence statistics
// over every photo in the session.
func Summarize(s *Session) Summary {
	sum := Summary{Photos: len(s.Photos)}

	confs := make(map[string][]float64)
	for _, p := range s.Photos {
		if p.Decision != DecisionNone {
			sum.Decided++
		}
		if p.Decision == DecisionDefect {
			sum.Defective++
		}
		for _, r := range p.Regions {
			sum.Regions++
			key := classKey(r.Cls)
			confs[key] = append(confs[key], r.Confidence)
		}
	}

	display := make(map[string]string)
	for _, p := range s.Photos {
		for _, r := range p.Regions {
			if _, ok := display[classKey(r.Cls)]; !ok {
				display[classKey(r.Cls)] = NormalizeClass(r.Cls)
			}
		}
	}

	for key, vals := range confs {
		cs := ClassSummary{
			Cls:      display[key],
			Count:    len(vals),
			MeanConf: stat.Mean(vals, nil),
		}
		if len(vals) > 1 {
			cs.StdDevConf = stat.StdDev(vals, nil)
		}
		sum.Classes = append(sum.Classes, cs)
	}
	sort.Slice(sum.Classes, func(i, j int) bool {
		return sum.Classes[i].Cls < sum.Classes[j].Cls
	})
	return sum
}
