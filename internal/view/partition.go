// Package view splits the unified table into typed subsets and selects
// observations by indicator.
package view

import (
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Views holds the three typed partitions of a unified table
type Views struct {
	Observations []model.Observation
	Events       []model.Event
	ImpactLinks  []model.ImpactLink

	// CellErrors lists cells read as null because they did not parse,
	// including unparsable dates
	CellErrors []*dataset.CellError

	// Unrecognized counts rows whose record_type matched no kind
	Unrecognized int
}

// Partition splits t by record_type. Each recognised row lands in exactly
// one partition, in table order.
func Partition(t *model.Table) Views {
	decoded := dataset.Decode(t)

	v := Views{
		CellErrors:   decoded.Issues,
		Unrecognized: len(decoded.Unrecognized),
	}
	for _, r := range decoded.Records {
		switch rec := r.(type) {
		case model.Observation:
			v.Observations = append(v.Observations, rec)
		case model.Event:
			v.Events = append(v.Events, rec)
		case model.ImpactLink:
			v.ImpactLinks = append(v.ImpactLinks, rec)
		}
	}
	return v
}

// Len returns the number of partitioned rows
func (v Views) Len() int {
	return len(v.Observations) + len(v.Events) + len(v.ImpactLinks)
}

// SourceURLs returns the distinct non-empty source URLs of all records, in
// first-seen order
func (v Views) SourceURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(p model.Provenance) {
		if p.SourceURL != "" && !seen[p.SourceURL] {
			seen[p.SourceURL] = true
			urls = append(urls, p.SourceURL)
		}
	}
	for _, o := range v.Observations {
		add(o.Provenance)
	}
	for _, e := range v.Events {
		add(e.Provenance)
	}
	for _, l := range v.ImpactLinks {
		add(l.Provenance)
	}
	return urls
}
