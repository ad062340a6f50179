// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package telemetry

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MetricsFilter decides which metric families are exposed
type MetricsFilter struct {
	IncludePrefixes []string
	ExcludePrefixes []string
}

// NewMetricsFilter creates a filter that exposes everything
func NewMetricsFilter() *MetricsFilter {
	return &MetricsFilter{}
}

// AddIncludePrefix restricts exposure to families with one of the added prefixes
func (f *MetricsFilter) AddIncludePrefix(prefix string) {
	f.IncludePrefixes = append(f.IncludePrefixes, prefix)
}

// AddExcludePrefix hides families with the given prefix
func (f *MetricsFilter) AddExcludePrefix(prefix string) {
	f.ExcludePrefixes = append(f.ExcludePrefixes, prefix)
}

// ShouldInclude reports whether a metric family is exposed. Excludes win.
func (f *MetricsFilter) ShouldInclude(name string) bool {
	for _, prefix := range f.ExcludePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	if len(f.IncludePrefixes) == 0 {
		return true
	}
	for _, prefix := range f.IncludePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Filter wraps a gatherer so that only accepted families are returned
func (f *MetricsFilter) Filter(g prometheus.Gatherer) prometheus.Gatherer {
	return &filteredGatherer{gatherer: g, filter: f}
}

type filteredGatherer struct {
	gatherer prometheus.Gatherer
	filter   *MetricsFilter
}

// Gather implements prometheus.Gatherer
func (fg *filteredGatherer) Gather() ([]*dto.MetricFamily, error) {
	families, err := fg.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	filtered := make([]*dto.MetricFamily, 0, len(families))
	for _, family := range families {
		if family.GetName() == "" || len(family.GetMetric()) == 0 {
			continue
		}
		if fg.filter.ShouldInclude(family.GetName()) {
			filtered = append(filtered, family)
		}
	}
	return filtered, nil
}

// CreateFilterFromConfig builds the filter for the metrics endpoint
func CreateFilterFromConfig(config *Config) *MetricsFilter {
	f := NewMetricsFilter()
	for _, prefix := range config.PrometheusExcludePrefixes {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			f.AddExcludePrefix(prefix)
		}
	}
	return f
}
