package telcolcaexporter

import (
	"context"
	"fmt"
	"strings"
)

// Collector computes emission figures and streams them as metrics. It must
// close the metrics channel when done.
type Collector interface {
	Collect(ctx context.Context, metrics chan Metric) error
}

// InvalidParameterErr reports an equipment or scenario value lying outside
// its domain. Validation happens before any computation starts.
type InvalidParameterErr struct {
	Parameter string
	Value     float64
	Err       error
}

func (invalidErr *InvalidParameterErr) Error() string {
	return fmt.Sprintf("invalid parameter %s=%g: %s", invalidErr.Parameter, invalidErr.Value, invalidErr.Err.Error())
}

func (invalidErr *InvalidParameterErr) Unwrap() error {
	return invalidErr.Err
}

// Metric holds the name and value of a measurement in addition to its labels.
type Metric struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Clone return a deep copy of a metric.
func (m Metric) Clone() Metric {
	copiedLabel := make(map[string]string, len(m.Labels))
	for k, v := range m.Labels {
		copiedLabel[k] = v
	}
	return Metric{
		Name:   m.Name,
		Value:  m.Value,
		Labels: copiedLabel,
	}
}

func (m *Metric) AddLabel(name, value string) *Metric {
	if m.Labels == nil {
		m.Labels = make(map[string]string)
	}
	m.Labels[name] = value
	return m
}

// SanitizeLabels rewrites label names so they only contain characters
// accepted by the exposition format.
func (m Metric) SanitizeLabels() Metric {
	sanitized := m.Clone()
	for name, value := range m.Labels {
		delete(sanitized.Labels, name)
		name = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
				return r
			default:
				return '_'
			}
		}, name)
		sanitized.Labels[name] = value
	}
	return sanitized
}

func MergeLabels(labels ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, l := range labels {
		for k, v := range l {
			if v == "" {
				continue
			}
			result[k] = v
		}
	}
	return result
}
