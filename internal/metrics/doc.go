// Package metrics converts spot placement scores into metric data points and
// records prometheus metrics about the scoring runs themselves.
package metrics
