// Package config loads and validates the dashboard configuration document
// that drives a scoring run. Documents are YAML or JSON, either a bare list
// of dashboards or an object with a dashboards key, and may live in a local
// file, a ConfigMap, an S3 object or inline in a ScoreTracker resource.
package config
