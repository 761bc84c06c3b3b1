package config

import (
	"errors"
	"fmt"

	"sigs.k8s.io/yaml"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
)

// FatalLoadError means the document is missing or structurally invalid.
// A run that hits it stops before any API call is made.
type FatalLoadError struct {
	Source string
	Err    error
}

func (e *FatalLoadError) Error() string {
	return fmt.Sprintf("failed to load configuration from %s: %v", e.Source, e.Err)
}

func (e *FatalLoadError) Unwrap() error {
	return e.Err
}

func fatal(source string, err error) error {
	var fle *FatalLoadError
	if errors.As(err, &fle) {
		return err
	}
	return &FatalLoadError{Source: source, Err: err}
}

// Document is the in-memory configuration document
type Document struct {
	Dashboards []spotv1alpha1.Dashboard `json:"dashboards"`
}

// Parse decodes a document and validates its structure
func Parse(source string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fatal(source, errors.New("document is empty"))
	}

	doc := &Document{}
	var dashboards []spotv1alpha1.Dashboard
	if err := yaml.Unmarshal(data, &dashboards); err == nil {
		doc.Dashboards = dashboards
	} else if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fatal(source, fmt.Errorf("failed to decode document: %w", err))
	}

	if err := doc.Validate(); err != nil {
		return nil, fatal(source, err)
	}
	doc.ApplyDefaults()
	return doc, nil
}

// Validate checks the document structure. Individual scoring configurations
// are checked later, one at a time, by the planner.
func (d *Document) Validate() error {
	if d == nil || len(d.Dashboards) == 0 {
		return errors.New("document does not declare any dashboard")
	}

	seen := make(map[string]struct{}, len(d.Dashboards))
	for i, dashboard := range d.Dashboards {
		if dashboard.Name == "" {
			return fmt.Errorf("dashboard #%d has no name", i)
		}
		if _, ok := seen[dashboard.Name]; ok {
			return fmt.Errorf("dashboard %q is declared more than once", dashboard.Name)
		}
		seen[dashboard.Name] = struct{}{}

		if dashboard.DefaultWidgetWidth < 0 || dashboard.DefaultWidgetWidth > spotv1alpha1.MaxWidgetWidth {
			return fmt.Errorf("dashboard %q: DefaultWidgetWidth must be between 1 and %d, got %d",
				dashboard.Name, spotv1alpha1.MaxWidgetWidth, dashboard.DefaultWidgetWidth)
		}
		if dashboard.DefaultWidgetHeight < 0 {
			return fmt.Errorf("dashboard %q: DefaultWidgetHeight must be positive, got %d",
				dashboard.Name, dashboard.DefaultWidgetHeight)
		}
	}
	return nil
}

// ApplyDefaults fills unset layout defaults
func (d *Document) ApplyDefaults() {
	for i := range d.Dashboards {
		if d.Dashboards[i].DefaultWidgetWidth == 0 {
			d.Dashboards[i].DefaultWidgetWidth = spotv1alpha1.DefaultWidgetWidth
		}
		if d.Dashboards[i].DefaultWidgetHeight == 0 {
			d.Dashboards[i].DefaultWidgetHeight = spotv1alpha1.DefaultWidgetHeight
		}
	}
}

// ConfigurationCount returns the number of scoring configurations declared
func (d *Document) ConfigurationCount() int {
	n := 0
	for _, dashboard := range d.Dashboards {
		n += len(dashboard.Configurations)
	}
	return n
}
