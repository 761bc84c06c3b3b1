package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/mehdiazizian/spot-score-tracker/internal/scoring"
)

// Dimension names attached to every data point
const (
	DimensionDashboard          = "Dashboard"
	DimensionConfiguration      = "ConfigurationName"
	DimensionRegion             = "Region"
	DimensionAvailabilityZoneID = "AvailabilityZoneId"
)

// UnitNone is the unit of a dimensionless score
const UnitNone = "None"

// Datum is one timestamped, dimensioned observation
type Datum struct {
	Name       string
	Value      float64
	Unit       string
	Timestamp  time.Time
	Dimensions map[string]string
}

// Key identifies the series of a datum, independent of map ordering
func (d Datum) Key() string {
	keys := make([]string, 0, len(d.Dimensions))
	for k := range d.Dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := d.Name
	for _, k := range keys {
		key += fmt.Sprintf("|%s=%s", k, d.Dimensions[k])
	}
	return key
}

// Unscored is a requested region (or zone) for which no usable score came back
type Unscored struct {
	Owner  scoring.Owner
	Region string
	Reason string
}

// Mapper converts scores into data points stamped with the run start time
type Mapper struct {
	Timestamp time.Time
}

// NewMapper creates a mapper for a run started at ts
func NewMapper(ts time.Time) *Mapper {
	return &Mapper{Timestamp: ts}
}

// Map returns one datum per scored region, or per (region, zone) for single
// zone requests, sorted by series key. Requested regions without a valid
// score are returned as unscored instead of failing the configuration.
func (m *Mapper) Map(owner scoring.Owner, req *scoring.ScoreRequest, scores []scoring.Score) ([]Datum, []Unscored) {
	seen := make(map[string]struct{}, len(scores))
	scoredRegions := make(map[string]struct{}, len(req.RegionNames))
	reported := make(map[string]struct{})
	var data []Datum
	var unscored []Unscored

	for _, s := range scores {
		if s.Score < scoring.MinScore || s.Score > scoring.MaxScore {
			unscored = append(unscored, Unscored{
				Owner:  owner,
				Region: s.Region,
				Reason: fmt.Sprintf("score %d outside of range %d-%d", s.Score, scoring.MinScore, scoring.MaxScore),
			})
			reported[s.Region] = struct{}{}
			continue
		}

		d := Datum{
			Name:      MetricName(owner.Configuration, req, s),
			Value:     float64(s.Score),
			Unit:      UnitNone,
			Timestamp: m.Timestamp,
			Dimensions: map[string]string{
				DimensionDashboard:     owner.Dashboard,
				DimensionConfiguration: owner.Configuration,
				DimensionRegion:        s.Region,
			},
		}
		if s.AvailabilityZoneID != "" {
			d.Dimensions[DimensionAvailabilityZoneID] = s.AvailabilityZoneID
		}

		key := d.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		scoredRegions[s.Region] = struct{}{}
		data = append(data, d)
	}

	for _, region := range req.RegionNames {
		_, scored := scoredRegions[region]
		_, known := reported[region]
		if !scored && !known {
			unscored = append(unscored, Unscored{Owner: owner, Region: region, Reason: "no score returned"})
		}
	}

	sort.Slice(data, func(i, j int) bool { return data[i].Key() < data[j].Key() })
	return data, unscored
}

// MetricName builds <configuration>-<region>-<unit>-<capacity>[-<zone>]
func MetricName(configuration string, req *scoring.ScoreRequest, s scoring.Score) string {
	name := fmt.Sprintf("%s-%s-%s-%d", configuration, s.Region, req.TargetCapacityUnitType, req.TargetCapacity)
	if s.AvailabilityZoneID != "" {
		name = fmt.Sprintf("%s-%s", name, s.AvailabilityZoneID)
	}
	return name
}
