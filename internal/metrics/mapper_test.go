package metrics_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mehdiazizian/spot-score-tracker/internal/metrics"
	"github.com/mehdiazizian/spot-score-tracker/internal/scoring"
)

func TestMetrics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Metrics Suite")
}

var _ = Describe("Mapper", func() {
	var (
		runStart time.Time
		mapper   *metrics.Mapper
		owner    scoring.Owner
		req      *scoring.ScoreRequest
	)

	BeforeEach(func() {
		runStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		mapper = metrics.NewMapper(runStart)
		owner = scoring.Owner{Dashboard: "compute", Configuration: "c5"}
		req = &scoring.ScoreRequest{
			Owners:                 []scoring.Owner{owner},
			TargetCapacity:         100,
			TargetCapacityUnitType: "vcpu",
			RegionNames:            []string{"us-east-1"},
			InstanceTypes:          []string{"c5.xlarge"},
		}
	})

	It("should map a regional score to a single datum", func() {
		data, unscored := mapper.Map(owner, req, []scoring.Score{{Region: "us-east-1", Score: 7}})

		Expect(unscored).To(BeEmpty())
		Expect(data).To(HaveLen(1))
		Expect(data[0].Name).To(Equal("c5-us-east-1-vcpu-100"))
		Expect(data[0].Value).To(Equal(7.0))
		Expect(data[0].Unit).To(Equal(metrics.UnitNone))
		Expect(data[0].Timestamp).To(Equal(runStart))
		Expect(data[0].Dimensions).To(Equal(map[string]string{
			metrics.DimensionDashboard:     "compute",
			metrics.DimensionConfiguration: "c5",
			metrics.DimensionRegion:        "us-east-1",
		}))
	})

	It("should add the zone to single availability zone scores", func() {
		req.SingleAvailabilityZone = true
		data, _ := mapper.Map(owner, req, []scoring.Score{
			{Region: "us-east-1", AvailabilityZoneID: "use1-az2", Score: 5},
			{Region: "us-east-1", AvailabilityZoneID: "use1-az1", Score: 9},
		})

		Expect(data).To(HaveLen(2))
		Expect(data[0].Name).To(Equal("c5-us-east-1-vcpu-100-use1-az1"))
		Expect(data[0].Dimensions).To(HaveKeyWithValue(metrics.DimensionAvailabilityZoneID, "use1-az1"))
		Expect(data[1].Dimensions).To(HaveKeyWithValue(metrics.DimensionAvailabilityZoneID, "use1-az2"))
	})

	It("should be idempotent", func() {
		scores := []scoring.Score{
			{Region: "us-west-2", Score: 2},
			{Region: "us-east-1", Score: 7},
		}
		req.RegionNames = []string{"us-east-1", "us-west-2"}

		first, _ := mapper.Map(owner, req, scores)
		second, _ := mapper.Map(owner, req, scores)
		Expect(second).To(Equal(first))
	})

	It("should report requested regions without a score", func() {
		req.RegionNames = []string{"us-east-1", "us-west-2", "eu-west-1"}
		data, unscored := mapper.Map(owner, req, []scoring.Score{
			{Region: "us-east-1", Score: 7},
			{Region: "us-west-2", Score: 12},
		})

		Expect(data).To(HaveLen(1))
		Expect(unscored).To(HaveLen(2))
		Expect(unscored[0].Region).To(Equal("us-west-2"))
		Expect(unscored[0].Reason).To(ContainSubstring("outside of range"))
		Expect(unscored[1].Region).To(Equal("eu-west-1"))
		Expect(unscored[1].Owner).To(Equal(owner))
	})

	It("should drop duplicate series", func() {
		data, _ := mapper.Map(owner, req, []scoring.Score{
			{Region: "us-east-1", Score: 7},
			{Region: "us-east-1", Score: 7},
		})
		Expect(data).To(HaveLen(1))
	})
})

var _ = Describe("Datum", func() {
	It("should build the same key whatever the dimension order", func() {
		a := metrics.Datum{Name: "m", Dimensions: map[string]string{"b": "2", "a": "1"}}
		b := metrics.Datum{Name: "m", Dimensions: map[string]string{"a": "1", "b": "2"}}
		Expect(a.Key()).To(Equal(b.Key()))
		Expect(a.Key()).To(Equal("m|a=1|b=2"))
	})
})

var _ = Describe("Recorder", func() {
	It("should count runs, configurations and data points", func() {
		reg := prometheus.NewRegistry()
		recorder := metrics.NewRecorder(reg)

		recorder.ObserveRun("Done", 3*time.Second)
		recorder.AddConfigurations("succeeded", 8)
		recorder.AddConfigurations("skipped", 3)
		recorder.AddConfigurations("failed", 0)
		recorder.AddDataPoints("published", 12)

		count, err := testutil.GatherAndCount(reg, "sps_tracker_runs_total")
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(1))

		count, err = testutil.GatherAndCount(reg, "sps_tracker_configurations_total")
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(2))
	})

	It("should be a no-op when nil", func() {
		var recorder *metrics.Recorder
		Expect(func() {
			recorder.ObserveRun("Done", time.Second)
			recorder.AddConfigurations("succeeded", 1)
			recorder.AddDataPoints("published", 1)
		}).ToNot(Panic())
	})
})
