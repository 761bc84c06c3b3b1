package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"sigs.k8s.io/controller-runtime/pkg/log"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
)

// quotaErrorCodes signal the account wide configuration ceiling
var quotaErrorCodes = map[string]struct{}{
	"MaxConfigLimitExceeded": {},
}

// throttlingErrorCodes are retried even though they are client faults
var throttlingErrorCodes = map[string]struct{}{
	"RequestLimitExceeded": {},
	"Throttling":           {},
	"ThrottlingException":  {},
	"RequestThrottled":     {},
	"ServiceUnavailable":   {},
	"Unavailable":          {},
	"InternalError":        {},
	"InternalFailure":      {},
}

// EC2API is the subset of the EC2 client used by EC2Client
type EC2API interface {
	GetSpotPlacementScores(ctx context.Context, params *ec2.GetSpotPlacementScoresInput, optFns ...func(*ec2.Options)) (*ec2.GetSpotPlacementScoresOutput, error)
}

// EC2Client implements Client on top of ec2:GetSpotPlacementScores
type EC2Client struct {
	API      EC2API
	PageSize int32
}

// NewEC2Client creates a client with SDK retries disabled, the executor owns
// the retry policy
func NewEC2Client(cfg aws.Config) *EC2Client {
	api := ec2.NewFromConfig(cfg, func(o *ec2.Options) {
		o.RetryMaxAttempts = 1
	})
	return &EC2Client{API: api, PageSize: 100}
}

// GetScores submits one request and follows pagination
func (c *EC2Client) GetScores(ctx context.Context, req *ScoreRequest) ([]Score, error) {
	logger := log.FromContext(ctx).WithName("ec2-scoring")

	input := ToInput(req)
	if c.PageSize > 0 {
		input.MaxResults = aws.Int32(c.PageSize)
	}

	var scores []Score
	for {
		out, err := c.API.GetSpotPlacementScores(ctx, input)
		if err != nil {
			return nil, classifyAPIError(err)
		}

		for _, s := range out.SpotPlacementScores {
			if s.Score == nil || s.Region == nil {
				continue
			}
			scores = append(scores, Score{
				Region:             aws.ToString(s.Region),
				AvailabilityZoneID: aws.ToString(s.AvailabilityZoneId),
				Score:              aws.ToInt32(s.Score),
			})
		}

		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}

	logger.V(1).Info("Got spot placement scores", "regions", req.RegionNames, "count", len(scores))
	return scores, nil
}

// classifyAPIError wraps an SDK error with the matching sentinel
func classifyAPIError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}

	code := apiErr.ErrorCode()
	if _, ok := quotaErrorCodes[code]; ok {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}
	if _, ok := throttlingErrorCodes[code]; ok {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	if apiErr.ErrorFault() == smithy.FaultServer {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

// ToInput converts a request to the SDK input
func ToInput(req *ScoreRequest) *ec2.GetSpotPlacementScoresInput {
	input := &ec2.GetSpotPlacementScoresInput{
		TargetCapacity:         aws.Int32(req.TargetCapacity),
		TargetCapacityUnitType: ec2types.TargetCapacityUnitType(req.TargetCapacityUnitType),
		SingleAvailabilityZone: aws.Bool(req.SingleAvailabilityZone),
		RegionNames:            append([]string(nil), req.RegionNames...),
	}
	if len(req.InstanceTypes) > 0 {
		input.InstanceTypes = append([]string(nil), req.InstanceTypes...)
	}
	if req.InstanceRequirementsWithMetadata != nil {
		input.InstanceRequirementsWithMetadata = toRequirementsWithMetadata(req.InstanceRequirementsWithMetadata)
	}
	return input
}

func toRequirementsWithMetadata(in *spotv1alpha1.InstanceRequirementsWithMetadata) *ec2types.InstanceRequirementsWithMetadataRequest {
	out := &ec2types.InstanceRequirementsWithMetadataRequest{
		ArchitectureTypes:   enums[ec2types.ArchitectureType](in.ArchitectureTypes),
		VirtualizationTypes: enums[ec2types.VirtualizationType](in.VirtualizationTypes),
	}

	r := in.InstanceRequirements
	if r == nil {
		return out
	}

	req := &ec2types.InstanceRequirementsRequest{
		AcceleratorTypes:                          enums[ec2types.AcceleratorType](r.AcceleratorTypes),
		AcceleratorManufacturers:                  enums[ec2types.AcceleratorManufacturer](r.AcceleratorManufacturers),
		CpuManufacturers:                          enums[ec2types.CpuManufacturer](r.CpuManufacturers),
		InstanceGenerations:                       enums[ec2types.InstanceGeneration](r.InstanceGenerations),
		AllowedInstanceTypes:                      r.AllowedInstanceTypes,
		ExcludedInstanceTypes:                     r.ExcludedInstanceTypes,
		SpotMaxPricePercentageOverLowestPrice:     r.SpotMaxPricePercentageOverLowestPrice,
		OnDemandMaxPricePercentageOverLowestPrice: r.OnDemandMaxPricePercentageOverLowestPrice,
		BareMetal:                                 ec2types.BareMetal(r.BareMetal),
		BurstablePerformance:                      ec2types.BurstablePerformance(r.BurstablePerformance),
		LocalStorage:                              ec2types.LocalStorage(r.LocalStorage),
		RequireHibernateSupport:                   r.RequireHibernateSupport,
	}
	if r.VCpuCount != nil {
		req.VCpuCount = &ec2types.VCpuCountRangeRequest{Min: r.VCpuCount.Min, Max: r.VCpuCount.Max}
	}
	if r.MemoryMiB != nil {
		req.MemoryMiB = &ec2types.MemoryMiBRequest{Min: r.MemoryMiB.Min, Max: r.MemoryMiB.Max}
	}
	if r.MemoryGiBPerVCpu != nil {
		req.MemoryGiBPerVCpu = &ec2types.MemoryGiBPerVCpuRequest{Min: r.MemoryGiBPerVCpu.Min, Max: r.MemoryGiBPerVCpu.Max}
	}
	if r.AcceleratorCount != nil {
		req.AcceleratorCount = &ec2types.AcceleratorCountRequest{Min: r.AcceleratorCount.Min, Max: r.AcceleratorCount.Max}
	}
	if r.AcceleratorTotalMemoryMiB != nil {
		req.AcceleratorTotalMemoryMiB = &ec2types.AcceleratorTotalMemoryMiBRequest{
			Min: r.AcceleratorTotalMemoryMiB.Min,
			Max: r.AcceleratorTotalMemoryMiB.Max,
		}
	}
	out.InstanceRequirements = req
	return out
}

func enums[T ~string](in []string) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}
