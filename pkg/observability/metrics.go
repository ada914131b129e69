// Package observability carries the operational instruments: CloudWatch
// metrics and X-Ray tracing. Both are safe to leave unconfigured — a nil
// client or a disabled tracer turns every call into a no-op, so local runs
// need no AWS plumbing.
package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics emits request metrics to CloudWatch.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a metrics emitter. A nil client disables emission.
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{namespace: namespace, client: client, logger: logger}
}

// RecordRequest emits a count and a latency datum for one handled request,
// dimensioned by route pattern, method, and status code. Emission failures
// are logged and swallowed; metrics never fail a request.
func (m *Metrics) RecordRequest(ctx context.Context, route, method string, statusCode int, duration time.Duration) {
	if m == nil || m.client == nil {
		return
	}

	dimensions := []types.Dimension{
		{Name: aws.String("Route"), Value: aws.String(route)},
		{Name: aws.String("Method"), Value: aws.String(method)},
		{Name: aws.String("StatusCode"), Value: aws.String(strconv.Itoa(statusCode))},
	}
	now := time.Now()

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("RequestCount"),
			Dimensions: dimensions,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
		{
			MetricName: aws.String("RequestLatency"),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(now),
		},
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: metricData,
	})
	if err != nil && m.logger != nil {
		m.logger.Warn("failed to send metrics", zap.Error(err))
	}
}
