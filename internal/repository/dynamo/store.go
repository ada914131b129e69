package dynamo

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/repository"
	"github.com/volchd/projects-api/pkg/observability"
)

// Config identifies the table and the per-user GSI the store operates on.
type Config struct {
	TableName string
	IndexName string
}

// Store implements repository.Repository on DynamoDB.
type Store struct {
	client DynamoAPI
	config Config
	logger *zap.Logger
	tracer *observability.Tracer
}

// New creates a Store. The logger is used for storage-level diagnostics
// only; client-facing messages are composed at the handler layer.
func New(client DynamoAPI, config Config, logger *zap.Logger) *Store {
	return &Store{client: client, config: config, logger: logger}
}

// WithTracer makes the store record X-Ray subsegments around its fan-out
// operations. A nil tracer leaves the store untraced.
func (s *Store) WithTracer(tracer *observability.Tracer) *Store {
	s.tracer = tracer
	return s
}

var _ repository.Repository = (*Store)(nil)

// conditionFailed reports whether err is a rejected conditional write, the
// signal that an item is absent (or owned by someone else).
func conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// isThrottled reports whether err is DynamoDB pushing back on capacity.
// Such errors are logged at warn so capacity issues stand out from bugs.
func isThrottled(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
		return true
	}
	return false
}

func (s *Store) logStoreError(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if isThrottled(err) {
		s.logger.Warn("dynamodb throttled", append(fields, zap.String("operation", op))...)
		return
	}
	s.logger.Error("dynamodb call failed", append(fields, zap.String("operation", op))...)
}
