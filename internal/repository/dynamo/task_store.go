package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/internal/repository"
	appErrors "github.com/volchd/projects-api/pkg/errors"
)

// maxBatchWriteSize is the DynamoDB BatchWriteItem limit.
const maxBatchWriteSize = 25

// batchRedrivePasses bounds how often unprocessed batch entries are
// resubmitted before the cascade gives up.
const batchRedrivePasses = 3

// CreateTask writes the task item into its project's partition.
func (s *Store) CreateTask(ctx context.Context, task domain.Task) error {
	item, err := attributevalue.MarshalMap(newTaskItem(task))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal task item")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return repository.NewConflict("task", task.ID, "id already exists")
		}
		s.logStoreError("CreateTask", err, zap.String("project_id", task.ProjectID), zap.String("task_id", task.ID))
		return appErrors.Wrap(err, "failed to put task item")
	}
	return nil
}

// FindTask reads the task at its exact composite key.
func (s *Store) FindTask(ctx context.Context, projectID, taskID string) (*domain.Task, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: repository.ProjectPartitionKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: repository.TaskSortKey(taskID)},
		},
	})
	if err != nil {
		s.logStoreError("FindTask", err, zap.String("project_id", projectID), zap.String("task_id", taskID))
		return nil, appErrors.Wrap(err, "failed to get task item")
	}
	if result.Item == nil {
		return nil, repository.NewNotFound("task", taskID)
	}

	var item taskItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal task item")
	}
	task := item.toDomain()
	return &task, nil
}

// ListTasksByProject range-queries the project's partition for task sort
// keys, draining all pages.
func (s *Store) ListTasksByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(repository.ProjectPartitionKey(projectID))).
		And(expression.Key("SK").BeginsWith(repository.TaskSortKeyPrefix()))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build task list query")
	}

	tasks := []domain.Task{}
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.config.TableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			s.logStoreError("ListTasksByProject", err, zap.String("project_id", projectID))
			return nil, appErrors.Wrap(err, "failed to query tasks")
		}

		for _, raw := range result.Items {
			var item taskItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("skipping unreadable task item", zap.Error(err), zap.String("project_id", projectID))
				continue
			}
			tasks = append(tasks, item.toDomain())
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return tasks, nil
}

// UpdateTask applies a partial update in one conditional UpdateItem and
// returns the merged item. The condition requires both existence and the
// stored owner matching userID, so a foreign task is indistinguishable from
// a missing one.
func (s *Store) UpdateTask(ctx context.Context, projectID, taskID, userID string, u repository.TaskUpdate) (*domain.Task, error) {
	update := expression.Set(expression.Name("UpdatedAt"), expression.Value(formatTime(u.UpdatedAt)))
	if u.Name != nil {
		update = update.Set(expression.Name("Name"), expression.Value(*u.Name))
	}
	switch {
	case u.ClearDescription:
		update = update.Remove(expression.Name("Description"))
	case u.Description != nil:
		update = update.Set(expression.Name("Description"), expression.Value(*u.Description))
	}
	if u.Status != nil {
		update = update.Set(expression.Name("Status"), expression.Value(*u.Status))
	}
	if u.Priority != nil {
		update = update.Set(expression.Name("Priority"), expression.Value(string(*u.Priority)))
	}
	switch {
	case u.ClearStartDate:
		update = update.Remove(expression.Name("StartDate"))
	case u.StartDate != nil:
		update = update.Set(expression.Name("StartDate"), expression.Value(formatTime(*u.StartDate)))
	}
	switch {
	case u.ClearDueDate:
		update = update.Remove(expression.Name("DueDate"))
	case u.DueDate != nil:
		update = update.Set(expression.Name("DueDate"), expression.Value(formatTime(*u.DueDate)))
	}
	if u.Labels != nil {
		update = update.Set(expression.Name("Labels"), expression.Value(u.Labels))
	}

	condition := expression.Name("PK").AttributeExists().
		And(expression.Name("UserID").Equal(expression.Value(userID)))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build task update expression")
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: repository.ProjectPartitionKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: repository.TaskSortKey(taskID)},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if conditionFailed(err) {
			return nil, repository.NewNotFoundWithUser("task", taskID, userID)
		}
		s.logStoreError("UpdateTask", err, zap.String("project_id", projectID), zap.String("task_id", taskID))
		return nil, appErrors.Wrap(err, "failed to update task item")
	}

	var item taskItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal updated task")
	}
	task := item.toDomain()
	return &task, nil
}

// DeleteTask removes one task under the existence-plus-ownership condition.
func (s *Store) DeleteTask(ctx context.Context, projectID, taskID, userID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: repository.ProjectPartitionKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: repository.TaskSortKey(taskID)},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND UserID = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return repository.NewNotFoundWithUser("task", taskID, userID)
		}
		s.logStoreError("DeleteTask", err, zap.String("project_id", projectID), zap.String("task_id", taskID))
		return appErrors.Wrap(err, "failed to delete task item")
	}
	return nil
}

// DeleteTasksByProject queries the partition for task sort keys and removes
// them in concurrent 25-item batches, waiting for every batch before
// returning. Per-task deletes are unconditional; the caller has already
// verified the parent project. The whole cascade runs under one trace
// subsegment since it is the only store operation spanning many calls.
func (s *Store) DeleteTasksByProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.tracer.Capture(ctx, "DeleteTasksByProject", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "project_id", projectID)
		var err error
		count, err = s.deleteProjectTasks(ctx, projectID)
		return err
	})
	return count, err
}

func (s *Store) deleteProjectTasks(ctx context.Context, projectID string) (int, error) {
	keys, err := s.taskKeys(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(keys); start += maxBatchWriteSize {
		end := start + maxBatchWriteSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]
		g.Go(func() error {
			return s.batchDelete(gctx, chunk)
		})
	}
	if err := g.Wait(); err != nil {
		s.logStoreError("DeleteTasksByProject", err, zap.String("project_id", projectID))
		return 0, appErrors.Wrap(err, "failed to delete project tasks")
	}

	s.logger.Info("cascade removed tasks",
		zap.String("project_id", projectID),
		zap.Int("count", len(keys)),
	)
	return len(keys), nil
}

// taskKeys collects the PK/SK pairs of every task in the partition. Only
// the keys are fetched; the items' bodies are irrelevant to deletion.
func (s *Store) taskKeys(ctx context.Context, projectID string) ([]map[string]types.AttributeValue, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(repository.ProjectPartitionKey(projectID))).
		And(expression.Key("SK").BeginsWith(repository.TaskSortKeyPrefix()))
	projection := expression.NamesList(expression.Name("PK"), expression.Name("SK"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).WithProjection(projection).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build task key query")
	}

	var keys []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.config.TableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, "failed to query task keys")
		}
		for _, item := range result.Items {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": item["PK"],
				"SK": item["SK"],
			})
		}
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return keys, nil
}

// batchDelete submits one BatchWriteItem for the given keys, resubmitting
// unprocessed entries. Partial acceptance is normal under load and is not a
// retry of a failed call; genuinely failed calls surface immediately.
func (s *Store) batchDelete(ctx context.Context, keys []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}

	for pass := 0; pass < batchRedrivePasses; pass++ {
		result, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.config.TableName: requests},
		})
		if err != nil {
			return err
		}
		remaining := result.UnprocessedItems[s.config.TableName]
		if len(remaining) == 0 {
			return nil
		}
		requests = remaining
	}
	return fmt.Errorf("batch delete left %d unprocessed entries", len(requests))
}
