package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/internal/repository"
	appErrors "github.com/volchd/projects-api/pkg/errors"
)

// CreateProject writes the project item, refusing to overwrite an existing
// partition. The GSI attributes are set here so the project shows up in the
// owner's listing.
func (s *Store) CreateProject(ctx context.Context, project domain.Project) error {
	item, err := attributevalue.MarshalMap(newProjectItem(project))
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal project item")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return repository.NewConflict("project", project.ID, "id already exists")
		}
		s.logStoreError("CreateProject", err, zap.String("project_id", project.ID))
		return appErrors.Wrap(err, "failed to put project item")
	}
	return nil
}

// FindProjectByID reads the project item at its exact key. Absence is
// reported as repository.ErrNotFound; ownership is the caller's concern.
func (s *Store) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: repository.ProjectPartitionKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: repository.ProjectSortKey()},
		},
	})
	if err != nil {
		s.logStoreError("FindProjectByID", err, zap.String("project_id", projectID))
		return nil, appErrors.Wrap(err, "failed to get project item")
	}
	if result.Item == nil {
		return nil, repository.NewNotFound("project", projectID)
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal project item")
	}
	project := item.toDomain()
	return &project, nil
}

// ListProjectsByUser queries the per-user GSI, draining all pages.
func (s *Store) ListProjectsByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(repository.UserIndexPartitionKey(userID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build user index query")
	}

	projects := []domain.Project{}
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.config.TableName),
			IndexName:                 aws.String(s.config.IndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			s.logStoreError("ListProjectsByUser", err, zap.String("user_id", userID))
			return nil, appErrors.Wrap(err, "failed to query user index")
		}

		for _, raw := range result.Items {
			var item projectItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("skipping unreadable project item", zap.Error(err), zap.String("user_id", userID))
				continue
			}
			projects = append(projects, item.toDomain())
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return projects, nil
}

// UpdateProject applies a partial update in a single conditional UpdateItem
// and returns the merged item. A failed condition (missing item or foreign
// owner) comes back as repository.ErrNotFound.
func (s *Store) UpdateProject(ctx context.Context, projectID, userID string, u repository.ProjectUpdate) (*domain.Project, error) {
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
	if u.Statuses != nil {
		update = update.Set(expression.Name("Statuses"), expression.Value(u.Statuses))
	}
	if u.Labels != nil {
		update = update.Set(expression.Name("Labels"), expression.Value(u.Labels))
	}

	condition := expression.Name("PK").AttributeExists().
		And(expression.Name("UserID").Equal(expression.Value(userID)))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build project update expression")
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: repository.ProjectPartitionKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: repository.ProjectSortKey()},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if conditionFailed(err) {
			return nil, repository.NewNotFoundWithUser("project", projectID, userID)
		}
		s.logStoreError("UpdateProject", err, zap.String("project_id", projectID))
		return nil, appErrors.Wrap(err, "failed to update project item")
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal updated project")
	}
	project := item.toDomain()
	return &project, nil
}

// DeleteProject removes the project item itself. Task cleanup is a separate
// cascade; callers run it first so a crash between the two leaves orphaned
// tasks rather than a project whose tasks are gone.
func (s *Store) DeleteProject(ctx context.Context, projectID, userID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: repository.ProjectPartitionKey(projectID)},
			"SK": &types.AttributeValueMemberS{Value: repository.ProjectSortKey()},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND UserID = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return repository.NewNotFoundWithUser("project", projectID, userID)
		}
		s.logStoreError("DeleteProject", err, zap.String("project_id", projectID))
		return appErrors.Wrap(err, "failed to delete project item")
	}
	return nil
}
