package dynamo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/domain"
	"github.com/volchd/projects-api/internal/repository"
)

// fakeDynamo records every SDK input and replays canned outputs, so tests
// can assert on the exact keys and conditions the store sends.
type fakeDynamo struct {
	mu sync.Mutex

	getOut *dynamodb.GetItemOutput
	getErr error

	putInputs []*dynamodb.PutItemInput
	putErr    error

	queryInputs []*dynamodb.QueryInput
	queryOuts   []*dynamodb.QueryOutput
	queryErr    error

	updateInputs []*dynamodb.UpdateItemInput
	updateOut    *dynamodb.UpdateItemOutput
	updateErr    error

	deleteInputs []*dynamodb.DeleteItemInput
	deleteErr    error

	batchInputs []*dynamodb.BatchWriteItemInput
	batchOuts   []*dynamodb.BatchWriteItemOutput
	batchErr    error
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut != nil {
		return f.getOut, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putInputs = append(f.putInputs, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryInputs = append(f.queryInputs, in)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.queryOuts) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	out := f.queryOuts[0]
	f.queryOuts = f.queryOuts[1:]
	return out, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateInputs = append(f.updateInputs, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteInputs = append(f.deleteInputs, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchInputs = append(f.batchInputs, in)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	if len(f.batchOuts) == 0 {
		return &dynamodb.BatchWriteItemOutput{}, nil
	}
	out := f.batchOuts[0]
	f.batchOuts = f.batchOuts[1:]
	return out, nil
}

func newTestStore(fake *fakeDynamo) *Store {
	return New(fake, Config{TableName: "tracker", IndexName: "UserIndex"}, zap.NewNop())
}

func stringAttr(t *testing.T, av types.AttributeValue) string {
	t.Helper()
	s, ok := av.(*types.AttributeValueMemberS)
	require.True(t, ok, "expected string attribute")
	return s.Value
}

func attrNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for _, v := range m {
		names = append(names, v)
	}
	return names
}

func testProject() domain.Project {
	desc := "weekly planning"
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Project{
		ID:          "p-1",
		UserID:      "u-1",
		Name:        "Sprint board",
		Description: &desc,
		Statuses:    domain.DefaultStatuses(),
		Labels:      []string{"team"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateProjectWritesKeysAndCondition(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	require.NoError(t, store.CreateProject(context.Background(), testProject()))

	require.Len(t, fake.putInputs, 1)
	in := fake.putInputs[0]
	assert.Equal(t, "tracker", *in.TableName)
	assert.Equal(t, "attribute_not_exists(PK)", *in.ConditionExpression)
	assert.Equal(t, "PROJECT#p-1", stringAttr(t, in.Item["PK"]))
	assert.Equal(t, "PROJECT", stringAttr(t, in.Item["SK"]))
	assert.Equal(t, "USER#u-1", stringAttr(t, in.Item["GSI1PK"]))
	assert.Equal(t, "PROJECT#p-1", stringAttr(t, in.Item["GSI1SK"]))
	assert.Equal(t, "u-1", stringAttr(t, in.Item["UserID"]))
}

func TestCreateProjectTranslatesConditionFailure(t *testing.T) {
	fake := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{}}
	store := newTestStore(fake)

	err := store.CreateProject(context.Background(), testProject())
	assert.True(t, repository.IsConflict(err))
}

func TestFindProjectByID(t *testing.T) {
	t.Run("missing item is not found", func(t *testing.T) {
		store := newTestStore(&fakeDynamo{})
		_, err := store.FindProjectByID(context.Background(), "p-404")
		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("round-trips the stored item", func(t *testing.T) {
		want := testProject()
		raw, err := attributevalue.MarshalMap(newProjectItem(want))
		require.NoError(t, err)

		store := newTestStore(&fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: raw}})
		got, err := store.FindProjectByID(context.Background(), "p-1")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.UserID, got.UserID)
		assert.Equal(t, want.Name, got.Name)
		require.NotNil(t, got.Description)
		assert.Equal(t, *want.Description, *got.Description)
		assert.Equal(t, want.Statuses, got.Statuses)
		assert.Equal(t, want.CreatedAt, got.CreatedAt)
	})
}

func TestListProjectsByUserDrainsPages(t *testing.T) {
	first, err := attributevalue.MarshalMap(newProjectItem(testProject()))
	require.NoError(t, err)
	second := testProject()
	second.ID = "p-2"
	secondRaw, err := attributevalue.MarshalMap(newProjectItem(second))
	require.NoError(t, err)

	fake := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{
		{
			Items:            []map[string]types.AttributeValue{first},
			LastEvaluatedKey: map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "PROJECT#p-1"}},
		},
		{Items: []map[string]types.AttributeValue{secondRaw}},
	}}
	store := newTestStore(fake)

	projects, err := store.ListProjectsByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p-1", projects[0].ID)
	assert.Equal(t, "p-2", projects[1].ID)

	require.Len(t, fake.queryInputs, 2)
	assert.Equal(t, "UserIndex", *fake.queryInputs[0].IndexName)
	assert.NotNil(t, fake.queryInputs[1].ExclusiveStartKey)
}

func TestUpdateProjectBuildsConditionalUpdate(t *testing.T) {
	merged, err := attributevalue.MarshalMap(newProjectItem(testProject()))
	require.NoError(t, err)
	fake := &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{Attributes: merged}}
	store := newTestStore(fake)

	name := "Renamed"
	_, err = store.UpdateProject(context.Background(), "p-1", "u-1", repository.ProjectUpdate{
		Name:             &name,
		ClearDescription: true,
		UpdatedAt:        time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, fake.updateInputs, 1)
	in := fake.updateInputs[0]
	assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
	assert.Equal(t, "PROJECT#p-1", stringAttr(t, in.Key["PK"]))
	assert.Equal(t, "PROJECT", stringAttr(t, in.Key["SK"]))
	assert.Contains(t, *in.UpdateExpression, "SET")
	assert.Contains(t, *in.UpdateExpression, "REMOVE")
	assert.Contains(t, attrNames(in.ExpressionAttributeNames), "Name")
	assert.Contains(t, attrNames(in.ExpressionAttributeNames), "Description")
	assert.Contains(t, attrNames(in.ExpressionAttributeNames), "UpdatedAt")
	assert.Contains(t, attrNames(in.ExpressionAttributeNames), "UserID")
	require.NotNil(t, in.ConditionExpression)
	assert.Contains(t, *in.ConditionExpression, "attribute_exists")
}

func TestUpdateProjectConditionFailureIsNotFound(t *testing.T) {
	fake := &fakeDynamo{updateErr: &types.ConditionalCheckFailedException{}}
	store := newTestStore(fake)

	_, err := store.UpdateProject(context.Background(), "p-1", "intruder", repository.ProjectUpdate{UpdatedAt: time.Now()})
	assert.True(t, repository.IsNotFound(err))
}

func TestDeleteProjectConditionsOnOwnership(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	require.NoError(t, store.DeleteProject(context.Background(), "p-1", "u-1"))

	require.Len(t, fake.deleteInputs, 1)
	in := fake.deleteInputs[0]
	assert.Equal(t, "attribute_exists(PK) AND UserID = :uid", *in.ConditionExpression)
	assert.Equal(t, "u-1", stringAttr(t, in.ExpressionAttributeValues[":uid"]))

	fake.deleteErr = &types.ConditionalCheckFailedException{}
	err := store.DeleteProject(context.Background(), "p-1", "u-1")
	assert.True(t, repository.IsNotFound(err))
}

func TestFindTask(t *testing.T) {
	t.Run("missing task is not found", func(t *testing.T) {
		store := newTestStore(&fakeDynamo{})
		_, err := store.FindTask(context.Background(), "p-1", "t-404")
		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("maps the stored item", func(t *testing.T) {
		start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		task := domain.Task{
			ID:        "t-1",
			ProjectID: "p-1",
			UserID:    "u-1",
			Name:      "Write report",
			Status:    "TODO",
			Priority:  domain.PriorityHigh,
			StartDate: &start,
			Labels:    []string{"writing"},
			CreatedAt: start,
			UpdatedAt: start,
		}
		raw, err := attributevalue.MarshalMap(newTaskItem(task))
		require.NoError(t, err)

		store := newTestStore(&fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: raw}})
		got, err := store.FindTask(context.Background(), "p-1", "t-1")
		require.NoError(t, err)
		assert.Equal(t, domain.PriorityHigh, got.Priority)
		require.NotNil(t, got.StartDate)
		assert.Equal(t, start, *got.StartDate)
		assert.Nil(t, got.DueDate)
	})
}

func TestListTasksQueriesByPrefix(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	tasks, err := store.ListTasksByProject(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.Len(t, fake.queryInputs, 1)
	in := fake.queryInputs[0]
	assert.Nil(t, in.IndexName, "task listing reads the base table")
	assert.Contains(t, *in.KeyConditionExpression, "begins_with")
}

func TestUpdateTaskConditionFailureIsNotFound(t *testing.T) {
	fake := &fakeDynamo{updateErr: &types.ConditionalCheckFailedException{}}
	store := newTestStore(fake)

	status := "COMPLETE"
	_, err := store.UpdateTask(context.Background(), "p-1", "t-1", "u-1", repository.TaskUpdate{
		Status:    &status,
		UpdatedAt: time.Now(),
	})
	assert.True(t, repository.IsNotFound(err))
}

func TestDeleteTasksByProject(t *testing.T) {
	taskKey := func(id string) map[string]types.AttributeValue {
		return map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "PROJECT#p-1"},
			"SK": &types.AttributeValueMemberS{Value: repository.TaskSortKey(id)},
		}
	}

	t.Run("splits into batches of 25", func(t *testing.T) {
		items := make([]map[string]types.AttributeValue, 0, 30)
		for i := 0; i < 30; i++ {
			items = append(items, taskKey(string(rune('a'+i%26))+string(rune('0'+i/26))))
		}
		fake := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{{Items: items}}}
		store := newTestStore(fake)

		count, err := store.DeleteTasksByProject(context.Background(), "p-1")
		require.NoError(t, err)
		assert.Equal(t, 30, count)
		require.Len(t, fake.batchInputs, 2)

		total := 0
		for _, in := range fake.batchInputs {
			total += len(in.RequestItems["tracker"])
		}
		assert.Equal(t, 30, total)
	})

	t.Run("resubmits unprocessed entries", func(t *testing.T) {
		fake := &fakeDynamo{
			queryOuts: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{taskKey("t-1"), taskKey("t-2")}}},
			batchOuts: []*dynamodb.BatchWriteItemOutput{
				{UnprocessedItems: map[string][]types.WriteRequest{
					"tracker": {{DeleteRequest: &types.DeleteRequest{Key: taskKey("t-2")}}},
				}},
				{},
			},
		}
		store := newTestStore(fake)

		count, err := store.DeleteTasksByProject(context.Background(), "p-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, fake.batchInputs, 2)
		assert.Len(t, fake.batchInputs[1].RequestItems["tracker"], 1)
	})

	t.Run("nothing to delete", func(t *testing.T) {
		fake := &fakeDynamo{}
		store := newTestStore(fake)

		count, err := store.DeleteTasksByProject(context.Background(), "p-1")
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, fake.batchInputs)
	})
}
