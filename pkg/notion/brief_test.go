package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *MockClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *MockClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

// stubNoExisting satisfies the dedupe query with an empty result set.
func stubNoExisting(mc *MockClient, ctx context.Context, dbID string) {
	mc.On("QueryDatabase", ctx, dbID, mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{}, nil)
}

func TestPublishBrief(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()
	stubNoExisting(mc, ctx, "db-briefs")

	var captured *notionapi.PageCreateRequest
	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*notionapi.PageCreateRequest)
		}).
		Return(&notionapi.Page{ID: "page-42"}, nil)

	b := Brief{
		EntityID:     "acct-1",
		Title:        "Launch Brief: Acme Robotics",
		Body:         "Acme builds warehouse robots.\n\nThe campaign targets plant managers.",
		Workflow:     "campaign_brief",
		Completeness: 82.5,
		Health:       74,
	}

	pageID, err := PublishBrief(ctx, mc, "db-briefs", b)
	require.NoError(t, err)
	assert.Equal(t, "page-42", pageID)
	mc.AssertExpectations(t)

	require.NotNil(t, captured)
	assert.Equal(t, notionapi.DatabaseID("db-briefs"), captured.Parent.DatabaseID)

	title, ok := captured.Properties["Name"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Launch Brief: Acme Robotics", title.Title[0].Text.Content)

	entity, ok := captured.Properties["Entity"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "acct-1", entity.RichText[0].Text.Content)

	wf, ok := captured.Properties["Workflow"].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "campaign_brief", wf.Select.Name)

	completeness, ok := captured.Properties["Completeness"].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.InDelta(t, 82.5, completeness.Number, 0.001)

	// Two paragraphs from the double-newline split.
	require.Len(t, captured.Children, 2)
	para, ok := captured.Children[0].(*notionapi.ParagraphBlock)
	require.True(t, ok)
	assert.Equal(t, "Acme builds warehouse robots.", para.Paragraph.RichText[0].Text.Content)
}

func TestPublishBriefRequiresTitle(t *testing.T) {
	mc := new(MockClient)

	_, err := PublishBrief(context.Background(), mc, "db-briefs", Brief{EntityID: "acct-1"})
	assert.Error(t, err)
	mc.AssertNotCalled(t, "CreatePage")
}

func TestPublishBriefUpdatesExistingPage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	var queried *notionapi.DatabaseQueryRequest
	mc.On("QueryDatabase", ctx, "db-briefs", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Run(func(args mock.Arguments) {
			queried = args.Get(2).(*notionapi.DatabaseQueryRequest)
		}).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{
				{
					ID: "page-old",
					Properties: notionapi.Properties{
						"Workflow": &notionapi.SelectProperty{
							Select: notionapi.Option{Name: "campaign_brief"},
						},
					},
				},
			},
		}, nil)

	var captured *notionapi.PageUpdateRequest
	mc.On("UpdatePage", ctx, "page-old", mock.AnythingOfType("*notionapi.PageUpdateRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(*notionapi.PageUpdateRequest)
		}).
		Return(&notionapi.Page{ID: "page-old"}, nil)

	b := Brief{
		EntityID:     "acct-1",
		Title:        "Launch Brief: Acme Robotics",
		Body:         "Updated prose.",
		Workflow:     "campaign_brief",
		Completeness: 91,
		Health:       80,
	}

	pageID, err := PublishBrief(ctx, mc, "db-briefs", b)
	require.NoError(t, err)
	assert.Equal(t, "page-old", pageID)
	mc.AssertNotCalled(t, "CreatePage")

	filter, ok := queried.Filter.(notionapi.PropertyFilter)
	require.True(t, ok)
	assert.Equal(t, "Entity", filter.Property)
	require.NotNil(t, filter.RichText)
	assert.Equal(t, "acct-1", filter.RichText.Equals)

	completeness, ok := captured.Properties["Completeness"].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.InDelta(t, 91, completeness.Number, 0.001)
}

func TestPublishBriefSkipsOtherWorkflowPages(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-briefs", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{
				{
					ID: "page-strategy",
					Properties: notionapi.Properties{
						"Workflow": &notionapi.SelectProperty{
							Select: notionapi.Option{Name: "strategy"},
						},
					},
				},
			},
		}, nil)
	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(&notionapi.Page{ID: "page-new"}, nil)

	b := Brief{EntityID: "acct-1", Title: "Brief", Workflow: "campaign_brief"}
	pageID, err := PublishBrief(ctx, mc, "db-briefs", b)
	require.NoError(t, err)
	assert.Equal(t, "page-new", pageID)
	mc.AssertNotCalled(t, "UpdatePage")
}

func TestPublishBriefOmitsWorkflowWhenEmpty(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()
	stubNoExisting(mc, ctx, "db-briefs")

	var captured *notionapi.PageCreateRequest
	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*notionapi.PageCreateRequest)
		}).
		Return(&notionapi.Page{ID: "page-7"}, nil)

	_, err := PublishBrief(ctx, mc, "db-briefs", Brief{EntityID: "acct-2", Title: "Brief"})
	require.NoError(t, err)
	_, hasWorkflow := captured.Properties["Workflow"]
	assert.False(t, hasWorkflow)
	assert.Empty(t, captured.Children)
}

func TestPublishBriefPropagatesError(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()
	stubNoExisting(mc, ctx, "db-briefs")

	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(nil, assert.AnError)

	_, err := PublishBrief(ctx, mc, "db-briefs", Brief{EntityID: "acct-3", Title: "Brief"})
	assert.Error(t, err)
}
