package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bedrock-kb-api/internal/pkg/errors"
)

const placeholder = "YOUR_KNOWLEDGE_BASE_ID_HERE"

// mockRepo records calls so tests can assert an upstream call never happened.
type mockRepo struct {
	listResult     []*KnowledgeBaseSummary
	detailResult   *KnowledgeBaseDetail
	retrieveResult *RetrieveResult
	generateResult *GenerationResult
	err            error

	retrieveCalls []*RetrieveRequest
	generateCalls []*GenerateRequest
}

func (m *mockRepo) ListKnowledgeBases(ctx context.Context) ([]*KnowledgeBaseSummary, error) {
	return m.listResult, m.err
}

func (m *mockRepo) GetKnowledgeBase(ctx context.Context, id string) (*KnowledgeBaseDetail, error) {
	return m.detailResult, m.err
}

func (m *mockRepo) Retrieve(ctx context.Context, req *RetrieveRequest) (*RetrieveResult, error) {
	m.retrieveCalls = append(m.retrieveCalls, req)
	return m.retrieveResult, m.err
}

func (m *mockRepo) RetrieveAndGenerate(ctx context.Context, req *GenerateRequest) (*GenerationResult, error) {
	m.generateCalls = append(m.generateCalls, req)
	return m.generateResult, m.err
}

func TestSearchResolvesDefaultKnowledgeBase(t *testing.T) {
	repo := &mockRepo{retrieveResult: &RetrieveResult{}}
	uc := NewKnowledgeBaseUseCase(repo, "KBDEFAULT1", "arn:model/claude", placeholder)

	out, err := uc.Search(context.Background(), &SearchInput{Query: "hello", MaxResults: 5})
	require.NoError(t, err)
	assert.Equal(t, "KBDEFAULT1", out.KnowledgeBaseID)
	require.Len(t, repo.retrieveCalls, 1)
	assert.Equal(t, "KBDEFAULT1", repo.retrieveCalls[0].KnowledgeBaseID)
	assert.Equal(t, int32(5), repo.retrieveCalls[0].MaxResults)
}

func TestSearchRequestOverrideWins(t *testing.T) {
	repo := &mockRepo{retrieveResult: &RetrieveResult{}}
	uc := NewKnowledgeBaseUseCase(repo, "KBDEFAULT1", "arn:model/claude", placeholder)

	out, err := uc.Search(context.Background(), &SearchInput{
		Query:           "hello",
		MaxResults:      3,
		KnowledgeBaseID: "KBOVERRIDE",
	})
	require.NoError(t, err)
	assert.Equal(t, "KBOVERRIDE", out.KnowledgeBaseID)
	assert.Equal(t, "KBOVERRIDE", repo.retrieveCalls[0].KnowledgeBaseID)
}

func TestSearchPassesContinuationToken(t *testing.T) {
	more := "page-2"
	repo := &mockRepo{retrieveResult: &RetrieveResult{NextToken: &more}}
	uc := NewKnowledgeBaseUseCase(repo, "KBDEFAULT1", "arn:model/claude", placeholder)

	token := "page-1"
	out, err := uc.Search(context.Background(), &SearchInput{
		Query:      "hello",
		MaxResults: 5,
		NextToken:  &token,
	})
	require.NoError(t, err)
	require.Len(t, repo.retrieveCalls, 1)
	require.NotNil(t, repo.retrieveCalls[0].NextToken)
	assert.Equal(t, "page-1", *repo.retrieveCalls[0].NextToken)
	require.NotNil(t, out.NextToken)
	assert.Equal(t, "page-2", *out.NextToken)
}

func TestSearchRejectsPlaceholderWithoutUpstreamCall(t *testing.T) {
	repo := &mockRepo{}
	uc := NewKnowledgeBaseUseCase(repo, placeholder, "arn:model/claude", placeholder)

	_, err := uc.Search(context.Background(), &SearchInput{Query: "hello", MaxResults: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrKBNotConfigured))
	assert.Empty(t, repo.retrieveCalls, "placeholder kb id must not reach Bedrock")
}

func TestSearchRejectsUnsetKnowledgeBase(t *testing.T) {
	repo := &mockRepo{}
	uc := NewKnowledgeBaseUseCase(repo, "", "arn:model/claude", placeholder)

	_, err := uc.Search(context.Background(), &SearchInput{Query: "hello", MaxResults: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrKBNotConfigured))
	assert.Empty(t, repo.retrieveCalls)
}

func TestSearchWrapsUpstreamError(t *testing.T) {
	upstream := errors.New("throttled")
	repo := &mockRepo{err: upstream}
	uc := NewKnowledgeBaseUseCase(repo, "KBDEFAULT1", "arn:model/claude", placeholder)

	_, err := uc.Search(context.Background(), &SearchInput{Query: "hello", MaxResults: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrSearchFailed))
	assert.ErrorIs(t, err, upstream)
}

func TestSummarizeRejectsPlaceholderWithoutUpstreamCall(t *testing.T) {
	repo := &mockRepo{}
	uc := NewKnowledgeBaseUseCase(repo, placeholder, "arn:model/claude", placeholder)

	_, err := uc.Summarize(context.Background(), &SummarizeInput{Query: "q", MaxResults: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrKBNotConfigured))
	assert.Empty(t, repo.generateCalls)
}

func TestSummarizeModelResolution(t *testing.T) {
	repo := &mockRepo{generateResult: &GenerationResult{Text: "answer"}}
	uc := NewKnowledgeBaseUseCase(repo, "KBDEFAULT1",
		"arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-3-sonnet-20240229-v1:0", placeholder)

	out, err := uc.Summarize(context.Background(), &SummarizeInput{Query: "q", MaxResults: 5})
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-3-sonnet-20240229-v1:0", out.ModelUsed)
	assert.Equal(t,
		"arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-3-sonnet-20240229-v1:0",
		repo.generateCalls[0].ModelARN)

	out, err = uc.Summarize(context.Background(), &SummarizeInput{
		Query:      "q",
		MaxResults: 5,
		ModelARN:   "arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-3-haiku-20240307-v1:0",
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", out.ModelUsed)
}

func TestUnavailableClient(t *testing.T) {
	uc := NewKnowledgeBaseUseCase(nil, "KBDEFAULT1", "arn:model/claude", placeholder)
	assert.False(t, uc.Available())

	_, err := uc.ListKnowledgeBases(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrBedrockUnavailable))

	_, err = uc.GetKnowledgeBase(context.Background(), "KB1")
	assert.True(t, apperrors.Is(err, apperrors.ErrBedrockUnavailable))

	_, err = uc.Search(context.Background(), &SearchInput{Query: "q", MaxResults: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrBedrockUnavailable))

	_, err = uc.Summarize(context.Background(), &SummarizeInput{Query: "q", MaxResults: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrBedrockUnavailable))
}

func TestGetKnowledgeBaseNotFoundOnNilDetail(t *testing.T) {
	repo := &mockRepo{detailResult: nil}
	uc := NewKnowledgeBaseUseCase(repo, "KBDEFAULT1", "arn:model/claude", placeholder)

	_, err := uc.GetKnowledgeBase(context.Background(), "KBMISSING")
	assert.True(t, apperrors.Is(err, apperrors.ErrKBNotFound))
}

func TestModelShortName(t *testing.T) {
	tests := []struct {
		name string
		arn  string
		want string
	}{
		{
			name: "foundation model arn",
			arn:  "arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-3-sonnet-20240229-v1:0",
			want: "anthropic.claude-3-sonnet-20240229-v1:0",
		},
		{
			name: "plain model id without slash",
			arn:  "anthropic.claude-3-sonnet-20240229-v1:0",
			want: "anthropic.claude-3-sonnet-20240229-v1:0",
		},
		{
			name: "inference profile arn",
			arn:  "arn:aws:bedrock:us-west-2:123456789012:inference-profile/us.anthropic.claude-3-5-sonnet-20241022-v2:0",
			want: "us.anthropic.claude-3-5-sonnet-20241022-v2:0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModelShortName(tt.arn))
		})
	}
}
