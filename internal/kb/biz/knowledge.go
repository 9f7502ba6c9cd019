package biz

import (
	"context"
	"strings"
	"time"

	apperrors "bedrock-kb-api/internal/pkg/errors"
)

// KnowledgeBaseSummary is one entry of the account knowledge base listing.
type KnowledgeBaseSummary struct {
	ID          string
	Name        string
	Description *string
	Status      string
}

// KnowledgeBaseDetail is the full record for one knowledge base.
type KnowledgeBaseDetail struct {
	ID            string
	Name          string
	Description   string
	Status        string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	RoleARN       *string
	Configuration map[string]interface{}
}

// SearchResult is one normalized retrieval record.
type SearchResult struct {
	Content        string
	Score          float64
	SourceType     string
	SourceLocation *string
	Metadata       map[string]interface{}
}

// Citation is one retrieved reference backing a generated answer.
type Citation struct {
	Content        string
	SourceLocation *string
	Metadata       map[string]interface{}
}

// RetrieveRequest carries the parameters for a vector search.
type RetrieveRequest struct {
	KnowledgeBaseID string
	Query           string
	MaxResults      int32
	NextToken       *string
}

// RetrieveResult is a page of normalized retrieval records.
type RetrieveResult struct {
	Results   []*SearchResult
	NextToken *string
}

// GenerateRequest carries the parameters for retrieve-and-generate.
type GenerateRequest struct {
	KnowledgeBaseID string
	ModelARN        string
	Query           string
	MaxResults      int32
}

// GenerationResult is a normalized retrieve-and-generate response.
type GenerationResult struct {
	Text      string
	Citations []*Citation
}

// BedrockRepo is the gateway to the managed knowledge base service. All
// ranking, retrieval and generation happens behind it.
type BedrockRepo interface {
	ListKnowledgeBases(ctx context.Context) ([]*KnowledgeBaseSummary, error)
	GetKnowledgeBase(ctx context.Context, id string) (*KnowledgeBaseDetail, error)
	Retrieve(ctx context.Context, req *RetrieveRequest) (*RetrieveResult, error)
	RetrieveAndGenerate(ctx context.Context, req *GenerateRequest) (*GenerationResult, error)
}

// SearchInput is a validated search request.
type SearchInput struct {
	Query           string
	MaxResults      int32
	KnowledgeBaseID string  // optional override
	NextToken       *string // continuation token from a previous search
}

// SearchOutput pairs search results with the knowledge base they came from.
type SearchOutput struct {
	Results         []*SearchResult
	KnowledgeBaseID string
	NextToken       *string // set when more pages exist
}

// SummarizeInput is a validated summarize request.
type SummarizeInput struct {
	Query           string
	MaxResults      int32
	KnowledgeBaseID string // optional override
	ModelARN        string // optional override
}

// SummarizeOutput pairs a generated answer with its provenance.
type SummarizeOutput struct {
	Text            string
	Citations       []*Citation
	KnowledgeBaseID string
	ModelUsed       string
}

// KnowledgeBaseUseCase orchestrates knowledge base operations over the
// Bedrock gateway.
type KnowledgeBaseUseCase struct {
	repo            BedrockRepo // nil when client construction failed at startup
	defaultKBID     string
	defaultModelARN string
	placeholderKBID string
}

// NewKnowledgeBaseUseCase builds the use case. repo may be nil when the
// Bedrock client could not be constructed; every operation then reports
// the service as unavailable instead of panicking on a nil client.
func NewKnowledgeBaseUseCase(repo BedrockRepo, defaultKBID, defaultModelARN, placeholderKBID string) *KnowledgeBaseUseCase {
	return &KnowledgeBaseUseCase{
		repo:            repo,
		defaultKBID:     defaultKBID,
		defaultModelARN: defaultModelARN,
		placeholderKBID: placeholderKBID,
	}
}

// Available reports whether the Bedrock client was constructed successfully.
func (uc *KnowledgeBaseUseCase) Available() bool {
	return uc.repo != nil
}

// ListKnowledgeBases returns the knowledge bases visible to the account.
func (uc *KnowledgeBaseUseCase) ListKnowledgeBases(ctx context.Context) ([]*KnowledgeBaseSummary, error) {
	if uc.repo == nil {
		return nil, apperrors.New(apperrors.ErrBedrockUnavailable)
	}

	summaries, err := uc.repo.ListKnowledgeBases(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrKBListFailed)
	}
	return summaries, nil
}

// GetKnowledgeBase returns the detail record for one knowledge base.
func (uc *KnowledgeBaseUseCase) GetKnowledgeBase(ctx context.Context, id string) (*KnowledgeBaseDetail, error) {
	if uc.repo == nil {
		return nil, apperrors.New(apperrors.ErrBedrockUnavailable)
	}

	detail, err := uc.repo.GetKnowledgeBase(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrKBInfoFailed)
	}
	if detail == nil {
		return nil, apperrors.New(apperrors.ErrKBNotFound)
	}
	return detail, nil
}

// Search runs a vector search against the effective knowledge base.
func (uc *KnowledgeBaseUseCase) Search(ctx context.Context, in *SearchInput) (*SearchOutput, error) {
	if uc.repo == nil {
		return nil, apperrors.New(apperrors.ErrBedrockUnavailable)
	}

	kbID, err := uc.resolveKnowledgeBaseID(in.KnowledgeBaseID)
	if err != nil {
		return nil, err
	}

	result, err := uc.repo.Retrieve(ctx, &RetrieveRequest{
		KnowledgeBaseID: kbID,
		Query:           in.Query,
		MaxResults:      in.MaxResults,
		NextToken:       in.NextToken,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSearchFailed)
	}

	return &SearchOutput{
		Results:         result.Results,
		KnowledgeBaseID: kbID,
		NextToken:       result.NextToken,
	}, nil
}

// Summarize answers a question with the generative model, grounded in the
// effective knowledge base.
func (uc *KnowledgeBaseUseCase) Summarize(ctx context.Context, in *SummarizeInput) (*SummarizeOutput, error) {
	if uc.repo == nil {
		return nil, apperrors.New(apperrors.ErrBedrockUnavailable)
	}

	kbID, err := uc.resolveKnowledgeBaseID(in.KnowledgeBaseID)
	if err != nil {
		return nil, err
	}

	modelARN := in.ModelARN
	if modelARN == "" {
		modelARN = uc.defaultModelARN
	}

	result, err := uc.repo.RetrieveAndGenerate(ctx, &GenerateRequest{
		KnowledgeBaseID: kbID,
		ModelARN:        modelARN,
		Query:           in.Query,
		MaxResults:      in.MaxResults,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSummarizeFailed)
	}

	return &SummarizeOutput{
		Text:            result.Text,
		Citations:       result.Citations,
		KnowledgeBaseID: kbID,
		ModelUsed:       ModelShortName(modelARN),
	}, nil
}

// resolveKnowledgeBaseID picks the request override or the configured
// default, rejecting an unset or placeholder value before any upstream call.
func (uc *KnowledgeBaseUseCase) resolveKnowledgeBaseID(override string) (string, error) {
	kbID := override
	if kbID == "" {
		kbID = uc.defaultKBID
	}
	if kbID == "" || kbID == uc.placeholderKBID {
		return "", apperrors.New(apperrors.ErrKBNotConfigured)
	}
	return kbID, nil
}

// ModelShortName returns the segment after the last '/' of a model ARN,
// or the whole identifier when it has no '/'.
func ModelShortName(modelARN string) string {
	if idx := strings.LastIndex(modelARN, "/"); idx >= 0 {
		return modelARN[idx+1:]
	}
	return modelARN
}
