package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	rttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"bedrock-kb-api/internal/kb/biz"
	apperrors "bedrock-kb-api/internal/pkg/errors"
)

// BedrockRepo implements biz.BedrockRepo over the Bedrock Agent control
// plane (list/get) and the Bedrock Agent Runtime data plane
// (retrieve / retrieve-and-generate). Credentials come from the ambient
// AWS credential chain.
type BedrockRepo struct {
	agent   *bedrockagent.Client
	runtime *bedrockagentruntime.Client
}

// NewBedrockRepo constructs the Bedrock clients for the given region.
// Construction fails when no credential source can be resolved; callers
// decide whether that is fatal.
func NewBedrockRepo(ctx context.Context, region string) (*BedrockRepo, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockRepo{
		agent:   bedrockagent.NewFromConfig(cfg),
		runtime: bedrockagentruntime.NewFromConfig(cfg),
	}, nil
}

// ListKnowledgeBases returns the first page of knowledge bases in the
// account.
func (r *BedrockRepo) ListKnowledgeBases(ctx context.Context) ([]*biz.KnowledgeBaseSummary, error) {
	out, err := r.agent.ListKnowledgeBases(ctx, &bedrockagent.ListKnowledgeBasesInput{})
	if err != nil {
		return nil, err
	}
	return toKnowledgeBaseSummaries(out.KnowledgeBaseSummaries), nil
}

// GetKnowledgeBase fetches the detail record for one knowledge base. An
// unknown ID maps to the not-found error instead of an upstream failure.
func (r *BedrockRepo) GetKnowledgeBase(ctx context.Context, id string) (*biz.KnowledgeBaseDetail, error) {
	out, err := r.agent.GetKnowledgeBase(ctx, &bedrockagent.GetKnowledgeBaseInput{
		KnowledgeBaseId: aws.String(id),
	})
	if err != nil {
		var notFound *agenttypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, apperrors.New(apperrors.ErrKBNotFound)
		}
		return nil, err
	}
	return toKnowledgeBaseDetail(out.KnowledgeBase, id), nil
}

// Retrieve runs a vector search against one knowledge base.
func (r *BedrockRepo) Retrieve(ctx context.Context, req *biz.RetrieveRequest) (*biz.RetrieveResult, error) {
	input := &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(req.KnowledgeBaseID),
		RetrievalQuery: &rttypes.KnowledgeBaseQuery{
			Text: aws.String(req.Query),
		},
		RetrievalConfiguration: &rttypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &rttypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(req.MaxResults),
			},
		},
	}
	if req.NextToken != nil {
		input.NextToken = req.NextToken
	}

	out, err := r.runtime.Retrieve(ctx, input)
	if err != nil {
		return nil, err
	}

	return &biz.RetrieveResult{
		Results:   toSearchResults(out.RetrievalResults),
		NextToken: out.NextToken,
	}, nil
}

// RetrieveAndGenerate retrieves from one knowledge base and generates an
// answer with the given foundation model.
func (r *BedrockRepo) RetrieveAndGenerate(ctx context.Context, req *biz.GenerateRequest) (*biz.GenerationResult, error) {
	out, err := r.runtime.RetrieveAndGenerate(ctx, &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &rttypes.RetrieveAndGenerateInput{
			Text: aws.String(req.Query),
		},
		RetrieveAndGenerateConfiguration: &rttypes.RetrieveAndGenerateConfiguration{
			Type: rttypes.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &rttypes.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(req.KnowledgeBaseID),
				ModelArn:        aws.String(req.ModelARN),
				RetrievalConfiguration: &rttypes.KnowledgeBaseRetrievalConfiguration{
					VectorSearchConfiguration: &rttypes.KnowledgeBaseVectorSearchConfiguration{
						NumberOfResults: aws.Int32(req.MaxResults),
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return toGenerationResult(out), nil
}
