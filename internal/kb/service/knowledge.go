package service

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bedrock-kb-api/internal/kb/biz"
	"bedrock-kb-api/internal/pkg/logger"
	"bedrock-kb-api/internal/pkg/response"
)

// defaultMaxResults applies when a request omits max_results.
const defaultMaxResults = 5

// KnowledgeBaseService exposes the knowledge base operations over HTTP.
type KnowledgeBaseService struct {
	uc              *biz.KnowledgeBaseUseCase
	region          string
	knowledgeBaseID string
	logger          *logger.Logger
}

// NewKnowledgeBaseService creates the HTTP service. region and
// knowledgeBaseID are the configured values reported by /health.
func NewKnowledgeBaseService(uc *biz.KnowledgeBaseUseCase, region, knowledgeBaseID string, logger *logger.Logger) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		uc:              uc,
		region:          region,
		knowledgeBaseID: knowledgeBaseID,
		logger:          logger,
	}
}

// RegisterRoutes registers the endpoint routes on the router.
func (s *KnowledgeBaseService) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", s.Health)
	r.GET("/knowledge-bases", s.ListKnowledgeBases)
	r.GET("/knowledge-bases/:id", s.GetKnowledgeBase)
	r.POST("/search", s.Search)
	r.POST("/summarize", s.Summarize)
}

// Health reports service status. It never fails; a Bedrock client that
// could not be constructed shows up as bedrock_available=false.
func (s *KnowledgeBaseService) Health(c *gin.Context) {
	response.OK(c, HealthResponse{
		Status:           "healthy",
		Timestamp:        timestamp(),
		AWSRegion:        s.region,
		KnowledgeBaseID:  s.knowledgeBaseID,
		BedrockAvailable: s.uc.Available(),
	})
}

// ListKnowledgeBases returns the knowledge bases visible to the account.
func (s *KnowledgeBaseService) ListKnowledgeBases(c *gin.Context) {
	summaries, err := s.uc.ListKnowledgeBases(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	items := make([]KnowledgeBaseInfo, len(summaries))
	for i, kb := range summaries {
		items[i] = toKnowledgeBaseInfo(kb)
	}

	response.OK(c, items)
}

// GetKnowledgeBase returns the detail record for one knowledge base.
func (s *KnowledgeBaseService) GetKnowledgeBase(c *gin.Context) {
	id := c.Param("id")

	detail, err := s.uc.GetKnowledgeBase(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.OK(c, toKnowledgeBaseDetailResponse(detail))
}

// Search runs a vector search against the knowledge base.
func (s *KnowledgeBaseService) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := s.uc.Search(c.Request.Context(), &biz.SearchInput{
		Query:           req.Query,
		MaxResults:      maxResultsOrDefault(req.MaxResults),
		KnowledgeBaseID: req.KnowledgeBaseID,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.logger.WithContext(c.Request.Context()).Info("knowledge base searched",
		zap.String("knowledge_base_id", out.KnowledgeBaseID),
		zap.Int("results", len(out.Results)),
	)

	results := toSearchResultItems(out.Results)
	response.OK(c, SearchResponse{
		Query:           req.Query,
		Results:         results,
		TotalResults:    len(results),
		KnowledgeBaseID: out.KnowledgeBaseID,
		Timestamp:       timestamp(),
	})
}

// Summarize generates an answer with citations from the knowledge base.
func (s *KnowledgeBaseService) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := s.uc.Summarize(c.Request.Context(), &biz.SummarizeInput{
		Query:           req.Query,
		MaxResults:      maxResultsOrDefault(req.MaxResults),
		KnowledgeBaseID: req.KnowledgeBaseID,
		ModelARN:        req.ModelARN,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.logger.WithContext(c.Request.Context()).Info("summary generated",
		zap.String("knowledge_base_id", out.KnowledgeBaseID),
		zap.String("model", out.ModelUsed),
		zap.Int("citations", len(out.Citations)),
	)

	response.OK(c, SummarizeResponse{
		Query:             req.Query,
		GeneratedResponse: out.Text,
		Citations:         toCitationItems(out.Citations),
		KnowledgeBaseID:   out.KnowledgeBaseID,
		ModelUsed:         out.ModelUsed,
		Timestamp:         timestamp(),
	})
}

// maxResultsOrDefault applies the default when the request omitted
// max_results. An explicit out-of-range value never reaches here; binding
// rejects it first.
func maxResultsOrDefault(v *int32) int32 {
	if v == nil {
		return defaultMaxResults
	}
	return *v
}

func (s *KnowledgeBaseService) handleError(c *gin.Context, err error) {
	s.logger.WithContext(c.Request.Context()).Error("knowledge base operation failed", zap.Error(err))
	response.AppError(c, err)
}
