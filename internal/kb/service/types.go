package service

import (
	"time"

	"bedrock-kb-api/internal/kb/biz"
)

// SearchRequest is the POST /search body. MaxResults is a pointer so an
// explicit 0 fails validation instead of looking like an omitted field.
type SearchRequest struct {
	Query           string `json:"query" binding:"required,min=1,max=1000"`
	MaxResults      *int32 `json:"max_results" binding:"omitempty,min=1,max=20"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
}

// SummarizeRequest is the POST /summarize body.
type SummarizeRequest struct {
	Query           string `json:"query" binding:"required,min=1,max=1000"`
	MaxResults      *int32 `json:"max_results" binding:"omitempty,min=1,max=10"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	ModelARN        string `json:"model_arn"`
}

// SearchResultItem is one entry of the search response.
type SearchResultItem struct {
	Content        string                 `json:"content"`
	Score          float64                `json:"score"`
	SourceType     string                 `json:"source_type"`
	SourceLocation *string                `json:"source_location,omitempty"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// SearchResponse is the POST /search response.
type SearchResponse struct {
	Query           string             `json:"query"`
	Results         []SearchResultItem `json:"results"`
	TotalResults    int                `json:"total_results"`
	KnowledgeBaseID string             `json:"knowledge_base_id"`
	Timestamp       string             `json:"timestamp"`
}

// CitationItem is one entry of the summarize response citation list.
type CitationItem struct {
	Content        string                 `json:"content"`
	SourceLocation *string                `json:"source_location,omitempty"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// SummarizeResponse is the POST /summarize response.
type SummarizeResponse struct {
	Query             string         `json:"query"`
	GeneratedResponse string         `json:"generated_response"`
	Citations         []CitationItem `json:"citations"`
	KnowledgeBaseID   string         `json:"knowledge_base_id"`
	ModelUsed         string         `json:"model_used"`
	Timestamp         string         `json:"timestamp"`
}

// HealthResponse is the GET /health response.
type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	AWSRegion        string `json:"aws_region"`
	KnowledgeBaseID  string `json:"knowledge_base_id"`
	BedrockAvailable bool   `json:"bedrock_available"`
}

// KnowledgeBaseInfo is one entry of the GET /knowledge-bases response.
type KnowledgeBaseInfo struct {
	KnowledgeBaseID string  `json:"knowledge_base_id"`
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	Status          string  `json:"status"`
}

// KnowledgeBaseDetailResponse is the GET /knowledge-bases/:id response.
type KnowledgeBaseDetailResponse struct {
	KnowledgeBaseID            string                 `json:"knowledge_base_id"`
	Name                       string                 `json:"name"`
	Description                string                 `json:"description"`
	Status                     string                 `json:"status"`
	CreatedAt                  *string                `json:"created_at"`
	UpdatedAt                  *string                `json:"updated_at"`
	RoleARN                    *string                `json:"role_arn"`
	KnowledgeBaseConfiguration map[string]interface{} `json:"knowledge_base_configuration"`
}

func toSearchResultItems(results []*biz.SearchResult) []SearchResultItem {
	items := make([]SearchResultItem, len(results))
	for i, r := range results {
		items[i] = SearchResultItem{
			Content:        r.Content,
			Score:          r.Score,
			SourceType:     r.SourceType,
			SourceLocation: r.SourceLocation,
			Metadata:       r.Metadata,
		}
	}
	return items
}

func toCitationItems(citations []*biz.Citation) []CitationItem {
	items := make([]CitationItem, len(citations))
	for i, c := range citations {
		items[i] = CitationItem{
			Content:        c.Content,
			SourceLocation: c.SourceLocation,
			Metadata:       c.Metadata,
		}
	}
	return items
}

func toKnowledgeBaseInfo(kb *biz.KnowledgeBaseSummary) KnowledgeBaseInfo {
	return KnowledgeBaseInfo{
		KnowledgeBaseID: kb.ID,
		Name:            kb.Name,
		Description:     kb.Description,
		Status:          kb.Status,
	}
}

func toKnowledgeBaseDetailResponse(kb *biz.KnowledgeBaseDetail) *KnowledgeBaseDetailResponse {
	return &KnowledgeBaseDetailResponse{
		KnowledgeBaseID:            kb.ID,
		Name:                       kb.Name,
		Description:                kb.Description,
		Status:                     kb.Status,
		CreatedAt:                  formatTime(kb.CreatedAt),
		UpdatedAt:                  formatTime(kb.UpdatedAt),
		RoleARN:                    kb.RoleARN,
		KnowledgeBaseConfiguration: kb.Configuration,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// timestamp returns the response timestamp in RFC 3339 UTC.
func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
