package data

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	rttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/document"

	"bedrock-kb-api/internal/kb/biz"
)

// Defaults substituted when the upstream response omits a field. The
// mapping never fails: absent fields resolve to these values.
const (
	noContentAvailable  = "No content available"
	noCitationContent   = "No content"
	noResponseGenerated = "No response generated"
	unknownValue        = "Unknown"
	unknownS3Location   = "Unknown S3 location"
	unnamedKB           = "Unnamed"
	noDescription       = "No description"

	sourceTypeS3 = "S3"
)

// toSearchResult flattens one retrieval record into the response schema.
func toSearchResult(r rttypes.KnowledgeBaseRetrievalResult) *biz.SearchResult {
	content := noContentAvailable
	if r.Content != nil && r.Content.Text != nil {
		content = *r.Content.Text
	}

	score := 0.0
	if r.Score != nil {
		score = *r.Score
	}

	sourceType, sourceLocation := extractLocation(r.Location)

	return &biz.SearchResult{
		Content:        content,
		Score:          score,
		SourceType:     sourceType,
		SourceLocation: sourceLocation,
		Metadata:       decodeMetadata(r.Metadata),
	}
}

func toSearchResults(results []rttypes.KnowledgeBaseRetrievalResult) []*biz.SearchResult {
	out := make([]*biz.SearchResult, len(results))
	for i, r := range results {
		out[i] = toSearchResult(r)
	}
	return out
}

// extractLocation reads the source type and, for S3-typed locations only,
// the source URI. Non-S3 locations yield a nil location.
func extractLocation(loc *rttypes.RetrievalResultLocation) (string, *string) {
	if loc == nil {
		return unknownValue, nil
	}

	sourceType := string(loc.Type)
	if sourceType == "" {
		sourceType = unknownValue
	}
	if sourceType != sourceTypeS3 {
		return sourceType, nil
	}

	uri := unknownS3Location
	if loc.S3Location != nil && loc.S3Location.Uri != nil {
		uri = *loc.S3Location.Uri
	}
	return sourceType, &uri
}

// toCitation maps one retrieved reference with the same content/location
// extraction rules as search results.
func toCitation(ref rttypes.RetrievedReference) *biz.Citation {
	content := noCitationContent
	if ref.Content != nil && ref.Content.Text != nil {
		content = *ref.Content.Text
	}

	_, sourceLocation := extractLocation(ref.Location)

	return &biz.Citation{
		Content:        content,
		SourceLocation: sourceLocation,
		Metadata:       decodeMetadata(ref.Metadata),
	}
}

// flattenCitations produces one citation per retrieved reference across
// all citation groups, preserving encounter order.
func flattenCitations(citations []rttypes.Citation) []*biz.Citation {
	out := make([]*biz.Citation, 0, len(citations))
	for _, c := range citations {
		for _, ref := range c.RetrievedReferences {
			out = append(out, toCitation(ref))
		}
	}
	return out
}

func toGenerationResult(out *bedrockagentruntime.RetrieveAndGenerateOutput) *biz.GenerationResult {
	text := noResponseGenerated
	if out != nil && out.Output != nil && out.Output.Text != nil {
		text = *out.Output.Text
	}

	var citations []rttypes.Citation
	if out != nil {
		citations = out.Citations
	}

	return &biz.GenerationResult{
		Text:      text,
		Citations: flattenCitations(citations),
	}
}

func toKnowledgeBaseSummary(s agenttypes.KnowledgeBaseSummary) *biz.KnowledgeBaseSummary {
	summary := &biz.KnowledgeBaseSummary{
		ID:          aws.ToString(s.KnowledgeBaseId),
		Name:        unnamedKB,
		Description: s.Description,
		Status:      unknownValue,
	}
	if s.Name != nil {
		summary.Name = *s.Name
	}
	if s.Status != "" {
		summary.Status = string(s.Status)
	}
	return summary
}

func toKnowledgeBaseSummaries(summaries []agenttypes.KnowledgeBaseSummary) []*biz.KnowledgeBaseSummary {
	out := make([]*biz.KnowledgeBaseSummary, len(summaries))
	for i, s := range summaries {
		out[i] = toKnowledgeBaseSummary(s)
	}
	return out
}

// toKnowledgeBaseDetail maps the upstream record. The response echoes the
// requested id when the record omits its own.
func toKnowledgeBaseDetail(kb *agenttypes.KnowledgeBase, requestedID string) *biz.KnowledgeBaseDetail {
	if kb == nil {
		return nil
	}

	id := aws.ToString(kb.KnowledgeBaseId)
	if id == "" {
		id = requestedID
	}

	detail := &biz.KnowledgeBaseDetail{
		ID:            id,
		Name:          unknownValue,
		Description:   noDescription,
		Status:        unknownValue,
		CreatedAt:     kb.CreatedAt,
		UpdatedAt:     kb.UpdatedAt,
		RoleARN:       kb.RoleArn,
		Configuration: toConfigurationMap(kb.KnowledgeBaseConfiguration),
	}
	if kb.Name != nil {
		detail.Name = *kb.Name
	}
	if kb.Description != nil {
		detail.Description = *kb.Description
	}
	if kb.Status != "" {
		detail.Status = string(kb.Status)
	}
	return detail
}

// toConfigurationMap projects the configuration into an opaque object with
// the upstream wire field names. Absent configuration yields an empty map.
func toConfigurationMap(cfg *agenttypes.KnowledgeBaseConfiguration) map[string]interface{} {
	out := map[string]interface{}{}
	if cfg == nil {
		return out
	}

	if cfg.Type != "" {
		out["type"] = string(cfg.Type)
	}
	if vc := cfg.VectorKnowledgeBaseConfiguration; vc != nil && vc.EmbeddingModelArn != nil {
		out["vectorKnowledgeBaseConfiguration"] = map[string]interface{}{
			"embeddingModelArn": *vc.EmbeddingModelArn,
		}
	}
	return out
}

// decodeMetadata converts smithy document values into plain Go values.
// Absent metadata normalizes to an empty, non-nil map so the serialized
// field is always present.
func decodeMetadata(md map[string]document.Interface) map[string]interface{} {
	out := make(map[string]interface{}, len(md))
	for k, v := range md {
		var val interface{}
		if err := v.UnmarshalSmithyDocument(&val); err != nil {
			continue
		}
		out[k] = val
	}
	return out
}
