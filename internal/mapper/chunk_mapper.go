package mapper

import (
	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/model"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.IncentiveChunk) *entity.ContentChunk {
	if c == nil {
		return nil
	}

	return &entity.ContentChunk{
		Id:             c.Id,
		Title:          c.Title,
		Content:        c.Content,
		Field:          c.Field,
		EngagementName: c.EngagementName,
		ColumnName:     c.ColumnName,
		DocName:        c.DocName,
		Kind:           c.Kind,
		SectionPath:    c.SectionPath,
		HeadingLevel:   c.HeadingLevel,
		SpanIndex:      c.SpanIndex,
		GroupId:        c.GroupId,
		Variant:        c.Variant,
		PartIndex:      c.PartIndex,
		TotalParts:     c.TotalParts,
		Embedding:      c.Embedding.Slice(),
	}
}
