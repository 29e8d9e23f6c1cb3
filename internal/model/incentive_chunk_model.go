package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// IncentiveChunk is the persistence shape of one corpus chunk. The table is
// populated by the ingestion pipeline; query paths never write to it.
type IncentiveChunk struct {
	Id             string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string          `gorm:"type:text"`
	Content        string          `gorm:"type:text"`
	Field          string          `gorm:"type:text;index"`
	EngagementName string          `gorm:"type:text;index"`
	ColumnName     string          `gorm:"type:text"`
	DocName        string          `gorm:"type:text;index"`
	Kind           string          `gorm:"type:text"`
	SectionPath    string          `gorm:"type:text"`
	HeadingLevel   int             `gorm:"default:0"`
	SpanIndex      int             `gorm:"default:0"`
	GroupId        string          `gorm:"type:text;index"`
	Variant        string          `gorm:"type:text"`
	PartIndex      int             `gorm:"default:0"`
	TotalParts     int             `gorm:"default:0"`
	Embedding      pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`        // ingest-specific extras, opaque here
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (IncentiveChunk) TableName() string {
	return "incentive_chunks"
}
