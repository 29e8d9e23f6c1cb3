package specification

import "gorm.io/gorm"

// ByDocName filters chunks by exact source document name.
type ByDocName struct {
	DocName string
}

func (s ByDocName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_name = ?", s.DocName)
}

// ByField filters chunks by canonical field name.
type ByField struct {
	Field string
}

func (s ByField) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("field = ?", s.Field)
}

// ByEngagementLike filters chunks by engagement-name substring
// (case-insensitive).
type ByEngagementLike struct {
	Engagement string
}

func (s ByEngagementLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("engagement_name ILIKE ?", "%"+s.Engagement+"%")
}

// ByContentPrefilter narrows candidates by a free-text substring before
// scoring.
type ByContentPrefilter struct {
	Text string
}

func (s ByContentPrefilter) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Text + "%"
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}
