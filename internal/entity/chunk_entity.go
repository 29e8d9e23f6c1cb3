package entity

// ContentChunk is a retrievable unit of incentive grounding text.
// Chunks are produced by the ingestion pipeline and are read-only here.
type ContentChunk struct {
	Id             string
	Title          string
	Content        string
	Field          string // canonical semantic field name, e.g. "formula", "activity_requirement"
	EngagementName string
	ColumnName     string // original spreadsheet label, when the source was tabular
	DocName        string
	Kind           string // "tabular" | "narrative"
	SectionPath    string
	HeadingLevel   int
	SpanIndex      int
	GroupId        string // sibling parts of one logical record share a group id
	Variant        string // "", "full", "overview"
	PartIndex      int
	TotalParts     int
	Embedding      []float32
}

// GroupKey returns the deduplication key for the chunk: tabular chunks key on
// (engagement_name, field), narrative chunks on (doc_name, section_path). An
// explicit group id refines the key when the ingest marked multi-part records.
func (c *ContentChunk) GroupKey() string {
	key := c.DocName + "\x00" + c.SectionPath
	if c.EngagementName != "" || c.Field != "" {
		key = c.EngagementName + "\x00" + c.Field
	}
	if c.GroupId != "" {
		key += "\x00" + c.GroupId
	}
	return key
}

// RetrievalHit is a ContentChunk scored against one query. It only lives for
// the duration of a request.
type RetrievalHit struct {
	Chunk ContentChunk
	Score float64
}
