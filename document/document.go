package document

// Type identifies how a document's content should be extracted.
type Type string

const (
	PlainText             Type = "text"
	Markdown              Type = "markdown"
	Pdf                   Type = "pdf"
	SummaryWithTranscript Type = "summary"
)

// Document is one input file read into memory. It is immutable once
// created and discarded after its pipeline run completes.
type Document struct {
	Path string
	Type Type
	Raw  string
}
