package hwpdown

import (
	"bytes"
	"strings"

	"github.com/richardlehane/msoleps"
)

// readMetadata extracts document properties from the summary-information
// stream, a standard OLE property set under an HWP-specific name. Any
// failure simply yields empty metadata: losing a title is acceptable,
// failing the document for it is not.
func readMetadata(c *Container) Metadata {
	var md Metadata
	raw, err := c.ReadStream(summaryStream)
	if err != nil || len(raw) == 0 {
		return md
	}
	r := msoleps.New()
	if err := r.Reset(bytes.NewReader(raw)); err != nil {
		return md
	}
	for _, p := range r.Property {
		switch strings.ToLower(p.Name) {
		case "title":
			md.Title = p.String()
		case "author":
			md.Author = p.String()
		case "subject":
			md.Subject = p.String()
		case "keywords":
			md.Keywords = p.String()
		}
	}
	return md
}
