package graphpress

// Article is the core content type: a markdown document whose fenced code
// blocks may carry lintable query snippets.
type Article struct {
	Title     string
	Date      string
	Tags      []string
	Category  string
	Summary   string
	Link      string
	Slug      string
	Content   string
	Meta      map[string]string
	Published bool
}

// Comment is a reader comment attached to a published article. Comments
// start unapproved and only show up on the article page once moderated.
type Comment struct {
	ID       string
	Slug     string
	Author   string
	Body     string
	Created  string // RFC 3339, UTC
	Approved bool
}

// Image is metadata for an uploaded image, stored alongside the file.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
