package catalog

// Candidate is a catalog item matched during an index query.
// Constructed fully populated via NewCandidate; not mutated afterwards
// except for slice reordering and truncation by the caller.
type Candidate struct {
	id         string
	title      string
	price      *float64
	brand      string
	category   Category
	color      string
	productURL string
	imageURL   string
	// similarity is nil when the index row carried no score (legacy rows).
	similarity *float64
}

// CandidateRow is the raw row shape returned by an index driver before
// normalization. Optional fields stay pointers/empty strings.
type CandidateRow struct {
	ID         string
	Title      string
	Price      *float64
	Brand      string
	Category   string
	Color      string
	ProductURL string
	ImageURL   string
	Similarity *float64
}

// NewCandidate builds a fully-populated Candidate from a raw index row.
// Category normalization and title defaulting happen here, exactly once.
func NewCandidate(row CandidateRow) Candidate {
	title := row.Title
	if title == "" {
		title = "Untitled item"
	}
	return Candidate{
		id:         row.ID,
		title:      title,
		price:      row.Price,
		brand:      row.Brand,
		category:   NormalizeCategory(row.Category),
		color:      row.Color,
		productURL: row.ProductURL,
		imageURL:   row.ImageURL,
		similarity: row.Similarity,
	}
}

// ID returns the catalog item identifier.
func (c *Candidate) ID() string { return c.id }

// Title returns the display title.
func (c *Candidate) Title() string { return c.title }

// Price returns the currency-less price, nil when unknown.
func (c *Candidate) Price() *float64 { return c.price }

// Brand returns the free-text brand, empty when unknown.
func (c *Candidate) Brand() string { return c.brand }

// Category returns the canonical category. Never empty after construction.
func (c *Candidate) Category() Category { return c.category }

// Color returns the color label, empty when unknown.
func (c *Candidate) Color() string { return c.color }

// ProductURL returns the external product page URL.
func (c *Candidate) ProductURL() string { return c.productURL }

// ImageURL returns the primary image URL.
func (c *Candidate) ImageURL() string { return c.imageURL }

// Similarity returns the cosine similarity in [0,1], nil when the row
// carried no score.
func (c *Candidate) Similarity() *float64 { return c.similarity }

// HasSimilarity reports whether the candidate carries a similarity score.
func (c *Candidate) HasSimilarity() bool { return c.similarity != nil }
