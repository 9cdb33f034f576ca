package core

// Candidate is a scraped product record. A candidate carries no intrinsic
// relevance; relevance is always computed against a query by the reranker
// and never stored on the record itself.
type Candidate struct {
	// Title is the product title as scraped from the marketplace listing.
	Title string `json:"title"`

	// Price is the display price string. Marketplaces render prices
	// inconsistently, so this is kept verbatim and may be empty.
	Price string `json:"price"`

	// Image is the product image URL, if one was found.
	Image string `json:"image,omitempty"`

	// URL is the canonical product page URL.
	URL string `json:"url"`

	// Source names the marketplace the candidate came from
	// (e.g. "Amazon", "Flipkart", "Myntra").
	Source string `json:"source"`
}

// RankedResult pairs a candidate with its query-relative relevance score.
// Results are ephemeral: they are produced per turn and never persisted.
type RankedResult struct {
	Score     float32   `json:"score"`
	Candidate Candidate `json:"candidate"`
}
