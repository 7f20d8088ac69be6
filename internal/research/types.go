package research

import "encoding/json"

// ProductQuery identifies the product to research. All fields are optional,
// but at least one must be present for a plan to be built. The barcode is
// normalized before the run starts and the query is not mutated afterwards.
type ProductQuery struct {
	Barcode string `json:"barcode"`
	SKU     string `json:"sku"`
	Title   string `json:"title"`
}

// Weight is the product weight extracted from a validated page.
type Weight struct {
	UnitOfMeasure string   `json:"unit_of_measure"` // "lb", "oz", "kg", "g"
	Value         *float64 `json:"value"`           // nil if not found
}

// Dimensions are the product dimensions in inches.
type Dimensions struct {
	Length *float64 `json:"length"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// ValidatedPage is a URL confirmed to describe the requested product, with
// the images and attributes extracted from it. The image checker may rewrite
// ImageURLs in place; no other field is ever touched after validation.
type ValidatedPage struct {
	URL                string     `json:"url"`
	ValidationMethod   string     `json:"validation_method"` // "barcode" or "sku"
	ImageURLs          []string   `json:"image_urls"`
	Reasoning          string     `json:"reasoning"`
	ProductDescription string     `json:"product_description"`
	Brand              string     `json:"brand"`
	Weight             Weight     `json:"weight"`
	ProductDimensions  Dimensions `json:"product_dimensions"`
}

// InvalidURL records a rejected candidate page. Deduplicated by URL with
// first-writer-wins reasoning.
type InvalidURL struct {
	URL       string `json:"url"`
	Reasoning string `json:"reasoning"`
}

// UnmarshalJSON accepts both the object form and the older bare-string form
// some validation responses still emit.
func (u *InvalidURL) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		u.URL = s
		u.Reasoning = ""
		return nil
	}
	type invalidURL InvalidURL
	var v invalidURL
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = InvalidURL(v)
	return nil
}

// FinalResult is the public record assembled by the finalizer.
type FinalResult struct {
	Product              ProductQuery    `json:"product"`
	SearchType           string          `json:"search_type"` // "barcode" or "sku"
	TotalChecked         int             `json:"total_checked"`
	TotalValidatedImages int             `json:"total_validated_images"`
	ValidatedPages       []ValidatedPage `json:"validated_pages"`
	InvalidURLs          []InvalidURL    `json:"invalid_urls"`
}

// BatchResult holds one product's outcome inside a batch run. Result carries
// the FinalResult JSON on success or an {"error": ..., "status": "failed"}
// payload when both pipeline attempts failed.
type BatchResult struct {
	Barcode string `json:"barcode"`
	SKU     string `json:"sku"`
	Title   string `json:"title"`
	Result  string `json:"result"`
}

// searchResults is the shape every plain search attempt must parse into.
// Providers disagree on the collection key, hence both.
type searchResults struct {
	Results []searchHit `json:"results"`
	Items   []searchHit `json:"items"`
}

type searchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func (r searchResults) hits() []searchHit {
	if len(r.Results) > 0 {
		return r.Results
	}
	return r.Items
}

// filterResults is the relevance judgment returned by the filter stage call.
type filterResults struct {
	URLs      []string `json:"urls"`
	TotalURLs float64  `json:"total_urls"`
}

// validationResults is the strict output contract of a validation batch call.
type validationResults struct {
	ValidatedPages       []ValidatedPage `json:"validated_pages"`
	InvalidURLs          []InvalidURL    `json:"invalid_urls"`
	TotalValidatedImages int             `json:"total_validated_images"`
}

// allFieldsResults is the structured contract of the search-everything
// attempt: the provider already visited the pages and pulled the images.
type allFieldsResults struct {
	Items []allFieldsItem `json:"items"`
}

type allFieldsItem struct {
	SourceURL string   `json:"source_url"`
	ImageURLs []string `json:"image_urls"`
}
