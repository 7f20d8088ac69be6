package research

import (
	"strings"

	"github.com/brightarrow/imagescout/internal/tools"
)

// AttemptKind enumerates the finite search-attempt catalog. Dispatch in the
// search stage switches exhaustively over this enum.
type AttemptKind int

const (
	AttemptBarcodeGoogle AttemptKind = iota
	AttemptBarcodeYahoo
	AttemptBarcodeWeb
	AttemptSKUGoogle
	AttemptSKUYahoo
	AttemptSKUWeb
	AttemptTitleSKUGoogle
	AttemptAllFieldsWeb
)

// MinSKULength is the minimum trimmed SKU length for SKU-only searches.
// Shorter SKUs produce too many false positives.
const MinSKULength = 5

// SearchAttempt is one (provider, prompt, query-template) combination. The
// catalog below is static; plans are ordered slices of it and never mutated.
type SearchAttempt struct {
	Kind          AttemptKind
	Name          string
	Provider      tools.Provider
	PromptKey     string
	InputTemplate string
}

var (
	barcodeAttempts = []SearchAttempt{
		{AttemptBarcodeGoogle, "barcode_google", tools.ProviderGoogle, "barcode_google", "Barcode: {barcode}"},
		{AttemptBarcodeYahoo, "barcode_yahoo", tools.ProviderYahoo, "barcode_yahoo", "Barcode: {barcode}"},
		{AttemptBarcodeWeb, "barcode_web", tools.ProviderLLMWebSearch, "barcode_web", "Barcode: {barcode}"},
	}

	skuAttempts = []SearchAttempt{
		{AttemptSKUGoogle, "sku_google", tools.ProviderGoogle, "sku_google", "SKU: {sku}"},
		{AttemptSKUYahoo, "sku_yahoo", tools.ProviderYahoo, "sku_yahoo", "SKU: {sku}"},
		{AttemptSKUWeb, "sku_web", tools.ProviderLLMWebSearch, "sku_web", "SKU: {sku}"},
	}

	titleSKUAttempts = []SearchAttempt{
		{AttemptTitleSKUGoogle, "title_sku_google", tools.ProviderGoogle, "title_sku_google", "Title: {title}, SKU: {sku}"},
		{AttemptAllFieldsWeb, "all_fields_web", tools.ProviderLLMWebSearch, "all_fields_web",
			"This is the product: Barcode/UPC: {barcode}, Product SKU/part number: {sku}, Title: {title}"},
	}
)

// usableSKU reports whether the SKU is long enough for SKU-only searches.
// The combined title+SKU attempts run regardless.
func usableSKU(sku string) bool {
	return len(strings.TrimSpace(sku)) >= MinSKULength
}

// BuildPlan selects the ordered attempt list for the available identifiers:
// barcode searches first when a barcode exists, SKU searches when the SKU
// passes the length threshold, and the combined title+SKU attempts always
// last as the best-effort path. Never empty when at least a title exists.
func BuildPlan(q ProductQuery) []SearchAttempt {
	hasBarcode := strings.TrimSpace(q.Barcode) != ""

	var plan []SearchAttempt
	if hasBarcode {
		plan = append(plan, barcodeAttempts...)
	}
	if usableSKU(q.SKU) {
		plan = append(plan, skuAttempts...)
	}
	plan = append(plan, titleSKUAttempts...)
	return plan
}

// SearchType labels which identifier family drove the run for the output
// record: "barcode" when one is present, otherwise "sku".
func SearchType(q ProductQuery) string {
	if strings.TrimSpace(q.Barcode) != "" {
		return "barcode"
	}
	return "sku"
}

// fillTemplate substitutes {barcode}, {sku} and {title} placeholders in an
// attempt's input template.
func fillTemplate(template string, q ProductQuery) string {
	r := strings.NewReplacer(
		"{barcode}", q.Barcode,
		"{sku}", q.SKU,
		"{title}", q.Title,
	)
	return r.Replace(template)
}
