package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func planNames(plan []SearchAttempt) []string {
	names := make([]string, len(plan))
	for i, a := range plan {
		names[i] = a.Name
	}
	return names
}

func TestBuildPlan_AllIdentifiers(t *testing.T) {
	q := ProductQuery{Barcode: "012345678905", SKU: "AB-1234", Title: "Widget Pro"}
	assert.Equal(t, []string{
		"barcode_google", "barcode_yahoo", "barcode_web",
		"sku_google", "sku_yahoo", "sku_web",
		"title_sku_google", "all_fields_web",
	}, planNames(BuildPlan(q)))
}

func TestBuildPlan_ShortSKUSkipsSKUAttempts(t *testing.T) {
	// A 4-character SKU matches too much; only the combined attempts keep it.
	q := ProductQuery{Barcode: "012345678905", SKU: "AB12", Title: "Widget Pro"}
	assert.Equal(t, []string{
		"barcode_google", "barcode_yahoo", "barcode_web",
		"title_sku_google", "all_fields_web",
	}, planNames(BuildPlan(q)))
}

func TestBuildPlan_TitleOnly(t *testing.T) {
	q := ProductQuery{Title: "Widget Pro"}
	assert.Equal(t, []string{"title_sku_google", "all_fields_web"}, planNames(BuildPlan(q)))
}

func TestSearchType(t *testing.T) {
	assert.Equal(t, "barcode", SearchType(ProductQuery{Barcode: "012345678905"}))
	assert.Equal(t, "sku", SearchType(ProductQuery{SKU: "AB-1234"}))
	assert.Equal(t, "sku", SearchType(ProductQuery{Title: "Widget Pro"}))
}

func TestFillTemplate(t *testing.T) {
	q := ProductQuery{Barcode: "012345678905", SKU: "AB-1234", Title: "Widget Pro"}
	got := fillTemplate("Barcode: {barcode}, SKU: {sku}, Title: {title}", q)
	assert.Equal(t, "Barcode: 012345678905, SKU: AB-1234, Title: Widget Pro", got)
}
