package config

import "strings"

// Prompts holds the stage prompt templates. Search templates are keyed by
// the attempt's prompt key. Placeholders use {name} syntax and are filled
// with Fill; unknown placeholders are left alone.
type Prompts struct {
	Search   map[string]string `toml:"search"`
	Filter   string            `toml:"filter"`
	Validate string            `toml:"validate"`
}

// SearchPrompt returns the template for a prompt key, falling back to the
// generic search template when the key has no dedicated entry.
func (p Prompts) SearchPrompt(key string) string {
	if t, ok := p.Search[key]; ok && t != "" {
		return t
	}
	return p.Search["default"]
}

// Fill substitutes {placeholder} values into a template.
func Fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

const defaultSearchPrompt = `You are a product research assistant. Use the {tool_name} to search for the product identified below. Return ONLY a JSON object of the form {"results": [{"title": "...", "url": "...", "snippet": "..."}]} listing pages that may describe this exact product. If the search returns nothing, return {"total_results": 0}.

Product barcode/UPC: {barcode}
Product SKU/part number: {sku}
Product title: {title}`

const defaultAllFieldsPrompt = `You are a product research assistant with web browsing. Find retailer or manufacturer pages that describe this exact product, visit them, and extract the product image URLs from each page. Return a JSON object of the form {"items": [{"source_url": "...", "image_urls": ["..."]}]}. Only include pages you verified describe this exact product.

Product barcode/UPC: {barcode}
Product SKU/part number: {sku}
Product title: {title}`

const defaultFilterPrompt = `You are filtering web search results for a product research pipeline. From the search results below, keep only URLs that plausibly lead to a page about this exact product (retailer listings, manufacturer pages, marketplace listings). Drop forums, videos, news and unrelated products. Return ONLY a JSON object {"urls": ["..."], "total_urls": N}.

Product barcode/UPC: {barcode}
Product SKU/part number: {sku}
Product title: {title}

Search results:
{search_results}`

const defaultValidatePrompt = `You are validating candidate product pages. For each URL below, determine whether the page describes the exact product identified by the {search_type} given. A page is valid only if the {search_type} or an exact product match appears on it. For valid pages extract every product image URL, a short description, the brand, the weight and the dimensions in inches. Return ONLY a JSON object:
{"validated_pages": [{"url": "...", "validation_method": "{search_type}", "image_urls": ["..."], "reasoning": "...", "product_description": "...", "brand": "...", "weight": {"unit_of_measure": "", "value": null}, "product_dimensions": {"length": null, "width": null, "height": null}}], "invalid_urls": [{"url": "...", "reasoning": "..."}], "total_validated_images": N}

Product barcode/UPC: {barcode}
Product SKU/part number: {sku}
Product title: {title}

URLs to validate: {urls}`

func defaultPrompts() Prompts {
	return Prompts{
		Search: map[string]string{
			"default":        defaultSearchPrompt,
			"all_fields_web": defaultAllFieldsPrompt,
		},
		Filter:   defaultFilterPrompt,
		Validate: defaultValidatePrompt,
	}
}
