package research

import "github.com/sashabaranov/go-openai/jsonschema"

// allFieldsSchema constrains the search-everything attempt so the model
// returns page/image pairs instead of prose.
var allFieldsSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"items": {
			Type:        jsonschema.Array,
			Description: "Product pages found for this exact product",
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"source_url": {
						Type:        jsonschema.String,
						Description: "URL of the product page the images came from",
					},
					"image_urls": {
						Type:        jsonschema.Array,
						Description: "Direct URLs of product images on that page",
						Items:       &jsonschema.Definition{Type: jsonschema.String},
					},
				},
				Required:             []string{"source_url", "image_urls"},
				AdditionalProperties: false,
			},
		},
	},
	Required:             []string{"items"},
	AdditionalProperties: false,
}

// validationSchema is the contract for the model-only validation fallback.
var validationSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"validated_pages": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"url": {Type: jsonschema.String},
					"validation_method": {
						Type:        jsonschema.String,
						Description: "Which identifier matched: barcode, sku, or title",
					},
					"image_urls": {
						Type:  jsonschema.Array,
						Items: &jsonschema.Definition{Type: jsonschema.String},
					},
					"product_description": {Type: jsonschema.String},
					"reasoning":           {Type: jsonschema.String},
				},
				Required:             []string{"url", "validation_method", "image_urls", "product_description", "reasoning"},
				AdditionalProperties: false,
			},
		},
		"invalid_urls": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"url":       {Type: jsonschema.String},
					"reasoning": {Type: jsonschema.String},
				},
				Required:             []string{"url", "reasoning"},
				AdditionalProperties: false,
			},
		},
		"total_validated_images": {Type: jsonschema.Integer},
	},
	Required:             []string{"validated_pages", "invalid_urls", "total_validated_images"},
	AdditionalProperties: false,
}
