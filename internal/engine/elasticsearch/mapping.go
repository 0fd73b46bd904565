package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for product documents.
const DefaultIndexName = "ecomstore_products"

// buildIndexMapping returns the full JSON mapping for the product document
// index, including a custom edge-ngram analyzer for autocomplete on the name.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":              { "type": "keyword" },
      "product_id":      { "type": "long" },
      "slug":            { "type": "keyword" },
      "name":            { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "description":     { "type": "text" },
      "searchable_text": { "type": "text" },
      "brand_id":        { "type": "long" },
      "brand_name":      { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "category_id":     { "type": "long" },
      "category_name":   { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "category_slug":   { "type": "keyword" },
      "status":          { "type": "keyword" },
      "min_price":       { "type": "double" },
      "max_price":       { "type": "double" },
      "variant_skus":    { "type": "keyword" },
      "variant_values":  { "type": "keyword" },
      "attribute_names": { "type": "keyword" },
      "attribute_values":{ "type": "keyword" },
      "filter_values":   { "type": "keyword" },
      "product_images":  { "type": "keyword", "index": false },
      "variants":        { "type": "object", "enabled": false },
      "created_at":      { "type": "date" },
      "updated_at":      { "type": "date" }
    }
  }
}`
}
