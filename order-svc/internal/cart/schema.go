package cart

import (
	"encoding/json"
	"strings"
	"sync"

	"sendr/order-svc/internal/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const entrySchemaURL = "https://sendr.local/schemas/cart-entry.schema.json"

const entrySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "items"],
  "properties": {
    "version": {"const": 2},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["productId", "name", "price", "qty"],
        "properties": {
          "productId": {"type": ["string", "null"]},
          "name": {"type": "string", "minLength": 1},
          "price": {"type": "number", "minimum": 0},
          "qty": {"type": "integer", "minimum": 1},
          "imageUrl": {"type": "string"},
          "unit": {"type": "string"}
        }
      }
    }
  }
}`

// Entry is the versioned value stored under the canonical key.
type Entry struct {
	Version int               `json:"version"`
	Items   []domain.CartItem `json:"items"`
}

var entrySchemaOnce = sync.OnceValues(compileEntrySchema)

func compileEntrySchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(entrySchemaURL, strings.NewReader(entrySchema)); err != nil {
		return nil, err
	}
	return c.Compile(entrySchemaURL)
}

// decodeEntry returns the items of a valid versioned entry.
func decodeEntry(schema *jsonschema.Schema, raw []byte) ([]domain.CartItem, bool) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	if err := schema.Validate(doc); err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if entry.Items == nil {
		entry.Items = []domain.CartItem{}
	}
	return entry.Items, true
}

func encodeEntry(items []domain.CartItem) ([]byte, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	return json.Marshal(Entry{Version: EntryVersion, Items: items})
}

// ValidateItems reports why items would not be accepted as a canonical entry.
func ValidateItems(items []domain.CartItem) error {
	schema, err := entrySchemaOnce()
	if err != nil {
		return err
	}
	payload, err := encodeEntry(items)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
