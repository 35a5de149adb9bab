package wikifacts

import (
	"encoding/json"
	"fmt"
)

// Entity is one cataloged person, place, event, or idea.
type Entity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	SourceIDs   SourceIDs `json:"source_ids"`
}

// Relation links two cataloged entities.
type Relation struct {
	FromEntity  string    `json:"from_entity"`
	ToEntity    string    `json:"to_entity"`
	Description string    `json:"description"`
	Date        string    `json:"date,omitempty"`
	SourceIDs   SourceIDs `json:"source_ids"`
}

// Iteration records one research round: the query issued, a summary of what
// it produced, and the sources it surfaced.
type Iteration struct {
	Query   string   `json:"query"`
	Summary string   `json:"summary"`
	Sources []Source `json:"sources"`
}

// StructuredDocument is the final external contract of a JSON-mode query.
// Sources and facts are always present, possibly empty; the entity catalogs,
// relations, and iterations default to empty; summary may be absent.
type StructuredDocument struct {
	Query      string      `json:"query"`
	Sources    []Source    `json:"sources"`
	Facts      []Fact      `json:"facts"`
	People     []Entity    `json:"people"`
	Places     []Entity    `json:"places"`
	Events     []Entity    `json:"events"`
	Ideas      []Entity    `json:"ideas"`
	Relations  []Relation  `json:"relations"`
	Iterations []Iteration `json:"iterations"`
	Summary    *string     `json:"summary"`
}

// normalize replaces nil sequence fields with empty ones so the serialized
// document always carries arrays, never nulls.
func (d *StructuredDocument) normalize() {
	if d.Sources == nil {
		d.Sources = []Source{}
	}
	if d.Facts == nil {
		d.Facts = []Fact{}
	}
	if d.People == nil {
		d.People = []Entity{}
	}
	if d.Places == nil {
		d.Places = []Entity{}
	}
	if d.Events == nil {
		d.Events = []Entity{}
	}
	if d.Ideas == nil {
		d.Ideas = []Entity{}
	}
	if d.Relations == nil {
		d.Relations = []Relation{}
	}
	if d.Iterations == nil {
		d.Iterations = []Iteration{}
	}
}

// JSON renders the document as indented JSON.
func (d *StructuredDocument) JSON() (string, error) {
	d.normalize()
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ValidationError reports a candidate document that does not conform to the
// structured output contract. It is deliberately distinct from transport or
// provider errors: the caller recovers from it via the fallback chain.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "structured output validation failed: " + e.Reason
}

// ParseDocument validates raw model output against the structured document
// contract. Unlike FactLedger.Record it never coerces: a candidate missing
// required fields or with fields of the wrong shape is rejected with a
// *ValidationError carrying a human-readable message.
func ParseDocument(raw []byte) (*StructuredDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ValidationError{Reason: "output is not a JSON object"}
	}

	if err := requireString(fields, "query"); err != nil {
		return nil, err
	}
	if err := requireArray(fields, "sources"); err != nil {
		return nil, err
	}
	if err := requireArray(fields, "facts"); err != nil {
		return nil, err
	}

	var doc StructuredDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	for i, f := range doc.Facts {
		if f.Fact == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("facts[%d]: fact text is empty", i)}
		}
		if f.SourceIDs == nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("facts[%d]: missing source_ids", i)}
		}
		if f.Category == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("facts[%d]: missing category", i)}
		}
		if !validCategories[f.Category] {
			return nil, &ValidationError{Reason: fmt.Sprintf("facts[%d]: unknown category %q", i, f.Category)}
		}
	}

	doc.normalize()
	return &doc, nil
}

func requireString(fields map[string]json.RawMessage, key string) error {
	raw, ok := fields[key]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("missing required field %q", key)}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("field %q must be a string", key)}
	}
	return nil
}

func requireArray(fields map[string]json.RawMessage, key string) error {
	raw, ok := fields[key]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("missing required field %q", key)}
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("field %q must be an array", key)}
	}
	return nil
}

// documentSchema is the JSON schema handed to the model for
// schema-constrained generation of the final document.
const documentSchema = `{
  "type": "object",
  "properties": {
    "query": {"type": "string"},
    "sources": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "title": {"type": "string"},
          "url": {"type": "string"},
          "last_modified": {"type": "string"},
          "word_count": {"type": "integer"}
        },
        "required": ["id", "title", "url", "last_modified", "word_count"]
      }
    },
    "facts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "fact": {"type": "string"},
          "source_ids": {"type": "array", "items": {"type": "string"}},
          "category": {"type": "string", "enum": ["definition", "history", "application", "technical", "other"]}
        },
        "required": ["fact", "source_ids", "category"]
      }
    },
    "people": {"type": "array", "items": {"$ref": "#/$defs/entity"}},
    "places": {"type": "array", "items": {"$ref": "#/$defs/entity"}},
    "events": {"type": "array", "items": {"$ref": "#/$defs/entity"}},
    "ideas": {"type": "array", "items": {"$ref": "#/$defs/entity"}},
    "relations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "from_entity": {"type": "string"},
          "to_entity": {"type": "string"},
          "description": {"type": "string"},
          "date": {"type": "string"},
          "source_ids": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["from_entity", "to_entity", "description", "source_ids"]
      }
    },
    "iterations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "query": {"type": "string"},
          "summary": {"type": "string"},
          "sources": {"type": "array"}
        },
        "required": ["query", "summary", "sources"]
      }
    },
    "summary": {"type": ["string", "null"]}
  },
  "required": ["query", "sources", "facts"],
  "$defs": {
    "entity": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "description": {"type": "string"},
        "type": {"type": "string", "enum": ["person", "place", "event", "idea"]},
        "source_ids": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["id", "name", "description", "type", "source_ids"]
    }
  }
}`

// DocumentSchema returns the JSON schema for the structured document.
func DocumentSchema() json.RawMessage {
	return json.RawMessage(documentSchema)
}
