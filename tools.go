package wikifacts

import (
	"encoding/json"
	"fmt"
)

const recordFactToolName = "record_fact"

const recordFactParameters = `{
  "type": "object",
  "properties": {
    "fact": {
      "type": "string",
      "description": "The fact or insight discovered. Be specific and precise."
    },
    "source_ids": {
      "type": "array",
      "items": {"type": "string"},
      "description": "SOURCE IDs from the article headers that support this fact, e.g. [\"source_1\"]."
    },
    "category": {
      "type": "string",
      "enum": ["definition", "history", "application", "technical", "other"],
      "description": "Category of the fact."
    }
  },
  "required": ["fact", "source_ids", "category"]
}`

func recordFactSpec() ToolSpec {
	return ToolSpec{
		Name:        recordFactToolName,
		Description: "Record a fact discovered while reading the articles. Call once per fact.",
		Parameters:  json.RawMessage(recordFactParameters),
	}
}

type recordFactArgs struct {
	Fact      string    `json:"fact"`
	SourceIDs SourceIDs `json:"source_ids"`
	Category  string    `json:"category"`
}

// dispatchTool executes a tool call against the session's ledger and returns
// the message sent back to the model. It never fails: malformed calls and
// unknown tools get a plain-text note the model can react to.
func (s *session) dispatchTool(call ToolCall) string {
	switch call.Name {
	case recordFactToolName:
		var args recordFactArgs
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return fmt.Sprintf("Could not parse record_fact arguments: %v. Supply fact, source_ids, and category.", err)
		}
		msg := s.ledger.Record(args.Fact, args.SourceIDs, args.Category)
		s.emitStatus(fmt.Sprintf("Recording facts... (%d recorded)", s.ledger.Count()))
		return msg
	default:
		return fmt.Sprintf("Unknown tool: %s", call.Name)
	}
}
