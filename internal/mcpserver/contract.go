package mcpserver

// SummaryFormatContract describes the canonical JSON formats that LLM
// consumers must follow when adding summaries or composing unit content.
const SummaryFormatContract = `# Oikos Content Format Contract

## Summary entries

The ` + "`" + `add_summary` + "`" + ` tool takes a single JSON object:

` + "```" + `json
{
  "unit": "Consumer choice",
  "summary": "Free-form summary text for the unit."
}
` + "```" + `

Rules:

1. **` + "`" + `unit` + "`" + ` is required** and is a string label, normally the title of
   an existing unit. Labels that match no unit are still accepted.
2. **` + "`" + `summary` + "`" + ` is required** and must not be blank or whitespace-only.
3. Summaries append; they never replace earlier entries for the same unit.

## Unit content files

Files placed in the library folder hold one lesson object or an array:

` + "```" + `json
{
  "unit_number": 3,
  "title": "Consumer choice",
  "pages": [
    {
      "page_number": 1,
      "sections": [
        {"id": "intro", "type": "text", "content": "Plain paragraph text."},
        {"id": "budget", "type": "formula", "content": "c1 + c2/(1+r) = m"},
        {
          "id": "chart",
          "type": "graph",
          "content": {
            "title": "Budget line",
            "description": "Two-period budget constraint",
            "graph_type": "two-period-consumer",
            "params": {"r1": 100, "r2": 80, "j": 0.1, "c1_opt": 60}
          }
        }
      ]
    }
  ]
}
` + "```" + `

Rules:

1. ` + "`" + `type` + "`" + ` is one of ` + "`" + `text` + "`" + `, ` + "`" + `formula` + "`" + `, ` + "`" + `graph` + "`" + `.
   For text and formula sections ` + "`" + `content` + "`" + ` is a string; for graph
   sections it is an object as above.
2. Page numbers start at 1. Writing an existing page number replaces that
   page in place.
3. Encoding is UTF-8.
`
