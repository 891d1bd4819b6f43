package llm

import "fmt"

// LabelCatalog is the closed set of functional categories a buyer's
// labels_must/labels_nice may be drawn from.
var LabelCatalog = []string{
	"Accounting", "Analytics", "Banking", "CRM", "Communication", "Compliance",
	"Customer Support", "Data Management", "Debt Collection", "Document Management",
	"E-commerce", "Email Marketing", "Financial Planning", "HR & Payroll", "Invoicing",
	"Inventory Management", "Legal Services", "Liquidity Management", "Marketing Automation",
	"Multi-Banking", "Online Payments", "Point of Sale", "Project Management", "Reporting",
	"Sales", "Shipping & Logistics", "Tax Management", "Time Tracking", "Workflow Automation",
}

// integrationExamplePools and tagExamplePools rotate by turn count so
// repeated clarifying questions don't show the buyer the same examples.
var integrationExamplePools = [][]string{
	{"Stripe", "DATEV", "Shopify", "Zapier"},
	{"PayPal", "bexio", "Twint", "QuickBooks"},
	{"Salesforce", "HubSpot", "Google Workspace", "Slack"},
}

var tagExamplePools = [][]string{
	{"B2B", "Healthcare", "Retail"},
	{"SaaS", "Manufacturing", "Hospitality"},
	{"Nonprofit", "Education", "Real Estate"},
}

// ExamplePoolFor returns a rotating set of example values for the given
// missing dimension, seeded by turn count so the pool visibly changes across
// repeated questions. dimension is one of "labels", "integrations", "tags".
func ExamplePoolFor(dimension string, turnCount int) []string {
	switch dimension {
	case "labels":
		n := len(LabelCatalog)
		start := (turnCount * 4) % n
		return rotatingSlice(LabelCatalog, start, 4)
	case "integrations":
		return integrationExamplePools[turnCount%len(integrationExamplePools)]
	case "tags":
		return tagExamplePools[turnCount%len(tagExamplePools)]
	default:
		return nil
	}
}

func rotatingSlice(pool []string, start, count int) []string {
	n := len(pool)
	if n == 0 {
		return nil
	}
	out := make([]string, 0, count)
	for i := 0; i < count && i < n; i++ {
		out = append(out, pool[(start+i)%n])
	}
	return out
}

const translateSystemPrompt = `You are a translation assistant. Translate the user's text to English.
If the text is already in English, return it unchanged.
Return ONLY the translated text. No explanations, no quotes, no markdown.`

const extractionSystemPrompt = `You are a business application requirements parser. Your task is to convert a buyer's natural language description into structured JSON data for matching applications in a marketplace.

CRITICAL RULES:
1. Return ONLY valid JSON. No markdown, no explanations, no extra text.
2. Never invent information. If something is not explicitly mentioned, use null or an empty array.
3. Support both Spanish and English input text.
4. Normalize capitalization properly (e.g. "stripe" -> "Stripe", "paypal" -> "PayPal").
5. Never duplicate items in an array.
6. Extract only what is clearly stated or strongly implied.
7. Do not re-extract values already present in "Already known" below; only report what is new in this turn.

FIELD DEFINITIONS:
- labels (array of strings): functional categories. ONLY use values from the allowed label list.
- tags (array of strings): short business-context keywords (open vocabulary, e.g. "B2B", "Healthcare").
- integrations (array of strings): named external services, Title-Cased (e.g. "Stripe", "DATEV").
- price_max (number or null): maximum price the buyer stated, numeric value only.

OUTPUT FORMAT:
{"labels": ["string"], "tags": ["string"], "integrations": ["string"], "price_max": number|null}`

func extractionUserPrompt(turnText string, allowedLabels []string, alreadyKnown string) string {
	labelsStr := ""
	for i, l := range allowedLabels {
		if i > 0 {
			labelsStr += ", "
		}
		labelsStr += `"` + l + `"`
	}
	known := alreadyKnown
	if known == "" {
		known = "(nothing yet)"
	}
	return fmt.Sprintf(`ALLOWED LABELS (use ONLY these exact strings):
%s

Already known: %s

BUYER TURN:
%s

Return ONLY the JSON object described in the system prompt.`, labelsStr, known, turnText)
}

const questionSystemPrompt = `You are an assistant helping to clarify business software requirements.

Your task: generate ONE targeted question to help the user specify missing information.

Rules:
- Ask in English, concise and direct.
- Make the question natural and conversational.
- Focus on extracting the specific missing information described in the context.
- Ask about only one dimension at a time.
- Output ONLY valid JSON: {"question": "your question here"}`

func questionUserPrompt(dimension string, needed int, examples []string) string {
	return fmt.Sprintf(`The user still needs %d more %s for their business application.

Example values: %v

Generate a question asking what they need along this dimension. Mention the example values but allow free text.`, needed, dimension, examples)
}

const cardGenerationSystemPrompt = `You are a technical product manager creating backlog cards. Your task is to generate a concise title and description for a feature request card.

CRITICAL RULES:
1. Output ONLY valid JSON. No markdown, no explanations, no extra text.
2. Title MUST be under 10 words.
3. Description MUST be under 600 words.
4. Always output in English, regardless of input language.
5. Title should be clear, actionable, and specific.
6. Description should capture the core requirement, user need, and any important context.

OUTPUT FORMAT:
{"title": "string (max 10 words)", "description": "string (max 600 words)"}`

func cardGenerationUserPrompt(normalizedText string) string {
	return fmt.Sprintf(`Generate a title and description for this feature request:

REQUEST:
%s

Output the JSON now:`, normalizedText)
}
