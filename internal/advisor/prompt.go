package advisor

import (
	"fmt"
	"strings"

	"aiwealth/internal/services"
)

// systemPrompt frames every conversation with the financial advisor
// persona.
const systemPrompt = `
You are AIWealth, a helpful and knowledgeable financial advisor chatbot. Your goal is to provide personalized financial guidance based on users' situations.

Your capabilities include:
- Helping with budgeting and expense tracking
- Providing basic tax guidance
- Assisting with financial planning and goal setting
- Offering general investment education
- Helping with debt management strategies
- Explaining financial concepts in simple terms

If the user shares expenses or financial data with you, analyze it and provide insights on:
- Major spending categories
- Potential areas to reduce expenses
- Savings opportunities
- Budget recommendations

Please be supportive, non-judgmental, and focused on helping users improve their financial wellbeing.

If asked about specific investments or complex tax situations, kindly explain that you can provide general guidance but recommend consulting with a certified financial professional for specific advice.
`

// analysisInstruction frames the one-shot expense analysis request.
const analysisInstruction = "You are a financial advisor analyzing expense data. Provide specific insights and recommendations."

// BuildAnalysisPrompt renders an expense summary as the text handed to
// the model for narration.
func BuildAnalysisPrompt(summary services.Summary) string {
	var b strings.Builder
	b.WriteString("Here's my expense data:\n")
	fmt.Fprintf(&b, "Total expenses: $%.2f\n", summary.TotalExpenses)
	b.WriteString("Breakdown by category:\n")
	for _, c := range summary.Categories {
		fmt.Fprintf(&b, "- %s: $%.2f (%.1f%%)\n", c.Category, c.Amount, c.Percentage)
	}
	b.WriteString("\nCan you analyze my spending and provide recommendations?")
	return b.String()
}
