package sentiment

import "fmt"

const systemPrompt = `You are a blockchain sentiment analyst. Your task is to analyze a summary of token transfers across multiple chains and provide a single sentiment score from -10 (very bearish) to 10 (very bullish). High volume could be bullish or bearish. Respond ONLY with the numerical score.`

func BuildSystemPrompt() string {
	return systemPrompt
}

func BuildUserPrompt(summary string) string {
	return fmt.Sprintf(`Data: "%s"`, summary)
}
