package agentoracle

import "fmt"

// Narrate turns a short event description into a sentence or two of
// readable prose for a city dashboard or newsletter feed. Returns an error
// rather than a fallback string on failure — callers treat narration as
// optional decoration and should skip display, not synthesize text.
func Narrate(client *Client, cityName string, eventDesc string) (string, error) {
	if !client.Enabled() {
		return "", fmt.Errorf("agent oracle: client not configured")
	}

	system := `You write short, vivid local-news sentences about a simulated city for a live dashboard. Narrate the given event in 1-2 sentences, present tense, newspaper style. Do not mention that the city is simulated.`

	prompt := fmt.Sprintf("City: %s\nEvent: %s", cityName, eventDesc)

	return client.Complete(system, prompt, 150)
}
