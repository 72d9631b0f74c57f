package moderation

import "regexp"

var (
	// North American numbers, with optional +1 prefix and separators.
	phoneRegex = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\b\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	urlRegex   = regexp.MustCompile(`https?://[^\s]+`)
)

// MaxLinks is the number of external links tolerated in a single text.
const MaxLinks = 2

const (
	ReasonPhone = "contains phone number"
	ReasonEmail = "contains email address"
	ReasonLinks = "multiple external links"
)

func HasPhone(text string) bool {
	return phoneRegex.MatchString(text)
}

func HasEmail(text string) bool {
	return emailRegex.MatchString(text)
}

func CountLinks(text string) int {
	return len(urlRegex.FindAllStringIndex(text, -1))
}
