package moderation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/ranfdev/unimarket/internal/models"
)

// Spam score weights and thresholds.
const (
	titleFlagWeight       = 25
	descFlagWeight        = 20
	titleHighConfWeight   = 20
	descHighConfWeight    = 15
	freePriceWeight       = 5
	absurdPriceWeight     = 35
	baitPriceWeight       = 10
	allCapsTitleWeight    = 20
	exclamationWeight     = 15
	questionWeight        = 10
	dollarWeight          = 15
	emojiWeight           = 10
	shortDescWeight       = 15
	repetitiveDescWeight  = 20
	descPhoneWeight       = 25
	descEmailWeight       = 25
	MaxSpamScore          = 100
	absurdPriceCents      = 1_000_000
	minAllCapsLetters     = 5
	maxTitleExclamations  = 3
	maxTitleQuestions     = 2
	maxTitleDollars       = 2
	maxTitleEmoji         = 3
	minDescriptionLen     = 20
	minRepetitiveWords    = 20
	minUniqueWordFraction = 0.5
)

// CalculateSpamScore scores a listing between 0 and MaxSpamScore. Higher
// means more likely spam.
func CalculateSpamScore(title, description string, priceCents int64) int {
	score := 0

	titleRes := ModerateText(title)
	descRes := ModerateText(description)
	score += titleFlagWeight * len(titleRes.Flags)
	score += descFlagWeight * len(descRes.Flags)
	if titleRes.Confidence == models.ConfidenceHigh {
		score += titleHighConfWeight
	}
	if descRes.Confidence == models.ConfidenceHigh {
		score += descHighConfWeight
	}

	switch {
	case priceCents == 0:
		score += freePriceWeight
	case priceCents > absurdPriceCents:
		score += absurdPriceWeight
	case priceCents == 1 || priceCents == 100:
		score += baitPriceWeight
	}

	if isAllCaps(title) {
		score += allCapsTitleWeight
	}
	if strings.Count(title, "!") > maxTitleExclamations {
		score += exclamationWeight
	}
	if strings.Count(title, "?") > maxTitleQuestions {
		score += questionWeight
	}
	if strings.Count(title, "$") > maxTitleDollars {
		score += dollarWeight
	}
	if countEmoji(title) > maxTitleEmoji {
		score += emojiWeight
	}

	if utf8.RuneCountInString(description) < minDescriptionLen {
		score += shortDescWeight
	}
	if isRepetitive(description) {
		score += repetitiveDescWeight
	}
	if HasPhone(description) {
		score += descPhoneWeight
	}
	if HasEmail(description) {
		score += descEmailWeight
	}

	if score > MaxSpamScore {
		return MaxSpamScore
	}
	if score < 0 {
		return 0
	}
	return score
}

// isAllCaps only looks at cased letters, so caseless scripts never shout.
func isAllCaps(s string) bool {
	upper := 0
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r):
			upper++
		}
	}
	return upper > minAllCapsLetters
}

func isRepetitive(s string) bool {
	words := strings.Fields(strings.ToLower(s))
	if len(words) <= minRepetitiveWords {
		return false
	}
	unique := map[string]struct{}{}
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique))/float64(len(words)) < minUniqueWordFraction
}

var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
}

func countEmoji(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(emojiRanges, r) {
			n++
		}
	}
	return n
}
