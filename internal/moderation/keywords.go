package moderation

import "gitlab.com/ranfdev/unimarket/internal/models"

// All entries are lowercase. Matching is substring containment on the
// lowercased input, so entries must not be fragments of everyday words.

var paymentScamKeywords = []string{
	"wire transfer",
	"western union",
	"moneygram",
	"gift card",
	"itunes card",
	"steam card",
	"bitcoin",
	"crypto",
	"send money first",
	"pay upfront",
	"payment upfront",
	"cashier's check",
	"money order",
	"overpayment",
	"pay with zelle only",
}

var mlmKeywords = []string{
	"make money fast",
	"easy money",
	"work from home",
	"be your own boss",
	"guaranteed income",
	"get rich quick",
	"100% free",
	"risk free",
	"no experience needed",
	"join my team",
	"financial freedom",
}

var phishingKeywords = []string{
	"verify your account",
	"confirm your password",
	"login details",
	"account suspended",
	"update your payment",
	"click here",
	"claim your prize",
	"you have won",
}

var shortenerKeywords = []string{
	"bit.ly",
	"tinyurl",
	"goo.gl",
	"t.co/",
	"ow.ly",
	"is.gd",
	"cutt.ly",
}

var offPlatformKeywords = []string{
	"whatsapp",
	"telegram",
	"text me at",
	"dm me on",
	"contact me outside",
	"email me directly",
	"message me on signal",
	"venmo me",
	"cashapp",
}

var urgencyKeywords = []string{
	"act now",
	"limited time offer",
	"urgent sale",
	"only today",
	"today only",
	"before it's too late",
	"first come first serve",
}

var investmentKeywords = []string{
	"investment opportunity",
	"double your money",
	"guaranteed return",
	"guaranteed profit",
	"forex",
	"passive income",
	"trading signals",
	"binary options",
}

var profanityKeywords = []string{
	"fuck",
	"shit",
	"bitch",
	"asshole",
	"bastard",
	"dickhead",
	"motherfucker",
	"porn",
	"nudes",
	"xxx",
	"onlyfans",
	"escort service",
	"sex for",
}

type keywordList struct {
	flag   string
	reason string
	words  []string
}

// builtinLists is walked in order when building the automaton, which fixes
// the order of reasons in a result.
var builtinLists = []keywordList{
	{models.FlagSpam, "payment scam phrase", paymentScamKeywords},
	{models.FlagSpam, "too good to be true offer", mlmKeywords},
	{models.FlagSpam, "phishing phrase", phishingKeywords},
	{models.FlagSpam, "link shortener", shortenerKeywords},
	{models.FlagSpam, "off-platform contact request", offPlatformKeywords},
	{models.FlagSpam, "false urgency", urgencyKeywords},
	{models.FlagSpam, "investment scam phrase", investmentKeywords},
	{models.FlagProfanity, "inappropriate language", profanityKeywords},
}
