package moderation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/utils"
)

type keywordEntry struct {
	flag   string
	reason string
	word   string
}

// keywordMatcher wraps an ahocorasick.Matcher. Match reuses counters stored
// in the matcher, so calls are serialized.
type keywordMatcher struct {
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	entries []keywordEntry
}

func newKeywordMatcher(lists []keywordList) *keywordMatcher {
	entries := []keywordEntry{}
	words := []string{}
	for _, l := range lists {
		for _, w := range l.words {
			entries = append(entries, keywordEntry{l.flag, l.reason, w})
			words = append(words, w)
		}
	}
	return &keywordMatcher{
		matcher: ahocorasick.NewStringMatcher(words),
		entries: entries,
	}
}

// match returns the hit entries in list order.
func (km *keywordMatcher) match(lower string) []keywordEntry {
	km.mu.Lock()
	hits := km.matcher.Match([]byte(lower))
	km.mu.Unlock()

	sort.Ints(hits)
	res := make([]keywordEntry, 0, len(hits))
	for _, h := range hits {
		res = append(res, km.entries[h])
	}
	return res
}

var builtinKeywords = newKeywordMatcher(builtinLists)

// Input is the text to moderate, plus the category of the submission when
// one is known. Category rules only apply when Category is set.
type Input struct {
	Text     string
	Category string
}

type collector struct {
	flags       *utils.OrderedSet
	reasons     *utils.OrderedSet
	ruleReasons *utils.OrderedSet
	matched     []models.ProhibitedItem
}

func newCollector() *collector {
	return &collector{
		flags:       utils.NewOrderedSet(),
		reasons:     utils.NewOrderedSet(),
		ruleReasons: utils.NewOrderedSet(),
		matched:     []models.ProhibitedItem{},
	}
}

func (c *collector) add(flag, reason string) {
	c.flags.Add(flag)
	c.reasons.Add(reason)
}

func (c *collector) addRule(rule models.ProhibitedItem) {
	flag := rule.Category
	if flag == "" {
		flag = models.FlagProhibited
	}
	reason := rule.Description
	if reason == "" {
		reason = "Matched prohibited pattern: " + rule.Pattern
	}
	c.flags.Add(flag)
	if c.reasons.Add(reason) {
		c.ruleReasons.Add(reason)
	}
	c.matched = append(c.matched, rule)
}

func (c *collector) result() models.ModerationResult {
	flags := c.flags.Items()
	return models.ModerationResult{
		IsClean:           len(flags) == 0,
		Flags:             flags,
		Confidence:        confidenceFor(len(flags), c.matched),
		Reasons:           c.reasons.Items(),
		MatchedProhibited: c.matched,
		RuleReasons:       c.ruleReasons.Items(),
	}
}

func confidenceFor(flagCount int, matched []models.ProhibitedItem) models.Confidence {
	conf := models.ConfidenceLow
	switch {
	case flagCount >= 3:
		conf = models.ConfidenceHigh
	case flagCount >= 1:
		conf = models.ConfidenceMedium
	}
	for _, rule := range matched {
		switch rule.Severity {
		case models.SeverityCritical:
			return models.ConfidenceHigh
		case models.SeverityHigh:
			if !conf.AtLeast(models.ConfidenceMedium) {
				conf = models.ConfidenceMedium
			}
		}
	}
	return conf
}

func sweepBuiltin(c *collector, text string) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return
	}
	for _, hit := range builtinKeywords.match(lower) {
		c.add(hit.flag, fmt.Sprintf("%s: %s", hit.reason, hit.word))
	}
	if HasPhone(text) {
		c.add(models.FlagContactInfo, ReasonPhone)
	}
	if HasEmail(text) {
		c.add(models.FlagContactInfo, ReasonEmail)
	}
	if CountLinks(text) > MaxLinks {
		c.add(models.FlagSuspiciousLinks, ReasonLinks)
	}
}

type compileFunc func(pattern string) (*regexp.Regexp, error)

func compileRule(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// ValidatePattern reports whether pattern compiles the way regex and
// url_pattern rules are compiled at match time.
func ValidatePattern(pattern string) error {
	_, err := compileRule(pattern)
	return err
}

func sweepRules(c *collector, in Input, rules []models.ProhibitedItem, compile compileFunc, log zerolog.Logger) {
	lower := strings.ToLower(strings.TrimSpace(in.Text))
	category := strings.TrimSpace(in.Category)

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		matched := false
		switch rule.Type {
		case models.RuleTypeKeyword:
			p := strings.ToLower(strings.TrimSpace(rule.Pattern))
			matched = p != "" && lower != "" && strings.Contains(lower, p)
		case models.RuleTypeRegex, models.RuleTypeURLPattern:
			if lower == "" {
				continue
			}
			re, err := compile(rule.Pattern)
			if err != nil {
				log.Warn().
					Err(err).
					Str("rule_id", rule.ID.String()).
					Str("rule_type", string(rule.Type)).
					Msg("skipping rule with invalid pattern")
				continue
			}
			matched = re.MatchString(in.Text)
		case models.RuleTypeCategory:
			matched = category != "" && strings.EqualFold(category, strings.TrimSpace(rule.Pattern))
		}
		if matched {
			c.addRule(rule)
		}
	}
}

// ModerateText runs the built-in checks only. It does no I/O and is safe for
// concurrent use.
func ModerateText(text string) models.ModerationResult {
	c := newCollector()
	sweepBuiltin(c, text)
	return c.result()
}

// ModerateTextWithRules runs the built-in checks and then the given rules.
// Rules with a pattern that doesn't compile are skipped.
func ModerateTextWithRules(in Input, rules []models.ProhibitedItem, log zerolog.Logger) models.ModerationResult {
	c := newCollector()
	sweepBuiltin(c, in.Text)
	sweepRules(c, in, rules, compileRule, log)
	return c.result()
}

type RuleSource interface {
	ActiveRules(ctx context.Context) ([]models.ProhibitedItem, error)
}

// Engine moderates text against the built-in lists and the active rules of
// a RuleSource, fetched again on every call.
type Engine struct {
	rules RuleSource
	log   zerolog.Logger
	// compiled patterns of the last seen active rules, keyed by pattern text
	regexCache *xsync.MapOf[string, compiledRule]
}

type compiledRule struct {
	re  *regexp.Regexp
	err error
}

func NewEngine(rules RuleSource, log zerolog.Logger) *Engine {
	return &Engine{
		rules:      rules,
		log:        log.With().Str("component", "moderation").Logger(),
		regexCache: xsync.NewMapOf[string, compiledRule](),
	}
}

func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	c, _ := e.regexCache.LoadOrCompute(pattern, func() compiledRule {
		re, err := compileRule(pattern)
		return compiledRule{re, err}
	})
	return c.re, c.err
}

func (e *Engine) ModerateTextWithDatabase(ctx context.Context, text string) (models.ModerationResult, error) {
	return e.Moderate(ctx, Input{Text: text})
}

func (e *Engine) Moderate(ctx context.Context, in Input) (models.ModerationResult, error) {
	rules, err := e.rules.ActiveRules(ctx)
	if err != nil {
		return models.ModerationResult{}, fmt.Errorf("loading active rules: %w", err)
	}

	c := newCollector()
	sweepBuiltin(c, in.Text)
	sweepRules(c, in, rules, e.compile, e.log)
	e.prune(rules)
	return c.result(), nil
}

// prune forgets compiled patterns that no active rule uses anymore.
func (e *Engine) prune(rules []models.ProhibitedItem) {
	if e.regexCache.Size() == 0 {
		return
	}
	live := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		live[r.Pattern] = struct{}{}
	}
	e.regexCache.Range(func(pattern string, _ compiledRule) bool {
		if _, ok := live[pattern]; !ok {
			e.regexCache.Delete(pattern)
		}
		return true
	})
}
