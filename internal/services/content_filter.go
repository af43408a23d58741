package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var ErrContentRejected = errors.New("content rejected")

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

// ContentRejection explains why user text was refused. It matches
// ErrContentRejected.
type ContentRejection struct {
	Reason string
}

func (r *ContentRejection) Error() string { return "content rejected: " + r.Reason }

func (r *ContentRejection) Is(target error) bool { return target == ErrContentRejected }

func (r *ContentRejection) Message() string {
	switch r.Reason {
	case "inappropriate_language":
		return "Your review contains inappropriate language."
	case "url_not_allowed":
		return "URLs and web links are not allowed in reviews."
	case "contact_info_not_allowed":
		return "Contact information is not allowed in reviews."
	case "spam_detected":
		return "Your review appears to be spam."
	default:
		return "Your review does not meet our content guidelines."
	}
}

// ContentFilter screens review comments. Patterns are compiled once and the
// filter is safe for concurrent use.
type ContentFilter struct {
	banned       []*regexp.Regexp
	urlPattern   *regexp.Regexp
	emailPattern *regexp.Regexp
	phonePattern *regexp.Regexp
	repeated     *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		banned:       make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:   regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern: regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phonePattern: regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		repeated:     repeatedRunPattern("abcdefghijklmnopqrstuvwxyz!?.", 6),
	}
	for _, word := range BannedWords {
		f.banned = append(f.banned, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns nil when text is acceptable, or a *ContentRejection.
func (f *ContentFilter) Check(text string) error {
	if text == "" {
		return nil
	}
	for _, re := range f.banned {
		if re.MatchString(text) {
			return &ContentRejection{Reason: "inappropriate_language"}
		}
	}
	if f.urlPattern.MatchString(text) {
		return &ContentRejection{Reason: "url_not_allowed"}
	}
	if f.emailPattern.MatchString(text) || f.phonePattern.MatchString(text) {
		return &ContentRejection{Reason: "contact_info_not_allowed"}
	}
	if f.repeated.MatchString(text) {
		return &ContentRejection{Reason: "spam_detected"}
	}
	return nil
}

// repeatedRunPattern matches any of chars repeated at least n times in a row.
// RE2 has no backreferences, so each run is spelled out.
func repeatedRunPattern(chars string, n int) *regexp.Regexp {
	alts := make([]string, 0, len(chars))
	for _, c := range chars {
		alts = append(alts, regexp.QuoteMeta(string(c))+"{"+strconv.Itoa(n)+",}")
	}
	return regexp.MustCompile("(?i)(" + strings.Join(alts, "|") + ")")
}
