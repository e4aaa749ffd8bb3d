package project

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
)

// Brief is the content of a Markdown comms brief.
type Brief struct {
	Audience    *string
	Positioning *string
	Tone        *string
	Summary     *string

	KeyMessages []string
	CTAs        []CTA
	Frames      []Entry
	FAQs        []Entry
}

type CTA struct {
	Text string
	URL  *string
}

// Entry is a titled item: a frame and its description, or a question and its answer.
type Entry struct {
	Title string
	Body  *string
}

// HasProfile reports whether any profile section was present.
func (b *Brief) HasProfile() bool {
	return b.Audience != nil || b.Positioning != nil || b.Tone != nil || b.Summary != nil
}

type section int

const (
	secNone section = iota
	secAudience
	secPositioning
	secTone
	secSummary
	secMessages
	secCTAs
	secFrames
	secFAQs
)

var sectionPatterns = []struct {
	sec section
	re  *regexp.Regexp
}{
	{secAudience, regexp.MustCompile(`^(primary |target )?audiences?$`)},
	{secPositioning, regexp.MustCompile(`^positioning$`)},
	{secTone, regexp.MustCompile(`^(tone|voice)( (and|&) (voice|tone))?$`)},
	{secSummary, regexp.MustCompile(`^(summary|overview)$`)},
	{secMessages, regexp.MustCompile(`^key ?messages?$|^messaging$`)},
	{secCTAs, regexp.MustCompile(`^calls? to action$|^ctas?$`)},
	{secFrames, regexp.MustCompile(`^(comms )?frames?$|^framing$`)},
	{secFAQs, regexp.MustCompile(`^faqs?$|^frequently asked questions$`)},
}

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	reBullet  = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.*)$`)
	reLink    = regexp.MustCompile(`\[([^\]]+)\]\((\S+?)\)`)
	reURL     = regexp.MustCompile(`https?://\S+`)
	reLead    = regexp.MustCompile(`^\*\*(.+?)\*\*\s*[:\-\x{2013}\x{2014}]?\s*(.*)$`)
	reColon   = regexp.MustCompile(`^([^:]{1,120}):\s+(.*)$`)
)

func sectionOf(heading string) section {
	h := strings.ToLower(strings.Join(strings.Fields(strings.Trim(heading, "*_ ")), " "))
	for _, p := range sectionPatterns {
		if p.re.MatchString(h) {
			return p.sec
		}
	}
	return secNone
}

// ParseBrief reads a brief. Level one and two headings open sections; unknown
// sections are ignored. Frames and FAQs are either "### Title" headings
// followed by text, or bullets of the form "**Title**: text".
func ParseBrief(r io.Reader) (*Brief, error) {
	b := &Brief{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	sec := secNone
	var para []string  // running paragraph of a profile section
	var entry *Entry   // open titled entry
	var item *string   // open bullet item (messages, CTAs)
	var itemIsCTA bool // whether item belongs to CTAs
	var fromHeading bool

	flushItem := func() {
		if item == nil {
			return
		}
		text := strings.TrimSpace(*item)
		if text != "" {
			if itemIsCTA {
				b.CTAs = append(b.CTAs, parseCTA(text))
			} else {
				b.KeyMessages = append(b.KeyMessages, stripEmphasis(text))
			}
		}
		item = nil
	}
	flushEntry := func() {
		if entry == nil {
			return
		}
		if entry.Body != nil {
			body := strings.TrimSpace(*entry.Body)
			entry.Body = nilIfEmpty(body)
		}
		if entry.Title != "" {
			if sec == secFAQs {
				b.FAQs = append(b.FAQs, *entry)
			} else {
				b.Frames = append(b.Frames, *entry)
			}
		}
		entry = nil
	}
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		text := nilIfEmpty(strings.TrimSpace(strings.Join(para, "\n")))
		switch sec {
		case secAudience:
			b.Audience = text
		case secPositioning:
			b.Positioning = text
		case secTone:
			b.Tone = text
		case secSummary:
			b.Summary = text
		}
		para = nil
	}
	flushAll := func() {
		flushItem()
		flushEntry()
		flushPara()
	}

	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			if level <= 2 {
				flushAll()
				sec, fromHeading = sectionOf(m[2]), false
				continue
			}
			if sec == secFrames || sec == secFAQs {
				flushEntry()
				entry, fromHeading = &Entry{Title: stripEmphasis(m[2])}, true
				continue
			}
		}

		switch sec {
		case secAudience, secPositioning, secTone, secSummary:
			if trimmed != "" {
				para = append(para, trimmed)
			}

		case secMessages, secCTAs:
			if m := reBullet.FindStringSubmatch(line); m != nil {
				flushItem()
				text := m[1]
				item, itemIsCTA = &text, sec == secCTAs
				continue
			}
			if trimmed == "" {
				flushItem()
				continue
			}
			if item != nil {
				joined := *item + " " + trimmed
				item = &joined
			}

		case secFrames, secFAQs:
			// bullets under a "###" entry are part of its body
			if m := reBullet.FindStringSubmatch(line); m != nil && !fromHeading {
				flushEntry()
				title, body, ok := splitLead(m[1])
				if !ok {
					title = stripEmphasis(m[1])
				}
				entry = &Entry{Title: title, Body: &body}
				continue
			}
			if entry != nil && trimmed != "" {
				body := trimmed
				if entry.Body != nil && *entry.Body != "" {
					body = *entry.Body + "\n" + trimmed
				}
				entry.Body = &body
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read comms brief")
	}
	flushAll()
	return b, nil
}

// splitLead splits "**Title**: text" or "Title: text".
func splitLead(s string) (string, string, bool) {
	if m := reLead.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	if m := reColon.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	return "", "", false
}

func parseCTA(s string) CTA {
	if m := reLink.FindStringSubmatchIndex(s); m != nil {
		url := s[m[4]:m[5]]
		text := strings.TrimSpace(s[:m[0]] + s[m[2]:m[3]] + s[m[1]:])
		return CTA{Text: stripEmphasis(text), URL: &url}
	}
	if loc := reURL.FindStringIndex(s); loc != nil {
		url := strings.TrimRight(s[loc[0]:loc[1]], ").,")
		text := strings.TrimSpace(s[:loc[0]] + s[loc[1]:])
		text = strings.TrimRight(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "(")), ":-")
		return CTA{Text: stripEmphasis(strings.TrimSpace(text)), URL: &url}
	}
	return CTA{Text: stripEmphasis(s)}
}

func stripEmphasis(s string) string {
	s = strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
	return strings.TrimSpace(s)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
