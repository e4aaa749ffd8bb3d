package classify

import (
	"regexp"
	"strings"
)

// Sheet names seen in bundles for which no data model exists yet. Rows from
// these are never imported; the orchestrator only reports them.
var unmodelledLabels = []string{
	"opponents",
	"opposition",
	"coalition",
	"coalition partners",
	"allies",
	"media list",
	"press list",
	"media contacts",
	"endorsements",
	"events",
	"petitions",
	"risks",
}

var unmodelledRegex *regexp.Regexp

func init() {
	alts := make([]string, 0, len(unmodelledLabels))
	for _, lbl := range unmodelledLabels {
		alts = append(alts, regexp.QuoteMeta(lbl))
	}
	unmodelledRegex = regexp.MustCompile(`(?i)^(` + strings.Join(alts, "|") + `)\b`)
}

// Unmodelled returns the label a sheet name matches when it is a known sheet
// without a data model.
func Unmodelled(name string) (string, bool) {
	n := NormalizeName(name)
	if n == "" {
		return "", false
	}
	m := unmodelledRegex.FindString(n)
	if m == "" {
		return "", false
	}
	return m, true
}
