package health

import "regexp"

// sportRule pairs a sport with the patterns that claim a title for it.
// Rules are evaluated in declaration order and the first sport with any
// matching pattern wins, so earlier sports shadow later ones.
type sportRule struct {
	sport    string
	patterns []*regexp.Regexp
}

// sportRules is a best-effort heuristic, not a classifier. Several
// patterns match bare player surnames and can collide with ordinary
// words in unrelated titles; that behaviour is intentional and any
// change to it is a product decision, not a cleanup.
var sportRules = []sportRule{
	{"Baseball", compileAll(
		`\bmlb\b`, `\bbaseball\b`, `\bbowman\b`, `\btopps\b`,
		`\bohtani\b`, `\btrout\b`, `\bjudge\b`, `\bacuna\b`, `\bsoto\b`,
	)},
	{"Basketball", compileAll(
		`\bnba\b`, `\bbasketball\b`, `\bhoops\b`,
		`\blebron\b`, `\bcurry\b`, `\bjordan\b`, `\bwembanyama\b`, `\bdoncic\b`,
	)},
	{"Football", compileAll(
		`\bnfl\b`, `\bfootball\b`, `\bgridiron\b`,
		`\bmahomes\b`, `\bbrady\b`, `\bburrow\b`, `\bstroud\b`,
	)},
	{"Hockey", compileAll(
		`\bnhl\b`, `\bhockey\b`,
		`\bgretzky\b`, `\bmcdavid\b`, `\bbedard\b`,
	)},
	{"Soccer", compileAll(
		`\bsoccer\b`, `\bpremier league\b`, `\buefa\b`, `\bworld cup\b`,
		`\bmessi\b`, `\bronaldo\b`, `\bmbappe\b`,
	)},
	{"Wrestling", compileAll(`\bwwe\b`, `\bwrestling\b`, `\baew\b`)},
	{"Golf", compileAll(`\bpga\b`, `\bgolf\b`, `\btiger woods\b`, `\bscheffler\b`)},
	{"Racing", compileAll(`\bnascar\b`, `\bformula 1\b`, `\bf1\b`, `\bverstappen\b`)},
}

// SportOther is the fallback category when no rule matches.
const SportOther = "Other"

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// ClassifySport assigns a title to the first sport whose pattern set
// contains any match.
func ClassifySport(title string) string {
	for _, rule := range sportRules {
		for _, p := range rule.patterns {
			if p.MatchString(title) {
				return rule.sport
			}
		}
	}
	return SportOther
}
