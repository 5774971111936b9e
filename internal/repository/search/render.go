package search

import (
	"fmt"
	"strings"

	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/query"
)

// Render translates an IndexQuery descriptor into an FT.SEARCH query string.
// All conditions are conjunctive; OR semantics live inside individual
// clauses (tag sets, age-range groups, slot sets).
func Render(q *query.IndexQuery) string {
	var parts []string

	for _, cond := range q.Conditions {
		if p := renderCondition(cond); p != "" {
			parts = append(parts, p)
		}
	}
	if q.Text != "" {
		parts = append(parts, fmt.Sprintf("@%s:(%s)", document.FieldSearchText, escapeQuery(q.Text)))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func renderCondition(cond query.Condition) string {
	switch c := cond.(type) {
	case query.TagSet:
		return renderTagSet(c)
	case query.NumericRange:
		return renderNumericRange(c)
	case query.GeoRadius:
		return fmt.Sprintf("@%s:[%g %g %g km]", c.Field, c.Lon, c.Lat, c.KM)
	case query.AgeOverlap:
		return renderAgeOverlap(c)
	case query.SlotSet:
		return renderTagSet(query.TagSet{Field: c.Field, Values: c.Slots})
	default:
		return ""
	}
}

func renderTagSet(c query.TagSet) string {
	if len(c.Values) == 0 {
		return ""
	}
	escaped := make([]string, len(c.Values))
	for i, v := range c.Values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", c.Field, strings.Join(escaped, "|"))
}

func renderNumericRange(c query.NumericRange) string {
	minBound := "-inf"
	maxBound := "+inf"
	if c.Min != nil {
		minBound = fmt.Sprintf("%g", *c.Min)
	}
	if c.Max != nil {
		maxBound = fmt.Sprintf("%g", *c.Max)
	}
	return fmt.Sprintf("@%s:[%s %s]", c.Field, minBound, maxBound)
}

// renderAgeOverlap renders the interval overlap test as an OR group: a
// listing matches when any requested [min, max] intersects its own range,
// i.e. listing.min_age <= r.max AND listing.max_age >= r.min.
func renderAgeOverlap(c query.AgeOverlap) string {
	if len(c.Ranges) == 0 {
		return ""
	}
	groups := make([]string, len(c.Ranges))
	for i, r := range c.Ranges {
		groups[i] = fmt.Sprintf("(@%s:[-inf %d] @%s:[%d +inf])",
			document.FieldMinAge, r.Max, document.FieldMaxAge, r.Min)
	}
	if len(groups) == 1 {
		return groups[0]
	}
	return "(" + strings.Join(groups, " | ") + ")"
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
