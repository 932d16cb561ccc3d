package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/inkwell/internal/writer"
)

// DraftFormatURI is the resource URI of the draft format contract.
const DraftFormatURI = "inkwell://draft-format"

// DraftFormat describes the plain-text answer layout the draft parser reads,
// so clients producing chapters themselves can match it.
func DraftFormat(l writer.Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Inkwell Draft Format (%s)\n\n", l.Name)
	b.WriteString("A generated chapter is plain text with three labelled fields.\n\n")
	b.WriteString("## Structure\n\n```text\n")
	fmt.Fprintf(&b, "%s<chapter title>\n", l.TitleMarker)
	fmt.Fprintf(&b, "%s<first line of the body>\n", l.BodyMarker)
	b.WriteString("<more body lines>\n")
	fmt.Fprintf(&b, "%s<one short paragraph>\n", l.SummaryMarker)
	b.WriteString("```\n\n")

	b.WriteString("## Rules\n\n")
	fmt.Fprintf(&b, "1. Labels must start the line: `%s`, `%s`, `%s`.\n", l.TitleMarker, l.BodyMarker, l.SummaryMarker)
	b.WriteString("2. The title is a single line. Anything after it and before the next label is dropped.\n")
	b.WriteString("3. Every non-blank line after the body label belongs to the body until the summary label.\n")
	b.WriteString("4. Blank lines are dropped; surrounding whitespace is trimmed.\n")
	fmt.Fprintf(&b, "5. Text without a body label is kept whole as the body, titled `%s` with summary `%s`.\n",
		l.PlaceholderTitle, l.PlaceholderSummary)

	b.WriteString("\n## Plot suggestions\n\n")
	fmt.Fprintf(&b, "One per line as `%s1%s<text>`, `%s2%s<text>`, `%s3%s<text>`. At most three are read.\n",
		l.SuggestionPrefix, l.SuggestionColon,
		l.SuggestionPrefix, l.SuggestionColon,
		l.SuggestionPrefix, l.SuggestionColon)
	return b.String()
}
