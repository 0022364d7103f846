package draft

import "strings"

const fence = "```"

// wrapperLangs are the info strings models put on a fence that wraps the whole
// document. A fence with any other info string is a code block inside it.
var wrapperLangs = map[string]bool{
	"jsx":      true,
	"markdown": true,
	"md":       true,
}

// StripFence returns the interior of a response wrapped in a fenced code block.
// A wrapper either encloses the whole trimmed text, or opens with a document
// info string (jsx, markdown) after some preamble and closes at the last fence
// line, dropping any remarks around it. Text that is not wrapped comes back
// unchanged, and nested wrappers are peeled until none remain so the result is
// a fixed point.
func StripFence(text string) string {
	for {
		inner, ok := unwrap(text)
		if !ok {
			inner, ok = extract(text)
		}
		if !ok {
			return text
		}
		text = inner
	}
}

func unwrap(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if len(t) < 2*len(fence) || !strings.HasPrefix(t, fence) || !strings.HasSuffix(t, fence) {
		return "", false
	}
	body := t[len(fence) : len(t)-len(fence)]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// info string such as "markdown" or "jsx"
		if strings.Contains(body[:nl], "`") {
			return "", false
		}
		body = body[nl+1:]
	}
	return trimNewline(body), true
}

// extract finds the first line opening a wrapper fence and the last closing
// fence line after it.
func extract(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	open := -1
	for i, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, fence) && wrapperLangs[strings.ToLower(strings.TrimSpace(l[len(fence):]))] {
			open = i
			break
		}
	}
	if open < 0 {
		return "", false
	}
	for i := len(lines) - 1; i > open; i-- {
		if strings.TrimSpace(lines[i]) == fence {
			return trimNewline(strings.Join(lines[open+1:i], "\n")), true
		}
	}
	return "", false
}

func trimNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
