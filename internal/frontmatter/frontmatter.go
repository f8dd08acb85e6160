// Package frontmatter separates a leading `---` delimited YAML block from
// the Markdown body of a document.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFrontMatter wraps YAML errors returned by Decode and Parse.
var ErrInvalidFrontMatter = errors.New("invalid front matter")

const delimiter = "---"

// State is the position of the splitter within a document.
type State uint8

const (
	// Start: no front matter opened yet, only blank lines seen.
	Start State = iota
	// Head: inside an opened front matter block.
	Head
	// Body: front matter closed, or ruled out.
	Body
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Head:
		return "head"
	case Body:
		return "body"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type lineClass uint8

const (
	other lineClass = iota
	blank
	delim
)

type sink uint8

const (
	drop sink = iota
	toHead
	toBody
)

type step struct {
	next State
	out  sink
}

// transitions is the whole front matter policy. A `---` is only a delimiter
// while the document has shown nothing but blank lines (Start) or while a
// block is open (Head); once in Body, nothing leaves Body.
var transitions = [...][3]step{
	Start: {other: {Body, toBody}, blank: {Start, drop}, delim: {Head, drop}},
	Head:  {other: {Head, toHead}, blank: {Head, toHead}, delim: {Body, drop}},
	Body:  {other: {Body, toBody}, blank: {Body, toBody}, delim: {Body, toBody}},
}

// transition returns the state after line and where line goes.
func transition(state State, line string) (State, sink) {
	s := transitions[state][classify(line)]
	return s.next, s.out
}

func classify(line string) lineClass {
	switch strings.TrimSpace(line) {
	case delimiter:
		return delim
	case "":
		return blank
	default:
		return other
	}
}

// Document is a document split into its front matter and body.
type Document struct {
	// FrontMatter is the text between the delimiters, without them.
	FrontMatter string
	Body        string
}

// Split separates the front matter of doc from its body. It never fails: a
// document without a leading `---` has empty front matter, and a block that
// is never closed is returned whole as front matter with an empty body.
// Both parts use "\n" line endings whatever doc used.
func Split(doc string) Document {
	var head, rest strings.Builder
	state := Start
	for _, line := range lines(doc) {
		var out sink
		state, out = transition(state, line)
		switch out {
		case toHead:
			head.WriteString(line)
			head.WriteByte('\n')
		case toBody:
			rest.WriteString(line)
			rest.WriteByte('\n')
		}
	}
	return Document{FrontMatter: head.String(), Body: rest.String()}
}

// lines splits doc on "\n", dropping the "\r" of each "\r\n" terminator and
// the empty remainder after a final newline. A "\r" ending an unterminated
// last line is content and stays.
func lines(doc string) []string {
	if doc == "" {
		return nil
	}
	out := strings.Split(doc, "\n")
	last := len(out) - 1
	if out[last] == "" {
		out = out[:last]
	}
	for i := range out {
		if i < last {
			out[i] = strings.TrimSuffix(out[i], "\r")
		}
	}
	return out
}

// Decode parses front matter text into a map. Empty or blank text decodes
// to an empty map.
func Decode(frontMatter string) (map[string]any, error) {
	meta := map[string]any{}
	if strings.TrimSpace(frontMatter) == "" {
		return meta, nil
	}
	if err := yaml.Unmarshal([]byte(frontMatter), &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, nil
}

// Parse splits raw and decodes its front matter.
func Parse(raw []byte) (meta map[string]any, body string, err error) {
	doc := Split(string(raw))
	meta, err = Decode(doc.FrontMatter)
	if err != nil {
		return nil, "", err
	}
	return meta, doc.Body, nil
}
