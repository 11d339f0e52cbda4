package rag

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadTemplate is returned when a template's declared slots do not match
// the placeholders in its text.
var ErrBadTemplate = errors.New("invalid prompt template")

// ErrMissingSlot is returned when Render is called without a declared slot.
var ErrMissingSlot = errors.New("missing template slot")

var slotPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Template is a prompt with named slots, checked at construction so a typo
// in a placeholder fails at startup instead of producing a broken prompt at
// query time.
type Template struct {
	name  string
	text  string
	slots map[string]struct{}
}

// NewTemplate validates that every declared slot appears in text and that
// text contains no undeclared placeholders.
func NewTemplate(name, text string, slots ...string) (*Template, error) {
	declared := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		declared[s] = struct{}{}
	}

	found := make(map[string]struct{})
	for _, m := range slotPattern.FindAllStringSubmatch(text, -1) {
		found[m[1]] = struct{}{}
	}

	for s := range declared {
		if _, ok := found[s]; !ok {
			return nil, fmt.Errorf("%w: %s declares slot %q not present in text", ErrBadTemplate, name, s)
		}
	}
	for s := range found {
		if _, ok := declared[s]; !ok {
			return nil, fmt.Errorf("%w: %s contains undeclared placeholder %q", ErrBadTemplate, name, s)
		}
	}

	return &Template{name: name, text: text, slots: declared}, nil
}

// Render substitutes all slots. Every declared slot must be provided;
// values may be empty strings.
func (t *Template) Render(values map[string]string) (string, error) {
	out := t.text
	for slot := range t.slots {
		v, ok := values[slot]
		if !ok {
			return "", fmt.Errorf("%w: %s requires %q", ErrMissingSlot, t.name, slot)
		}
		out = strings.ReplaceAll(out, "{"+slot+"}", v)
	}
	return out, nil
}

// Name returns the template's identifier.
func (t *Template) Name() string { return t.name }

const qaTemplateText = `Use the following pieces of context to answer the question at the end.
If you don't know the answer based on the context, just say that you don't know, don't try to make up an answer.

Context:
{context}

Question: {question}

Answer:`

const conversationalTemplateText = `Use the following pieces of context and the conversation history to answer the question at the end.
If you don't know the answer based on the context, just say that you don't know, don't try to make up an answer.

Context:
{context}

Conversation history:
{history}

Question: {question}

Answer:`

func defaultTemplates() (qa, conversational *Template, err error) {
	qa, err = NewTemplate("qa", qaTemplateText, "context", "question")
	if err != nil {
		return nil, nil, err
	}
	conversational, err = NewTemplate("conversational", conversationalTemplateText,
		"context", "history", "question")
	if err != nil {
		return nil, nil, err
	}
	return qa, conversational, nil
}
