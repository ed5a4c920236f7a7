package content

import (
	"fmt"
	"regexp"
	"strings"
)

const excerptLen = 50

var (
	// tagTokenRe captures one tag, including a trailing ">" when present.
	// A token without ">" is a tag whose bracket was never closed.
	tagTokenRe = regexp.MustCompile(`</?[a-zA-Z][^<>]*>?`)
	tagNameRe  = regexp.MustCompile(`^</?([a-zA-Z][a-zA-Z0-9-]*)`)
)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

type tagStackEntry struct {
	name string
	pos  int
}

type tagToken struct {
	raw string
	pos int
}

// ValidateHTMLSyntax reports structural problems in input: unclosed quotes
// and brackets, unbalanced tags and malformed attribute assignments.
// It works on tag tokens only and does not build a document tree.
func ValidateHTMLSyntax(input string) []string {
	if input == "" {
		return nil
	}

	tokens := tokenize(input)
	var warnings []string

	for _, tok := range tokens {
		if scanAttrs(tok.raw).unclosedQuote {
			warnings = append(warnings, "Unclosed attribute quote in tag: "+excerpt(tok.raw))
		}
		if !strings.HasSuffix(tok.raw, ">") {
			warnings = append(warnings, "Unclosed tag bracket: "+excerpt(tok.raw))
		}
	}

	warnings = append(warnings, checkBalance(tokens)...)

	for _, tok := range tokens {
		if scanAttrs(tok.raw).malformed {
			warnings = append(warnings, "Malformed attribute syntax in tag: "+excerpt(tok.raw))
		}
	}

	return warnings
}

func tokenize(input string) []tagToken {
	locs := tagTokenRe.FindAllStringIndex(input, -1)
	tokens := make([]tagToken, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, tagToken{raw: input[loc[0]:loc[1]], pos: loc[0]})
	}
	return tokens
}

func checkBalance(tokens []tagToken) []string {
	var (
		warnings []string
		stack    []tagStackEntry
	)

	for _, tok := range tokens {
		m := tagNameRe.FindStringSubmatch(tok.raw)
		if m == nil {
			continue
		}
		name := strings.ToLower(m[1])

		if !strings.HasPrefix(tok.raw, "</") {
			if voidTags[name] || selfClosing(tok.raw) {
				continue
			}
			stack = append(stack, tagStackEntry{name: name, pos: tok.pos})
			continue
		}

		if len(stack) == 0 {
			warnings = append(warnings, fmt.Sprintf("Orphaned closing tag </%s> has no matching opening tag", name))
			continue
		}

		top := stack[len(stack)-1]
		if top.name == name {
			stack = stack[:len(stack)-1]
			continue
		}

		warnings = append(warnings, fmt.Sprintf("Mismatched tags: expected </%s> but found </%s>", top.name, name))
		// Drop the nearest matching open tag so one typo does not cascade.
		for i := len(stack) - 2; i >= 0; i-- {
			if stack[i].name == name {
				stack = append(stack[:i], stack[i+1:]...)
				break
			}
		}
	}

	for _, e := range stack {
		warnings = append(warnings, fmt.Sprintf("Unclosed tag <%s> opened at position %d", e.name, e.pos))
	}
	return warnings
}

func selfClosing(raw string) bool {
	return strings.HasSuffix(strings.TrimSpace(strings.TrimSuffix(raw, ">")), "/")
}

type attrScan struct {
	unclosedQuote bool
	malformed     bool
}

// scanAttrs walks a tag token outside of quoted values. An assignment whose
// value does not start with a quote or a word character is malformed.
func scanAttrs(raw string) attrScan {
	var (
		res   attrScan
		quote byte
	)

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '=':
			j := i + 1
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			if j >= len(raw) {
				res.malformed = true
				continue
			}
			switch v := raw[j]; {
			case v == '"' || v == '\'':
				quote = v
				i = j
			case isWordChar(v):
			default:
				res.malformed = true
			}
		}
	}

	res.unclosedQuote = quote != 0
	return res
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen]) + "..."
}
