package fragment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DefaultBlockNamespace is the comment prefix used by block envelopes.
const DefaultBlockNamespace = "wp"

const coreBlockPrefix = "core/"

var (
	blockNamespacePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	blockNamePattern      = regexp.MustCompile(`^(?:[a-z][a-z0-9_-]*/)?[a-z][a-z0-9_-]*$`)
)

// Block is one serialized block instance: its variant name, companion
// metadata and markup.
type Block struct {
	Name  string   `json:"name"`
	Attrs Metadata `json:"attrs,omitempty"`
	HTML  string   `json:"html"`
}

func blockOpenPattern(namespace string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)^\s*<!--\s+` + regexp.QuoteMeta(namespace) +
		`:((?:[a-z][a-z0-9_-]*/)?[a-z][a-z0-9_-]*)\s+(?:(\{.*?\})\s+)?(/)?-->`)
}

// ParseBlock splits a comment-delimited block into its parts. It reports
// false when doc does not start with a block comment. Attributes that are
// not valid JSON are dropped and reported through malformed.
func ParseBlock(doc, namespace string) (block Block, ok bool, malformed error) {
	if namespace == "" {
		namespace = DefaultBlockNamespace
	}

	match := blockOpenPattern(namespace).FindStringSubmatchIndex(doc)
	if match == nil {
		return Block{}, false, nil
	}

	name := doc[match[2]:match[3]]
	if !strings.Contains(name, "/") {
		name = coreBlockPrefix + name
	}
	block = Block{Name: name, Attrs: Metadata{}}

	if match[4] >= 0 {
		dec := json.NewDecoder(strings.NewReader(doc[match[4]:match[5]]))
		dec.UseNumber()
		var attrs Metadata
		if err := dec.Decode(&attrs); err != nil {
			malformed = fmt.Errorf("invalid block attributes: %w", err)
		} else if attrs != nil {
			block.Attrs = attrs
		}
	}

	if match[6] >= 0 {
		return block, true, malformed
	}

	rest := doc[match[1]:]
	closing := "<!-- /" + namespace + ":" + doc[match[2]:match[3]] + " -->"
	end := strings.LastIndex(rest, closing)
	if end < 0 {
		if malformed == nil {
			malformed = fmt.Errorf("block %q has no closing comment", name)
		}
		block.HTML = strings.TrimSpace(rest)
		return block, true, malformed
	}

	block.HTML = strings.TrimSpace(rest[:end])
	return block, true, malformed
}

// EncodeBlock serializes block with its comment delimiters. Blocks without
// markup are written in the self-closing form.
func EncodeBlock(block Block, namespace string) (string, error) {
	if namespace == "" {
		namespace = DefaultBlockNamespace
	}
	if !blockNamePattern.MatchString(block.Name) {
		return "", fmt.Errorf("invalid block name %q", block.Name)
	}
	name := strings.TrimPrefix(block.Name, coreBlockPrefix)

	var sb strings.Builder
	sb.WriteString("<!-- ")
	sb.WriteString(namespace)
	sb.WriteString(":")
	sb.WriteString(name)
	sb.WriteString(" ")

	if len(block.Attrs) > 0 {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(block.Attrs); err != nil {
			return "", fmt.Errorf("failed to encode block attributes: %w", err)
		}
		// "--" would terminate the comment early.
		sb.WriteString(strings.ReplaceAll(strings.TrimSpace(buf.String()), "--", `\u002d\u002d`))
		sb.WriteString(" ")
	}

	if block.HTML == "" {
		sb.WriteString("/-->")
		return sb.String(), nil
	}

	sb.WriteString("-->\n")
	sb.WriteString(block.HTML)
	sb.WriteString("\n<!-- /")
	sb.WriteString(namespace)
	sb.WriteString(":")
	sb.WriteString(name)
	sb.WriteString(" -->")
	return sb.String(), nil
}
