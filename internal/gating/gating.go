// Package gating renders token-gating code snippets for a collection.
package gating

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"text/template"
)

// PlaceholderContract is substituted when no contract address is given.
const PlaceholderContract = "0xYOUR_CONTRACT_ADDRESS"

// Kind identifies a snippet flavour.
type Kind string

// Snippet kinds.
const (
	KindReact   Kind = "react"
	KindHTML    Kind = "html"
	KindBackend Kind = "backend"
	KindNextAPI Kind = "nextapi"
)

var labels = map[Kind]string{
	KindReact:   "React / Next.js",
	KindHTML:    "Vanilla HTML / JS",
	KindBackend: "Node.js backend",
	KindNextAPI: "Next.js API route",
}

// Label returns the human readable name of k.
func (k Kind) Label() string { return labels[k] }

// Kinds returns every supported kind in name order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(labels))
	for k := range labels {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := labels[k]; !ok {
		return "", fmt.Errorf("unknown snippet kind %q (want one of %v)", s, Kinds())
	}
	return k, nil
}

// Params are the values substituted into a snippet.
type Params struct {
	Contract    string
	RPCURL      string
	NetworkName string
	ChainID     uint64
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("gating").Delims("[[", "]]").ParseFS(templateFS, "templates/*.tmpl"))

// Render returns the snippet of kind k for p.
func Render(k Kind, p Params) (string, error) {
	if _, ok := labels[k]; !ok {
		return "", fmt.Errorf("unknown snippet kind %q", k)
	}
	if p.Contract == "" {
		p.Contract = PlaceholderContract
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(k)+".tmpl", p); err != nil {
		return "", fmt.Errorf("rendering %s snippet: %w", k, err)
	}
	return buf.String(), nil
}
