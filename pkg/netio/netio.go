// Package netio loads net and book fixtures from YAML documents, keeping
// worked examples as data files rather than inlining them as Go literals.
package netio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/vic/readback/pkg/book"
	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/term"
)

// Fixture bundles a net and the book it references, as produced by Load.
type Fixture struct {
	Net  *netgraph.Net
	Book *book.Book
}

type document struct {
	Root  *yamlPort  `yaml:"root"`
	Nodes []yamlNode `yaml:"nodes"`
	Links []yamlLink `yaml:"links"`
	Defs  []yamlDef  `yaml:"defs"`
}

type yamlPort struct {
	Node uint64 `yaml:"node"`
	Slot uint8  `yaml:"slot"`
}

type yamlNode struct {
	ID    uint64 `yaml:"id"`
	Kind  string `yaml:"kind"`
	Label uint8  `yaml:"label,omitempty"`
	Value uint32 `yaml:"value,omitempty"`
	DefID uint64 `yaml:"def_id,omitempty"`
}

type yamlLink struct {
	A yamlPort `yaml:"a"`
	B yamlPort `yaml:"b"`
}

type yamlDef struct {
	Name  string     `yaml:"name"`
	Rules []yamlRule `yaml:"rules"`
}

type yamlRule struct {
	Body       *yamlTerm `yaml:"body"`
	HasPattern bool      `yaml:"has_pattern,omitempty"`
}

// yamlTerm is a deliberately small term encoding: just enough of the
// lambda-calculus model to describe generated-definition bodies in a
// fixture, not a general-purpose serialization of every term.Term variant.
type yamlTerm struct {
	Tag   string    `yaml:"tag"`
	Name  string    `yaml:"name,omitempty"`
	Value uint32    `yaml:"value,omitempty"`
	DefID uint64    `yaml:"def_id,omitempty"`
	Fun   *yamlTerm `yaml:"fun,omitempty"`
	Arg   *yamlTerm `yaml:"arg,omitempty"`
	Body  *yamlTerm `yaml:"body,omitempty"`
}

var kindByName = map[string]netgraph.Kind{
	"root":   netgraph.Root,
	"eraser": netgraph.Eraser,
	"con":    netgraph.Con,
	"dup":    netgraph.Dup,
	"mat":    netgraph.Mat,
	"num":    netgraph.Num,
	"op2":    netgraph.Op2,
	"tup":    netgraph.Tup,
	"ref":    netgraph.Ref,
}

// Load reads a fixture from path. A path ending in ".gz" is transparently
// gunzipped before the YAML is parsed, matching how fixtures large enough to
// exercise the ≥10^5-node resource model are kept compressed on disk.
func Load(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "netio: open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "netio: gunzip %s", path)
		}
		defer gz.Close()
		r = gz
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "netio: read %s", path)
	}
	return Parse(raw)
}

// Parse decodes a fixture from an in-memory YAML document, for tests and
// callers that already have the bytes (e.g. embedded fixtures).
func Parse(raw []byte) (*Fixture, error) {
	var doc document
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "netio: decode yaml")
	}

	n := netgraph.NewNet()
	for _, yn := range doc.Nodes {
		kind, ok := kindByName[yn.Kind]
		if !ok {
			return nil, errors.Errorf("netio: unknown node kind %q at id %d", yn.Kind, yn.ID)
		}
		n.AddNode(netgraph.NodeID(yn.ID), netgraph.Node{
			Kind:  kind,
			Label: yn.Label,
			Value: yn.Value,
			DefID: term.DefID(yn.DefID),
		})
	}
	for _, l := range doc.Links {
		n.Link(toPort(l.A), toPort(l.B))
	}
	if doc.Root != nil {
		n.SetRoot(toPort(*doc.Root))
	}

	bk := book.New()
	for i, d := range doc.Defs {
		def := &book.Def{Name: d.Name}
		for _, r := range d.Rules {
			body, err := toTerm(r.Body)
			if err != nil {
				return nil, errors.Wrapf(err, "netio: def %q rule", d.Name)
			}
			def.Rules = append(def.Rules, book.Rule{Body: body, HasPattern: r.HasPattern})
		}
		bk.Defs[term.DefID(i)] = def
	}

	return &Fixture{Net: n, Book: bk}, nil
}

func toPort(p yamlPort) netgraph.Port {
	return netgraph.Port{Node: netgraph.NodeID(p.Node), Slot: netgraph.SlotID(p.Slot)}
}

func toTerm(t *yamlTerm) (term.Term, error) {
	if t == nil {
		return term.Era{}, nil
	}
	switch t.Tag {
	case "era":
		return term.Era{}, nil
	case "var":
		return term.Var{Name: term.Name(t.Name)}, nil
	case "lam":
		body, err := toTerm(t.Body)
		if err != nil {
			return nil, err
		}
		var name *term.Name
		if t.Name != "" {
			n := term.Name(t.Name)
			name = &n
		}
		return term.Lam{Name: name, Body: body}, nil
	case "app":
		fun, err := toTerm(t.Fun)
		if err != nil {
			return nil, err
		}
		arg, err := toTerm(t.Arg)
		if err != nil {
			return nil, err
		}
		return term.App{Fun: fun, Arg: arg}, nil
	case "ref":
		return term.Ref{DefID: term.DefID(t.DefID)}, nil
	case "num":
		return term.Num{Value: t.Value}, nil
	default:
		return nil, fmt.Errorf("netio: unknown term tag %q", t.Tag)
	}
}
