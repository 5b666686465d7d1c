package fpxml

import (
	"fmt"

	"github.com/LeStarch/fplint/internal/model"
)

// PortFile is a decoded port interface definition.
type PortFile struct {
	Path      string
	Name      string
	Namespace string
	Args      []model.Arg
	Return    string
}

type xmlInterface struct {
	Name      string `xml:"name,attr"`
	Namespace string `xml:"namespace,attr"`
	Args      []struct {
		Name string `xml:"name,attr"`
		Type string `xml:"type,attr"`
	} `xml:"args>arg"`
	Return *struct {
		Type string `xml:"type,attr"`
	} `xml:"return"`
}

// ParsePort decodes the port interface file at path.
func ParsePort(path string) (*PortFile, error) {
	var doc xmlInterface
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%s: interface has no name", path)
	}
	pf := &PortFile{Path: path, Name: doc.Name, Namespace: doc.Namespace}
	for _, a := range doc.Args {
		pf.Args = append(pf.Args, model.Arg{Name: a.Name, Type: a.Type})
	}
	if doc.Return != nil {
		pf.Return = doc.Return.Type
	}
	return pf, nil
}

// Spec returns the canonical port template the interface defines. It has
// no name, role or cardinality: those belong to the component's port.
func (p *PortFile) Spec() *model.PortSpec {
	return &model.PortSpec{
		Type:      p.Name,
		Namespace: p.Namespace,
		Args:      append([]model.Arg(nil), p.Args...),
		Return:    p.Return,
		Source:    p.Path,
	}
}
