package fpxml

import (
	"fmt"
	"strings"

	"github.com/LeStarch/fplint/internal/model"
)

// ComponentFile is a decoded component definition.
type ComponentFile struct {
	Path        string
	Name        string
	Kind        string // active, passive, queued
	Namespace   string
	Modeler     string
	PortImports []string
	Ports       []PortDecl
	Commands    []model.Command
}

// PortDecl is one port declared by a component.
type PortDecl struct {
	Name     string
	DataType string
	Role     model.Role
	Sync     string
	MaxCount int
	Comment  string
}

type xmlComponent struct {
	Name        string   `xml:"name,attr"`
	Kind        string   `xml:"kind,attr"`
	Namespace   string   `xml:"namespace,attr"`
	Modeler     string   `xml:"modeler,attr"`
	PortImports []string `xml:"import_port_type"`
	Ports       []struct {
		Name      string `xml:"name,attr"`
		DataType  string `xml:"data_type,attr"`
		Kind      string `xml:"kind,attr"`
		MaxNumber string `xml:"max_number,attr"`
		Comment   string `xml:"comment"`
	} `xml:"ports>port"`
	Commands []struct {
		Mnemonic string `xml:"mnemonic,attr"`
		Opcode   string `xml:"opcode,attr"`
		Kind     string `xml:"kind,attr"`
	} `xml:"commands>command"`
}

// ParseComponent decodes the component file at path. consts resolves
// symbolic port cardinalities and may be nil.
func ParseComponent(path string, consts Constants) (*ComponentFile, error) {
	var doc xmlComponent
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%s: component has no name", path)
	}
	cf := &ComponentFile{
		Path:      path,
		Name:      doc.Name,
		Kind:      doc.Kind,
		Namespace: doc.Namespace,
		Modeler:   doc.Modeler,
	}
	for _, imp := range doc.PortImports {
		cf.PortImports = append(cf.PortImports, strings.TrimSpace(imp))
	}
	for _, p := range doc.Ports {
		role, sync, err := parseKind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: port %s: %w", path, p.Name, err)
		}
		count, err := parseCount(p.MaxNumber, consts)
		if err != nil {
			return nil, fmt.Errorf("%s: port %s: %w", path, p.Name, err)
		}
		cf.Ports = append(cf.Ports, PortDecl{
			Name:     p.Name,
			DataType: p.DataType,
			Role:     role,
			Sync:     sync,
			MaxCount: count,
			Comment:  strings.TrimSpace(p.Comment),
		})
	}
	for _, c := range doc.Commands {
		cf.Commands = append(cf.Commands, model.Command{Mnemonic: c.Mnemonic, Opcode: c.Opcode, Kind: c.Kind})
	}
	return cf, nil
}
