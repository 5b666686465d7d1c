package fpxml

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

// TopologyFile is a decoded topology wiring list.
type TopologyFile struct {
	Path             string
	Name             string
	ComponentImports []string
	Instances        []Instance
	Connections      []Connection
}

// Instance declares one named component instance.
type Instance struct {
	Name      string
	Type      string
	Namespace string
	BaseID    string
}

// Endpoint is one side of a connection.
type Endpoint struct {
	Component string
	Port      string
	Type      string
	Num       int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s.%s:%d", e.Component, e.Port, e.Num)
}

// Connection is a one-directional source to target wire.
type Connection struct {
	Name    string
	Comment string
	Source  Endpoint
	Target  Endpoint
}

type xmlEndpoint struct {
	Component string `xml:"component,attr"`
	Port      string `xml:"port,attr"`
	Type      string `xml:"type,attr"`
	Num       string `xml:"num,attr"`
}

type xmlAssembly struct {
	XMLName   xml.Name
	Name      string   `xml:"name,attr"`
	Imports   []string `xml:"import_component_type"`
	Instances []struct {
		Name      string `xml:"name,attr"`
		Type      string `xml:"type,attr"`
		Namespace string `xml:"namespace,attr"`
		BaseID    string `xml:"base_id,attr"`
	} `xml:"instance"`
	Connections []struct {
		Name    string      `xml:"name,attr"`
		Comment string      `xml:"comment"`
		Source  xmlEndpoint `xml:"source"`
		Target  xmlEndpoint `xml:"target"`
	} `xml:"connection"`
}

// ParseTopology decodes the topology file at path. A topology without a
// name attribute is named after its file.
func ParseTopology(path string) (*TopologyFile, error) {
	var doc xmlAssembly
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	if doc.XMLName.Local != "assembly" && doc.XMLName.Local != "deployment" {
		return nil, fmt.Errorf("%s: unexpected root element <%s>", path, doc.XMLName.Local)
	}
	tf := &TopologyFile{Path: path, Name: doc.Name}
	if tf.Name == "" {
		tf.Name = strings.TrimSuffix(filepath.Base(path), "TopologyAppAi.xml")
	}
	for _, imp := range doc.Imports {
		tf.ComponentImports = append(tf.ComponentImports, strings.TrimSpace(imp))
	}
	for _, inst := range doc.Instances {
		if inst.Name == "" || inst.Type == "" {
			return nil, fmt.Errorf("%s: instance requires name and type", path)
		}
		tf.Instances = append(tf.Instances, Instance{
			Name:      inst.Name,
			Type:      inst.Type,
			Namespace: inst.Namespace,
			BaseID:    inst.BaseID,
		})
	}
	for _, c := range doc.Connections {
		src, err := endpoint(c.Source)
		if err != nil {
			return nil, fmt.Errorf("%s: connection %s source: %w", path, c.Name, err)
		}
		dst, err := endpoint(c.Target)
		if err != nil {
			return nil, fmt.Errorf("%s: connection %s target: %w", path, c.Name, err)
		}
		tf.Connections = append(tf.Connections, Connection{
			Name:    c.Name,
			Comment: strings.TrimSpace(c.Comment),
			Source:  src,
			Target:  dst,
		})
	}
	return tf, nil
}

func endpoint(x xmlEndpoint) (Endpoint, error) {
	if x.Component == "" || x.Port == "" {
		return Endpoint{}, fmt.Errorf("endpoint requires component and port")
	}
	n, err := parseIndex(x.Num)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Component: x.Component, Port: x.Port, Type: x.Type, Num: n}, nil
}
