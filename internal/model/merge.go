package model

// merge.go - fill-gaps merge of two partial descriptions of one entity.
//
// Merge(authoritative, supplement) completes authoritative with whatever the
// supplement knows, and fails with an InconsistencyError when both carry a
// populated value that disagrees. It is not commutative: a populated
// authoritative value is never replaced.
//
// Every entity enumerates its mergeable attributes through fields(); the
// merge never inspects anything that is not listed there.

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// fieldKind selects the comparison rule for a field.
type fieldKind int

const (
	// plainField values must match, strings case-insensitively.
	plainField fieldKind = iota
	// typeField values may differ by namespace qualification.
	typeField
	// bookkeepingField values are filled when empty but never compared.
	bookkeepingField
)

// field is one mergeable attribute. ptr points into the entity and is one of
// *string, *int, *Role, *[]Arg, *[]Command or **Target.
type field struct {
	name string
	kind fieldKind
	ptr  any
}

func (p *PortSpec) fields() []field {
	return []field{
		{"name", plainField, &p.Name},
		{"type", typeField, &p.Type},
		{"namespace", plainField, &p.Namespace},
		{"role", plainField, &p.Role},
		{"max_count", plainField, &p.MaxCount},
		{"sync", plainField, &p.Sync},
		{"comment", bookkeepingField, &p.Comment},
		{"args", plainField, &p.Args},
		{"return", typeField, &p.Return},
		{"source", bookkeepingField, &p.Source},
	}
}

func (p *PortInstance) fields() []field {
	return []field{
		{"component", plainField, &p.Component},
		{"name", plainField, &p.Name},
		{"type", typeField, &p.Type},
		{"namespace", plainField, &p.Namespace},
		{"role", plainField, &p.Role},
		{"max_count", plainField, &p.MaxCount},
		{"sync", plainField, &p.Sync},
		{"comment", bookkeepingField, &p.Comment},
		{"args", plainField, &p.Args},
		{"return", typeField, &p.Return},
		{"source", bookkeepingField, &p.Source},
		{"target", plainField, &p.Target},
	}
}

func (t *Target) fields() []field {
	return []field{
		{"target component", plainField, &t.Component},
		{"target port", plainField, &t.Port},
		{"target type", typeField, &t.Type},
		{"target role", plainField, &t.Role},
	}
}

func (c *ComponentSpec) fields() []field {
	return []field{
		{"kind", plainField, &c.Kind},
		{"activity", plainField, &c.Activity},
		{"namespace", plainField, &c.Namespace},
		{"modeler", bookkeepingField, &c.Modeler},
		{"source", bookkeepingField, &c.Source},
		{"commands", plainField, &c.Commands},
	}
}

func (c *ComponentInstance) fields() []field {
	return []field{
		{"name", plainField, &c.Name},
		{"kind", typeField, &c.Kind},
		{"namespace", plainField, &c.Namespace},
		{"base_id", plainField, &c.BaseID},
	}
}

// ---------------------------------------------------------------------------
// Public entry points
// ---------------------------------------------------------------------------

// MergePortSpec completes dst from src.
func MergePortSpec(dst, src *PortSpec) error {
	return mergeFields(portLabel(dst.Name, -1), dst.fields(), src.fields())
}

// MergePort completes dst from src. Both describe the same (name, index).
func MergePort(dst, src *PortInstance) error {
	name := dst.Name
	if dst.Component != "" {
		name = dst.Component + "." + name
	}
	return mergeFields(portLabel(name, dst.Index), dst.fields(), src.fields())
}

// MergeComponentSpec completes dst from src, merging port templates by name
// and appending templates only src declares.
func MergeComponentSpec(dst, src *ComponentSpec) error {
	if err := mergeFields(dst.Kind, dst.fields(), src.fields()); err != nil {
		return err
	}
	for _, p := range dst.Ports {
		if other := src.Port(p.Name); other != nil {
			if err := MergePortSpec(p, other); err != nil {
				return fmt.Errorf("%s: %w", dst.Kind, err)
			}
		}
	}
	for _, p := range src.Ports {
		if dst.Port(p.Name) == nil {
			cp := *p
			cp.Args = slices.Clone(p.Args)
			dst.Ports = append(dst.Ports, &cp)
		}
	}
	return nil
}

// MergeComponent completes the instance dst from src. Ports are matched by
// (name, index): every dst port sharing the key with a src port is merged
// against it, and src ports absent from dst are appended. A missing kind
// reference is adopted from src.
func MergeComponent(dst, src *ComponentInstance) error {
	entity := dst.Name
	if entity == "" {
		entity = dst.Kind
	}
	if err := mergeFields(entity, dst.fields(), src.fields()); err != nil {
		return err
	}
	if dst.Spec == nil {
		dst.Spec = src.Spec
	}
	for _, p := range dst.Ports {
		if other := src.Port(p.Name, p.Index); other != nil {
			if err := MergePort(p, other); err != nil {
				return err
			}
		}
	}
	for _, p := range src.Ports {
		if dst.Port(p.Name, p.Index) == nil {
			dst.Ports = append(dst.Ports, p.Clone())
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Field rules
// ---------------------------------------------------------------------------

func mergeFields(entity string, dst, src []field) error {
	for i := range dst {
		if err := mergeField(entity, dst[i], src[i]); err != nil {
			return err
		}
	}
	return nil
}

func mergeField(entity string, dst, src field) error {
	switch d := dst.ptr.(type) {
	case *string:
		return mergeText(entity, dst, d, *src.ptr.(*string))
	case *Role:
		s := string(*src.ptr.(*Role))
		v := string(*d)
		if err := mergeText(entity, dst, &v, s); err != nil {
			return err
		}
		*d = Role(v)
	case *int:
		s := *src.ptr.(*int)
		switch {
		case s == 0:
		case *d == 0:
			*d = s
		case *d != s && dst.kind != bookkeepingField:
			return conflict(entity, dst.name, strconv.Itoa(*d), strconv.Itoa(s))
		}
	case *[]Arg:
		return mergeList(entity, dst, d, *src.ptr.(*[]Arg))
	case *[]Command:
		return mergeList(entity, dst, d, *src.ptr.(*[]Command))
	case **Target:
		s := *src.ptr.(**Target)
		switch {
		case s == nil:
		case *d == nil:
			cp := *s
			*d = &cp
		default:
			if (*d).Index != s.Index {
				return conflict(entity, "target index", strconv.Itoa((*d).Index), strconv.Itoa(s.Index))
			}
			return mergeFields(entity, (*d).fields(), s.fields())
		}
	default:
		panic(fmt.Sprintf("model: unsupported merge field %s (%T)", dst.name, dst.ptr))
	}
	return nil
}

func mergeText(entity string, dst field, d *string, s string) error {
	switch {
	case s == "":
	case *d == "":
		*d = s
	case dst.kind == bookkeepingField:
	case strings.EqualFold(*d, s):
	case dst.kind == typeField && SameType(*d, s):
	default:
		return conflict(entity, dst.name, *d, s)
	}
	return nil
}

func mergeList[T comparable](entity string, dst field, d *[]T, s []T) error {
	switch {
	case len(s) == 0:
	case len(*d) == 0:
		*d = slices.Clone(s)
	case dst.kind == bookkeepingField:
	case !slices.Equal(*d, s):
		return conflict(entity, dst.name, fmt.Sprint(*d), fmt.Sprint(s))
	}
	return nil
}

func conflict(entity, attr, a, b string) error {
	return &InconsistencyError{Entity: entity, Attribute: attr, Authoritative: a, Supplement: b}
}

func portLabel(name string, index int) string {
	if index < 0 {
		return "port " + name
	}
	return fmt.Sprintf("port %s:%d", name, index)
}
