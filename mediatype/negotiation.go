package mediatype

import "strings"

// Includes reports whether m includes other, e.g. text/* includes text/plain
// and application/*+xml includes application/soap+xml. Parameters are ignored.
// Unlike [MediaType.IsCompatibleWith] the relation is not symmetric.
func (m MediaType) Includes(other MediaType) bool {
	if other.IsZero() {
		return false
	}
	if m.IsWildcardType() {
		return true
	}
	if m.typ != other.typ {
		return false
	}
	if m.subtype == other.subtype {
		return true
	}
	if !m.IsWildcardSubtype() {
		return false
	}
	plus := strings.LastIndexByte(m.subtype, '+')
	if plus == -1 {
		return true
	}
	// *+suffix
	otherPlus := strings.LastIndexByte(other.subtype, '+')
	if otherPlus == -1 {
		return false
	}
	return m.subtype[:plus] == wildcardType && m.subtype[plus+1:] == other.subtype[otherPlus+1:]
}

// IsCompatibleWith reports whether either media type includes the other.
// Parameters are ignored.
func (m MediaType) IsCompatibleWith(other MediaType) bool {
	if other.IsZero() {
		return false
	}
	if m.IsWildcardType() || other.IsWildcardType() {
		return true
	}
	if m.typ != other.typ {
		return false
	}
	if m.subtype == other.subtype {
		return true
	}
	if !m.IsWildcardSubtype() && !other.IsWildcardSubtype() {
		return false
	}
	if m.subtype == wildcardType || other.subtype == wildcardType {
		return true
	}
	thisSuffix, otherSuffix := m.SubtypeSuffix(), other.SubtypeSuffix()
	if m.IsWildcardSubtype() && thisSuffix != "" {
		return thisSuffix == other.subtype || thisSuffix == otherSuffix
	}
	if other.IsWildcardSubtype() && otherSuffix != "" {
		return m.subtype == otherSuffix || otherSuffix == thisSuffix
	}
	return false
}
