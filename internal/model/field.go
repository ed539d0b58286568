package model

import (
	"fmt"
	"strings"
)

// FieldKind identifies a pattern-backed value that can be pulled out of a log line.
type FieldKind int

const (
	Username FieldKind = iota
	Date
	Message
)

var fieldKindNames = [...]string{"USERNAME", "DATE", "MESSAGE"}

// FieldKinds returns every field kind in declaration order.
func FieldKinds() []FieldKind {
	return []FieldKind{Username, Date, Message}
}

func (k FieldKind) String() string {
	if k < 0 || int(k) >= len(fieldKindNames) {
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
	return fieldKindNames[k]
}

// GroupName is the named capture group a pattern for this kind must expose.
func (k FieldKind) GroupName() string {
	return strings.ToLower(k.String())
}

// RawLine is a single line read from an input file, terminator stripped.
type RawLine struct {
	Text   string `json:"text"`
	Source string `json:"source"` // originating file path
	Number int    `json:"number"` // 1-based line number within Source
}
