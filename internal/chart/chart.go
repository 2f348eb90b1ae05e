// Package chart names the (position, flow type) pairs a workspace is made of
// and keeps the registry of saved chart snapshots.
package chart

import (
	"errors"
	"fmt"
	"strings"
)

// Position is a grappling body configuration.
type Position string

// Positions.
const (
	Mount       Position = "Mount"
	SideControl Position = "Side Control"
	ClosedGuard Position = "Closed Guard"
	HalfGuard   Position = "Half Guard"
	OpenGuard   Position = "Open Guard"
	BackControl Position = "Back Control"
	Standing    Position = "Standing"
)

// Positions lists every position in display order.
var Positions = []Position{Mount, SideControl, ClosedGuard, HalfGuard, OpenGuard, BackControl, Standing}

// FlowType is the direction of the technique sequence being charted.
type FlowType string

// Flow types.
const (
	Attacks FlowType = "Attacks"
	Escapes FlowType = "Escapes"
)

// FlowTypes lists every flow type in display order.
var FlowTypes = []FlowType{Attacks, Escapes}

// KeySeparator joins position and flow type in a chart key.
const KeySeparator = "::"

// Errors returned when parsing chart names.
var (
	ErrUnknownPosition = errors.New("unknown position")
	ErrUnknownFlowType = errors.New("unknown flow type")
	ErrInvalidKey      = errors.New("invalid chart key")
)

// ParsePosition returns the Position named s. Matching is exact.
func ParsePosition(s string) (Position, bool) {
	for _, p := range Positions {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// ParseFlowType returns the FlowType named s. Matching is exact.
func ParseFlowType(s string) (FlowType, bool) {
	for _, f := range FlowTypes {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// LookupPosition resolves a user-typed position name case-insensitively,
// accepting dashes or underscores for spaces ("side-control").
func LookupPosition(s string) (Position, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, p := range Positions {
		if strings.EqualFold(string(p), norm) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

// LookupFlowType resolves a user-typed flow type case-insensitively.
func LookupFlowType(s string) (FlowType, error) {
	for _, f := range FlowTypes {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlowType, s)
}

// Key identifies a chart within a workspace.
type Key struct {
	Position Position
	FlowType FlowType
}

// String formats the key as "<position>::<flowType>".
func (k Key) String() string {
	return string(k.Position) + KeySeparator + string(k.FlowType)
}

// Slug returns a lowercase, dash-separated form used for export file names.
func (k Key) Slug() string {
	slug := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), "-")
	}
	return slug(string(k.Position)) + "-" + slug(string(k.FlowType))
}

// ParseKey parses a "<position>::<flowType>" key with known values.
func ParseKey(s string) (Key, error) {
	pos, flow, ok := strings.Cut(s, KeySeparator)
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	p, ok := ParsePosition(pos)
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownPosition, pos)
	}
	f, ok := ParseFlowType(flow)
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownFlowType, flow)
	}
	return Key{Position: p, FlowType: f}, nil
}
