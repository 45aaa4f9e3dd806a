// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mux

import (
	"fmt"
	"net/url"
	"strings"
)

// Segment is a single element of a [Pattern]. It is either a literal
// which must be matched exactly or a named parameter which accepts
// any request segment.
type Segment struct {
	Value string
	Param bool
}

// Pattern is a parsed route path template e.g. "/items/:id".
type Pattern struct {
	raw      string
	segments []Segment
}

// InvalidPatternError is returned when a route pattern can not be parsed.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

// Error implements the [error] interface.
func (e InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid route pattern %q: %s", e.Pattern, e.Reason)
}

// ParsePattern parses a route pattern. Patterns must begin with "/" and
// parameter segments are written as ":name". The pattern "/" has zero segments.
func ParsePattern(s string) (Pattern, error) {
	if !strings.HasPrefix(s, "/") {
		return Pattern{}, InvalidPatternError{Pattern: s, Reason: "must begin with '/'"}
	}

	p := Pattern{raw: s}
	rest := s[1:]
	if rest == "" {
		return p, nil
	}

	seen := make(map[string]bool)
	for _, seg := range strings.Split(rest, "/") {
		name, isParam := strings.CutPrefix(seg, ":")
		if !isParam {
			p.segments = append(p.segments, Segment{Value: seg})
			continue
		}
		if name == "" {
			return Pattern{}, InvalidPatternError{Pattern: s, Reason: "parameter segment is missing a name"}
		}
		if seen[name] {
			return Pattern{}, InvalidPatternError{Pattern: s, Reason: fmt.Sprintf("parameter %q is declared more than once", name)}
		}
		seen[name] = true
		p.segments = append(p.segments, Segment{Value: name, Param: true})
	}
	return p, nil
}

// String returns the pattern as it was registered.
func (p Pattern) String() string {
	return p.raw
}

// Segments returns a copy of the pattern segments.
func (p Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Params returns the parameter names of the pattern in order.
func (p Pattern) Params() []string {
	var names []string
	for _, seg := range p.segments {
		if seg.Param {
			names = append(names, seg.Value)
		}
	}
	return names
}

// HasParam reports whether the pattern declares the named parameter.
func (p Pattern) HasParam(name string) bool {
	for _, seg := range p.segments {
		if seg.Param && seg.Value == name {
			return true
		}
	}
	return false
}

// normalized is the identity of a pattern for duplicate detection.
// Parameter names do not matter, only their positions.
func (p Pattern) normalized() string {
	var sb strings.Builder
	for _, seg := range p.segments {
		sb.WriteByte('/')
		if seg.Param {
			sb.WriteByte(':')
			continue
		}
		sb.WriteString(seg.Value)
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// match reports whether the already split request segments satisfy the
// pattern and returns the captured parameters if so.
func (p Pattern) match(segments []string) (Params, bool) {
	if len(segments) != len(p.segments) {
		return nil, false
	}

	var params Params
	for i, seg := range p.segments {
		if !seg.Param {
			if seg.Value != segments[i] {
				return nil, false
			}
			continue
		}
		if params == nil {
			params = make(Params)
		}
		params[seg.Value] = segments[i]
	}
	return params, true
}

// moreSpecific reports whether p should be tried before q. At the first
// position where one has a literal and the other a parameter, the literal wins.
func (p Pattern) moreSpecific(q Pattern) bool {
	for i := range p.segments {
		a, b := p.segments[i].Param, q.segments[i].Param
		if a == b {
			continue
		}
		return !a
	}
	return false
}

// splitPath splits an escaped request path into decoded segments.
func splitPath(escapedPath string) []string {
	rest := strings.TrimPrefix(escapedPath, "/")
	if rest == "" {
		return nil
	}

	segments := strings.Split(rest, "/")
	for i, seg := range segments {
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			continue
		}
		segments[i] = decoded
	}
	return segments
}
