// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/shaderkit/reflection"
)

// Attribute names understood by the reflection walker.
const (
	AttrRole      = "role"
	AttrBlock     = "block"
	AttrSemantic  = "semantic"
	AttrStream    = "stream"
	AttrOffset    = "offset"
	AttrInstanced = "instanced"
)

// attributeIndex holds the author attributes found in a source, keyed by
// the declaration they attach to.
type attributeIndex struct {
	structs  map[string]reflection.AttributeSet
	members  map[string]map[string]reflection.AttributeSet
	globals  map[string]reflection.AttributeSet
	params   map[string]map[string]reflection.AttributeSet
	writable map[string]bool
}

func newAttributeIndex() *attributeIndex {
	return &attributeIndex{
		structs:  make(map[string]reflection.AttributeSet),
		members:  make(map[string]map[string]reflection.AttributeSet),
		globals:  make(map[string]reflection.AttributeSet),
		params:   make(map[string]map[string]reflection.AttributeSet),
		writable: make(map[string]bool),
	}
}

func (x *attributeIndex) member(structName, name string) reflection.AttributeSet {
	return x.members[structName][name]
}

func (x *attributeIndex) param(fn, name string) reflection.AttributeSet {
	return x.params[fn][name]
}

func addNested(m map[string]map[string]reflection.AttributeSet, outer, inner string, a reflection.AttributeSet) {
	if len(a) == 0 {
		return
	}
	if m[outer] == nil {
		m[outer] = make(map[string]reflection.AttributeSet)
	}
	m[outer][inner] = m[outer][inner].Merge(a)
}

// scanState tracks where a line sits in the module.
type scanState uint8

const (
	scanModule scanState = iota
	scanStruct
	scanSignature
	scanBody
)

// scanAttributes collects attribute comments from preprocessed source.
//
// An attribute line has the form
//
//	//@role(texture2d) @instanced
//
// and attaches to the next declaration: a struct, a struct member, a
// module-scope var or a function parameter written on its own line. Lines
// holding only WGSL attributes between the list and its declaration are
// skipped. Above a function header the list attaches to the first
// parameter declared on the header line. The same list may also trail the
// declaration on its own line.
func scanAttributes(source string) (*attributeIndex, error) {
	x := newAttributeIndex()
	var (
		pending   reflection.AttributeSet
		state     scanState
		owner     string
		depth     int
		inComment bool
	)

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		code, comment := splitComment(raw, &inComment)

		var attrs reflection.AttributeSet
		if strings.HasPrefix(strings.TrimSpace(comment), "@") {
			parsed, err := parseAttributeList(strings.TrimSpace(comment))
			if err != nil {
				return nil, newSourceError("", lineNo, source, "%v", err)
			}
			attrs = parsed
		}

		code = strings.TrimSpace(code)
		if code == "" || stripAttributes(code) == "" {
			// Blank lines and lines holding only WGSL attributes such as
			// @group(0) @binding(1) keep the list for the declaration below.
			pending = pending.Merge(attrs)
			continue
		}
		attrs = pending.Merge(attrs)
		pending = nil

		switch state {
		case scanModule:
			switch {
			case strings.HasPrefix(code, "struct "):
				name := leadingIdent(strings.TrimSpace(code[len("struct "):]))
				if len(attrs) > 0 {
					x.structs[name] = x.structs[name].Merge(attrs)
				}
				if strings.Contains(code, "{") && !strings.Contains(code, "}") {
					state, owner = scanStruct, name
				}
			case isVarDecl(code):
				name, writable := parseVarDecl(code)
				if name != "" {
					if len(attrs) > 0 {
						x.globals[name] = x.globals[name].Merge(attrs)
					}
					if writable {
						x.writable[name] = true
					}
				}
			case isFnDecl(code):
				name, rest := parseFnHeader(code)
				owner = name
				if p, ok := memberName(rest); ok {
					addNested(x.params, owner, p, attrs)
				}
				state = scanSignature
				if strings.Contains(rest, "{") {
					state, depth = scanBody, strings.Count(rest, "{")-strings.Count(rest, "}")
					if depth <= 0 {
						state = scanModule
					}
				}
			}

		case scanStruct:
			if strings.HasPrefix(code, "}") {
				state = scanModule
				continue
			}
			if name, ok := memberName(code); ok {
				addNested(x.members, owner, name, attrs)
			}

		case scanSignature:
			if k := strings.Index(code, "{"); k >= 0 {
				depth = strings.Count(code, "{") - strings.Count(code, "}")
				state = scanBody
				if depth <= 0 {
					state = scanModule
				}
				code = code[:k]
			}
			code = strings.TrimSpace(strings.TrimPrefix(code, ")"))
			if name, ok := memberName(code); ok {
				addNested(x.params, owner, name, attrs)
			}

		case scanBody:
			depth += strings.Count(code, "{") - strings.Count(code, "}")
			if depth <= 0 {
				state = scanModule
			}
		}
	}
	return x, nil
}

// splitComment separates code from a trailing line comment. Block comments
// are dropped from the code part.
func splitComment(line string, inComment *bool) (code, comment string) {
	var sb strings.Builder
	for i := 0; i < len(line); {
		if *inComment {
			end := strings.Index(line[i:], "*/")
			if end < 0 {
				return sb.String(), ""
			}
			i += end + 2
			*inComment = false
			continue
		}
		switch {
		case strings.HasPrefix(line[i:], "//"):
			return sb.String(), line[i+2:]
		case strings.HasPrefix(line[i:], "/*"):
			*inComment = true
			i += 2
		default:
			sb.WriteByte(line[i])
			i++
		}
	}
	return sb.String(), ""
}

// parseAttributeList parses "@a @b(x) @c(x, y)".
func parseAttributeList(text string) (reflection.AttributeSet, error) {
	set := make(reflection.AttributeSet)
	s := strings.TrimSpace(text)
	for s != "" {
		if s[0] != '@' {
			return nil, fmt.Errorf("expected '@' in attribute list, found %q", s)
		}
		s = s[1:]
		name := leadingIdent(s)
		if name == "" {
			return nil, errors.New("missing attribute name")
		}
		s = strings.TrimLeft(s[len(name):], " \t")
		args := []string{}
		if strings.HasPrefix(s, "(") {
			end := strings.IndexByte(s, ')')
			if end < 0 {
				return nil, fmt.Errorf("unterminated argument list for @%s", name)
			}
			if inner := strings.TrimSpace(s[1:end]); inner != "" {
				for _, a := range strings.Split(inner, ",") {
					a = strings.TrimSpace(a)
					if a == "" {
						return nil, fmt.Errorf("empty argument for @%s", name)
					}
					args = append(args, a)
				}
			}
			s = strings.TrimLeft(s[end+1:], " \t")
		}
		set[name] = args
	}
	return set, nil
}

// stripAttributes removes leading WGSL attributes such as @location(0).
func stripAttributes(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "@") {
		name := leadingIdent(s[1:])
		s = strings.TrimLeft(s[1+len(name):], " \t")
		if strings.HasPrefix(s, "(") {
			level := 0
			k := 0
			for ; k < len(s); k++ {
				if s[k] == '(' {
					level++
				} else if s[k] == ')' {
					level--
					if level == 0 {
						break
					}
				}
			}
			if k >= len(s) {
				return ""
			}
			s = strings.TrimLeft(s[k+1:], " \t")
		}
	}
	return s
}

// memberName returns the name of a "name: type" declaration.
func memberName(code string) (string, bool) {
	code = stripAttributes(code)
	name := leadingIdent(code)
	if name == "" {
		return "", false
	}
	rest := strings.TrimSpace(code[len(name):])
	return name, strings.HasPrefix(rest, ":")
}

func isVarDecl(code string) bool {
	code = stripAttributes(code)
	return strings.HasPrefix(code, "var ") || strings.HasPrefix(code, "var<")
}

// parseVarDecl returns the name of a module-scope var and whether it is a
// writable storage buffer.
func parseVarDecl(code string) (string, bool) {
	code = strings.TrimPrefix(stripAttributes(code), "var")
	writable := false
	if strings.HasPrefix(code, "<") {
		end := strings.IndexByte(code, '>')
		if end < 0 {
			return "", false
		}
		for _, part := range strings.Split(code[1:end], ",") {
			if strings.TrimSpace(part) == "read_write" {
				writable = true
			}
		}
		code = code[end+1:]
	}
	return leadingIdent(strings.TrimSpace(code)), writable
}

func isFnDecl(code string) bool {
	return strings.HasPrefix(stripAttributes(code), "fn ")
}

// parseFnHeader returns the function name and the text after its opening
// parenthesis.
func parseFnHeader(code string) (string, string) {
	code = strings.TrimSpace(stripAttributes(code)[len("fn "):])
	name := leadingIdent(code)
	rest := code[len(name):]
	if k := strings.IndexByte(rest, '('); k >= 0 {
		rest = rest[k+1:]
	}
	return name, strings.TrimSpace(rest)
}

func leadingIdent(s string) string {
	if s == "" || !isIdentStart(s[0]) {
		return ""
	}
	i := 1
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return s[:i]
}
