// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gogpu/shaderkit/session"
)

const maxIncludeDepth = 16

// condFrame is one level of #ifdef nesting.
type condFrame struct {
	parentActive bool
	taken        bool
	inElse       bool
	line         int
}

// preprocessor expands includes, evaluates conditionals and substitutes
// macros. Directive lines and inactive lines become empty lines so that
// positions in the main source stay stable.
type preprocessor struct {
	macros      map[string]string
	searchPaths []string
	includes    []fs.FS
	stack       []string
	inComment   bool
}

func newPreprocessor(desc session.Descriptor, includes []fs.FS) *preprocessor {
	p := &preprocessor{
		macros:      make(map[string]string, len(desc.Macros)),
		searchPaths: desc.SearchPaths,
		includes:    includes,
	}
	for _, m := range desc.Macros {
		p.macros[m.Name] = m.Value
	}
	return p
}

// Run preprocesses the main source.
func (p *preprocessor) Run(source string) (string, error) {
	var out strings.Builder
	if err := p.process("", source, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Defined returns the names of the macros defined after preprocessing.
func (p *preprocessor) Defined() []string {
	names := make([]string, 0, len(p.macros))
	for n := range p.macros {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (p *preprocessor) process(file, source string, out *strings.Builder) error {
	var conds []condFrame
	active := func() bool {
		if len(conds) == 0 {
			return true
		}
		c := conds[len(conds)-1]
		return c.parentActive && c.taken && !c.inElse || c.parentActive && !c.taken && c.inElse
	}
	fail := func(line int, format string, args ...any) error {
		return newSourceError(file, line, source, format, args...)
	}

	p.inComment = false
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lineNo := i + 1
		if i > 0 {
			out.WriteByte('\n')
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active() {
				out.WriteString(p.substitute(line))
			}
			continue
		}

		directive, rest, _ := strings.Cut(strings.ReplaceAll(trimmed[1:], "\t", " "), " ")
		directive = strings.TrimSpace(directive)
		rest = strings.TrimSpace(rest)
		if k := strings.Index(rest, "//"); k >= 0 {
			rest = strings.TrimSpace(rest[:k])
		}

		switch directive {
		case "ifdef", "ifndef", "if":
			if rest == "" {
				return fail(lineNo, "#%s requires a macro name", directive)
			}
			value, defined := p.macros[rest]
			var cond bool
			switch directive {
			case "ifdef":
				cond = defined
			case "ifndef":
				cond = !defined
			default:
				cond = defined && value != "" && value != "0"
			}
			conds = append(conds, condFrame{parentActive: active(), taken: cond, line: lineNo})
		case "else":
			if len(conds) == 0 {
				return fail(lineNo, "#else without #if")
			}
			top := &conds[len(conds)-1]
			if top.inElse {
				return fail(lineNo, "duplicate #else")
			}
			top.inElse = true
		case "endif":
			if len(conds) == 0 {
				return fail(lineNo, "#endif without #if")
			}
			conds = conds[:len(conds)-1]
		case "define":
			if !active() {
				continue
			}
			name, value, _ := strings.Cut(rest, " ")
			if name == "" || !isIdent(name) {
				return fail(lineNo, "invalid macro name %q", name)
			}
			p.macros[name] = strings.TrimSpace(value)
		case "undef":
			if active() {
				delete(p.macros, rest)
			}
		case "include":
			if !active() {
				continue
			}
			name := strings.Trim(rest, `"<>`)
			if name == "" || len(name) == len(rest) {
				return fail(lineNo, "malformed #include %q", rest)
			}
			if err := p.include(name, out); err != nil {
				var se *SourceError
				if errors.As(err, &se) {
					return err
				}
				return fail(lineNo, "%v", err)
			}
		default:
			return fail(lineNo, "unknown directive #%s", directive)
		}
	}
	if len(conds) > 0 {
		return fail(conds[len(conds)-1].line, "unterminated conditional")
	}
	return nil
}

func (p *preprocessor) include(name string, out *strings.Builder) error {
	if len(p.stack) >= maxIncludeDepth {
		return errors.New("#include nested too deeply")
	}
	if slices.Contains(p.stack, name) {
		return errors.New("recursive #include of " + name)
	}
	text, err := p.resolve(name)
	if err != nil {
		return err
	}
	p.stack = append(p.stack, name)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	var sub strings.Builder
	saved := p.inComment
	if err := p.process(name, text, &sub); err != nil {
		return err
	}
	p.inComment = saved
	// The directive line itself is replaced by the included text.
	out.WriteString(strings.TrimRight(sub.String(), "\n"))
	return nil
}

func (p *preprocessor) resolve(name string) (string, error) {
	for _, dir := range p.searchPaths {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err == nil {
			return string(data), nil
		}
	}
	clean := path.Clean(name)
	for _, fsys := range p.includes {
		data, err := fs.ReadFile(fsys, clean)
		if err == nil {
			return string(data), nil
		}
	}
	return "", errors.New("include not found: " + name)
}

// substitute replaces identifier tokens outside comments by macro values.
// Substitution is a single pass; values are not rescanned.
func (p *preprocessor) substitute(line string) string {
	var sb strings.Builder
	i := 0
	for i < len(line) {
		if p.inComment {
			end := strings.Index(line[i:], "*/")
			if end < 0 {
				sb.WriteString(line[i:])
				return sb.String()
			}
			sb.WriteString(line[i : i+end+2])
			i += end + 2
			p.inComment = false
			continue
		}
		c := line[i]
		switch {
		case strings.HasPrefix(line[i:], "//"):
			sb.WriteString(line[i:])
			return sb.String()
		case strings.HasPrefix(line[i:], "/*"):
			sb.WriteString("/*")
			i += 2
			p.inComment = true
		case isIdentStart(c):
			j := i + 1
			for j < len(line) && isIdentPart(line[j]) {
				j++
			}
			word := line[i:j]
			if v, ok := p.macros[word]; ok && v != "" {
				sb.WriteString(v)
			} else {
				sb.WriteString(word)
			}
			i = j
		case c >= '0' && c <= '9':
			// Numeric literals such as 1e5 or 0x1f are not identifiers.
			j := i + 1
			for j < len(line) && isIdentPart(line[j]) {
				j++
			}
			sb.WriteString(line[i:j])
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
