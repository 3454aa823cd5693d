package engine

import (
	"bytes"
	"strconv"
)

// lineKW is the hidden keyword the preprocessor attaches to every defmesh
// form. Its value is the 1-based source line of the form's opening paren.
const lineKW = "__line"

// rewriter turns mesh script source into plain zygomys source:
//
//   - ; and ;; line comments become // comments;
//   - :keyword becomes the string "__kw_keyword" (see isKW);
//   - kebab-case symbols such as half-extent become half_extent, since
//     zygomys reads the hyphen as subtraction;
//   - (defmesh ...) gains a leading :__line N keyword pair so entries can
//     report where they were defined.
//
// String literals pass through untouched. Newlines are never added or
// removed, so zygomys line numbers still match the user's source.
type rewriter struct {
	src  []byte
	out  []byte
	pos  int
	line int
}

func preprocessSource(source string) string {
	r := &rewriter{
		src:  []byte(source),
		out:  make([]byte, 0, len(source)+len(source)/4),
		line: 1,
	}
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == '"':
			r.quoted('"', true)
		case c == '`':
			r.quoted('`', false)
		case c == ';':
			r.comment()
		case c == ':' && r.peek(1) == '=':
			r.copy(2)
		case c == ':' && isLetter(r.peek(1)):
			r.keyword()
		case c == '(':
			r.open()
		case c == '-' && r.pos > 0 && isIdentChar(r.src[r.pos-1]) && isLetter(r.peek(1)):
			r.out = append(r.out, '_')
			r.pos++
		default:
			r.copy(1)
		}
	}
	return string(r.out)
}

func (r *rewriter) peek(off int) byte {
	if i := r.pos + off; i < len(r.src) {
		return r.src[i]
	}
	return 0
}

// copy moves n bytes to the output, keeping the line count.
func (r *rewriter) copy(n int) {
	end := min(r.pos+n, len(r.src))
	chunk := r.src[r.pos:end]
	r.line += bytes.Count(chunk, []byte{'\n'})
	r.out = append(r.out, chunk...)
	r.pos = end
}

// quoted copies a string literal through its closing delimiter.
func (r *rewriter) quoted(delim byte, escapes bool) {
	r.copy(1)
	for r.pos < len(r.src) && r.src[r.pos] != delim {
		if escapes && r.src[r.pos] == '\\' {
			r.copy(2)
			continue
		}
		r.copy(1)
	}
	r.copy(1)
}

func (r *rewriter) comment() {
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	r.out = append(r.out, '/', '/')
	for r.pos < len(r.src) && r.src[r.pos] != '\n' {
		r.copy(1)
	}
}

func (r *rewriter) keyword() {
	start := r.pos + 1
	end := start
	for end < len(r.src) && isKWChar(r.src[end]) {
		end++
	}
	r.out = appendKW(r.out, string(r.src[start:end]))
	r.pos = end
}

// open copies a paren and, when it starts a defmesh form, appends the
// form's line after the head symbol.
func (r *rewriter) open() {
	line := r.line
	r.copy(1)
	const head = "defmesh"
	rest := r.src[r.pos:]
	if !bytes.HasPrefix(rest, []byte(head)) {
		return
	}
	if len(rest) > len(head) && isKWChar(rest[len(head)]) {
		return
	}
	r.copy(len(head))
	r.out = append(r.out, ' ')
	r.out = appendKW(r.out, lineKW)
	r.out = append(r.out, ' ')
	r.out = strconv.AppendInt(r.out, int64(line), 10)
}

func appendKW(out []byte, name string) []byte {
	out = append(out, '"')
	out = append(out, kwPrefix...)
	out = append(out, name...)
	return append(out, '"')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
