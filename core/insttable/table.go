// Package insttable generates the packed instruction-name table that
// AsmJit-style sources keep next to their InstInfo arrays.
//
// The generator reads the `<arch>InstInfo[] = { ... }` declaration of a
// source file, collects the `INST(ID, "name"` entries, and writes a single
// null-separated `<arch>InstName[]` string plus one `INDEX_<ID>` offset macro
// per instruction between the `// ${<ARCH>_INST_DATA:BEGIN}` and
// `// ${<ARCH>_INST_DATA:END}` comment lines of the same file.
//
// Matching is purely textual. The declaration span ends at the first '}'
// after its opening brace, so an InstInfo array whose entries contain braces
// is cut short. Entry display strings may only contain letters, digits,
// underscores and spaces.
package insttable

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/srctools/core/errors"
)

var entryPattern = regexp.MustCompile(`INST\(([A-Za-z0-9_]+)\s*,\s*"([A-Za-z0-9_ ]*)"`)

// declPattern matches the flat `<arch>InstInfo[] = { ... }` span.
func declPattern(arch string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(strings.ToLower(arch)) + `InstInfo\[\]\s*=\s*\{[^}]*\}`)
}

// Entry is one unique instruction in the table.
type Entry struct {
	ID     string // symbolic identifier, e.g. kX86InstMov
	Name   string // display string, e.g. "mov"
	Offset int    // byte offset of Name in the blob
}

// Table holds the unique entries of one architecture in first-seen order.
type Table struct {
	Arch    string
	Entries []Entry

	index map[string]int
	size  int
}

// NewTable creates an empty table for arch.
func NewTable(arch string) *Table {
	return &Table{Arch: arch, index: make(map[string]int)}
}

// Add appends an entry unless id was already added. It reports whether the
// entry was accepted; the first occurrence of an identifier wins.
func (t *Table) Add(id, name string) bool {
	if _, ok := t.index[id]; ok {
		return false
	}
	t.index[id] = len(t.Entries)
	t.Entries = append(t.Entries, Entry{ID: id, Name: name, Offset: t.size})
	t.size += len(name) + 1
	return true
}

// Len returns the number of unique entries.
func (t *Table) Len() int {
	return len(t.Entries)
}

// Size returns the blob length in bytes, terminators included.
func (t *Table) Size() int {
	return t.size
}

// Offset returns the blob offset of id.
func (t *Table) Offset(id string) (int, bool) {
	i, ok := t.index[id]
	if !ok {
		return 0, false
	}
	return t.Entries[i].Offset, true
}

// Blob returns the bytes denoted by the generated string literal.
func (t *Table) Blob() []byte {
	buf := make([]byte, 0, t.size)
	for _, e := range t.Entries {
		buf = append(buf, e.Name...)
		buf = append(buf, 0)
	}
	return buf
}

// Render returns the generated block placed between the markers.
func (t *Table) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "const char %sInstName[] =\n", strings.ToLower(t.Arch))
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "  \"%s\\0\"\n", e.Name)
	}
	b.WriteString("  ;\n")
	b.WriteString("\n")
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "#define INDEX_%s %d\n", e.ID, e.Offset)
	}
	return b.String()
}

// Extract builds the table from the first InstInfo declaration of arch in src.
func Extract(src []byte, arch string) (*Table, error) {
	loc := declPattern(arch).FindIndex(src)
	if loc == nil {
		return nil, errors.NewPattern(strings.ToLower(arch), "")
	}

	t := NewTable(arch)
	for _, m := range entryPattern.FindAllSubmatch(src[loc[0]:loc[1]], -1) {
		t.Add(string(m[1]), string(m[2]))
	}
	return t, nil
}

// Markers returns the begin and end sentinel lines for arch, each including
// its trailing newline.
func Markers(arch string) (begin, end string) {
	upper := strings.ToUpper(arch)
	return "// ${" + upper + "_INST_DATA:BEGIN}\n", "// ${" + upper + "_INST_DATA:END}\n"
}

// Splice replaces everything between the end of the begin marker and the
// start of the following end marker with block.
func Splice(src []byte, arch, block string) ([]byte, error) {
	begin, end := Markers(arch)

	b := bytes.Index(src, []byte(begin))
	if b < 0 {
		return nil, errors.NewMarker(strings.TrimSuffix(begin, "\n"), "")
	}
	start := b + len(begin)

	e := bytes.Index(src[start:], []byte(end))
	if e < 0 {
		return nil, errors.NewMarker(strings.TrimSuffix(end, "\n"), "")
	}
	stop := start + e

	out := make([]byte, 0, start+len(block)+len(src)-stop)
	out = append(out, src[:start]...)
	out = append(out, block...)
	out = append(out, src[stop:]...)
	return out, nil
}

// Generate extracts the table from src and splices its rendering back in.
func Generate(src []byte, arch string) ([]byte, *Table, error) {
	t, err := Extract(src, arch)
	if err != nil {
		return nil, nil, err
	}
	out, err := Splice(src, arch, t.Render())
	if err != nil {
		return nil, nil, err
	}
	return out, t, nil
}
