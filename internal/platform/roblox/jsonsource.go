package roblox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// jsonToLuau turns a JSON document into a module returning the equivalent
// Luau table, so data files can be required like code.
func jsonToLuau(data []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return "", fmt.Errorf("failed to decode json source: %w", err)
	}

	var b strings.Builder
	b.WriteString("return ")
	writeLuauValue(&b, value)
	b.WriteString("\n")
	return b.String(), nil
}

func writeLuauValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case json.Number:
		b.WriteString(v.String())
	case string:
		b.WriteString(quoteLuau(v))
	case []any:
		b.WriteString("{")
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeLuauValue(b, item)
		}
		b.WriteString("}")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("[")
			b.WriteString(quoteLuau(k))
			b.WriteString("] = ")
			writeLuauValue(b, v[k])
		}
		b.WriteString("}")
	}
}

// quoteLuau renders s as a double-quoted Luau string literal. Characters
// that are not printable use Luau's `\u{X}` escape.
func quoteLuau(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unicode.IsPrint(r) {
				b.WriteRune(r)
				continue
			}
			b.WriteString(`\u{`)
			b.WriteString(strconv.FormatInt(int64(r), 16))
			b.WriteString("}")
		}
	}
	b.WriteByte('"')
	return b.String()
}
