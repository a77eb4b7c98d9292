package public

import "strings"

// splitCSVLine tokenizes one physical line into fields. A comma outside
// quotes ends a field; a double quote toggles quoted state; two consecutive
// quotes inside a quoted field are one literal quote; commas inside quotes
// are part of the value. Fields are trimmed of surrounding whitespace.
//
// The tokenizer is strictly per-line: quoted fields containing embedded line
// breaks are not supported.
func splitCSVLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}
