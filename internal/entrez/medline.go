package entrez

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MEDLINE field layout: a tag padded with spaces to four columns, a
// hyphen, then the value from column seven. Continuation lines are
// indented by six spaces, and a blank line separates records.
const (
	tagWidth           = 4
	continuationIndent = "      "
)

// Record is a single MEDLINE record mapping field tags to their values
// in source order. Repeatable tags such as AU, PT, and AID carry one
// entry per occurrence.
type Record map[string][]string

// Get returns the first value for tag, or "" when the tag is absent.
func (r Record) Get(tag string) string {
	if vals := r[tag]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// All returns every value for tag, in source order.
func (r Record) All(tag string) []string {
	return r[tag]
}

// ParseError represents an error while parsing MEDLINE text.
type ParseError struct {
	Line    int    // Line number where error occurred (1-indexed)
	Message string // Description of the error
	Context string // Offending content for debugging
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseMedline reads MEDLINE-format text and returns one Record per
// entry. Wrapped field values are rejoined with a single space. Lines
// that fit neither the field layout nor the continuation indent are a
// ParseError naming the line.
func ParseMedline(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var records []Record
	current := Record{}
	lastTag := ""
	lineNum := 0

	flush := func() {
		if len(current) > 0 {
			records = append(records, current)
		}
		current = Record{}
		lastTag = ""
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			flush()

		case strings.HasPrefix(line, continuationIndent):
			if lastTag == "" {
				return nil, ParseError{
					Line:    lineNum,
					Message: "continuation line before any field",
					Context: truncate(line, 50),
				}
			}
			vals := current[lastTag]
			vals[len(vals)-1] += " " + strings.TrimSpace(line)

		default:
			if len(line) <= tagWidth || line[tagWidth] != '-' {
				return nil, ParseError{
					Line:    lineNum,
					Message: "malformed field line",
					Context: truncate(line, 50),
				}
			}
			if len(line) > tagWidth+1 && line[tagWidth+1] != ' ' {
				return nil, ParseError{
					Line:    lineNum,
					Message: "malformed field separator",
					Context: truncate(line, 50),
				}
			}
			tag := strings.TrimRight(line[:tagWidth], " ")
			if tag == "" {
				return nil, ParseError{
					Line:    lineNum,
					Message: "missing field tag",
					Context: truncate(line, 50),
				}
			}
			value := ""
			if len(line) > tagWidth+2 {
				value = strings.TrimSpace(line[tagWidth+2:])
			}
			current[tag] = append(current[tag], value)
			lastTag = tag
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return records, nil
}

// ParseMedlineString is a convenience function that parses from a string.
func ParseMedlineString(content string) ([]Record, error) {
	return ParseMedline(strings.NewReader(content))
}

// truncate truncates a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
