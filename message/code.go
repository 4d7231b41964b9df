package message

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_+.-]*[ \t]*\r?\n(.*?)```")

// ExtractCode returns the body of the first fenced code block in content.
// Content without a fence is returned trimmed of surrounding whitespace.
func ExtractCode(content string) string {
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return strings.TrimSpace(content)
}
