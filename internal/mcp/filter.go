package mcp

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterResult is a filtered response body plus size metadata.
type FilterResult struct {
	Content     string
	Matches     int
	Windows     int
	SourceBytes int
}

// Summary renders the size metadata appended to filtered tool output.
func (r *FilterResult) Summary() string {
	return fmt.Sprintf("[%d matches in %d windows, %d of %d bytes, ~%d of ~%d tokens]",
		r.Matches, r.Windows,
		len(r.Content), r.SourceBytes,
		estimateTokens(len(r.Content)), estimateTokens(r.SourceBytes))
}

// estimateTokens approximates token count using chars/4 heuristic
func estimateTokens(size int) int {
	return size / 4
}

// charsPerLine converts context_lines into characters; bodies are often
// minified JSON with no real lines.
const charsPerLine = 80

type window struct {
	start, end int
}

// filterRegex returns each match of pattern with surrounding context.
// Overlapping windows are merged.
func filterRegex(body, pattern string, contextLines int) (*FilterResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	contextChars := max(contextLines*charsPerLine, 100)

	matches := re.FindAllStringIndex(body, -1)
	merged := mergeWindows(matches, contextChars, len(body))

	blocks := make([]string, 0, len(merged))
	for i, w := range merged {
		excerpt := body[w.start:w.end]
		if w.start > 0 {
			excerpt = "..." + excerpt
		}
		if w.end < len(body) {
			excerpt += "..."
		}
		blocks = append(blocks, fmt.Sprintf("=== Context Window %d (bytes %d-%d) ===\n%s", i+1, w.start, w.end, excerpt))
	}
	content := strings.Join(blocks, "\n\n")

	return &FilterResult{
		Content:     content,
		Matches:     len(matches),
		Windows:     len(merged),
		SourceBytes: len(body),
	}, nil
}

func mergeWindows(matches [][]int, contextChars, size int) []window {
	var merged []window
	for _, m := range matches {
		w := window{start: max(0, m[0]-contextChars), end: min(size, m[1]+contextChars)}
		if n := len(merged); n > 0 && w.start <= merged[n-1].end {
			merged[n-1].end = max(merged[n-1].end, w.end)
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
