package docs

import "strings"

// Chunk splits content into bounded pieces by greedy line accumulation:
// lines join a running buffer until appending the next one would push the
// buffer past max characters, at which point the buffer is flushed and the
// line starts a new one. A single line longer than max becomes its own
// oversized chunk. No chunk is ever empty.
func Chunk(content string, max int) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lines := strings.Split(content, "\n")

	var chunks []string
	var buf strings.Builder
	for _, line := range lines {
		extra := len(line)
		if buf.Len() > 0 {
			extra++ // joining newline
		}
		if buf.Len() > 0 && buf.Len()+extra > max {
			chunks = appendChunk(chunks, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	return appendChunk(chunks, buf.String())
}

func appendChunk(chunks []string, chunk string) []string {
	chunk = strings.TrimRight(chunk, "\n")
	if strings.TrimSpace(chunk) == "" {
		return chunks
	}
	return append(chunks, chunk)
}
