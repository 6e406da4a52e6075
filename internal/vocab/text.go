package vocab

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"vocamail/internal/fileutil"
)

const textSeparator = " | "

// ParseTextLine parses "word | meaning | phrase | category". Missing trailing
// fields are left empty; ok is false for blank lines and lines without a word.
func ParseTextLine(line string) (WordEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return WordEntry{}, false
	}
	parts := strings.SplitN(line, "|", 4)
	fields := make([]string, 4)
	for i, p := range parts {
		fields[i] = strings.TrimSpace(p)
	}
	if fields[0] == "" {
		return WordEntry{}, false
	}
	return WordEntry{Word: fields[0], Meaning: fields[1], Phrase: fields[2], Category: fields[3]}, true
}

// FormatTextLine renders entry in pipe-delimited form.
func FormatTextLine(e WordEntry) string {
	clean := func(s string) string {
		s = strings.ReplaceAll(s, "|", "/")
		return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	}
	return strings.Join([]string{clean(e.Word), clean(e.Meaning), clean(e.Phrase), clean(e.Category)}, textSeparator)
}

// ReadText loads a pipe-delimited vocabulary file. A missing file yields no entries.
func ReadText(path string) ([]WordEntry, error) {
	data, err := fileutil.ReadFileIfExists(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []WordEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if entry, ok := ParseTextLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return entries, nil
}

// WriteText replaces path with entries in pipe-delimited form.
func WriteText(path string, entries []WordEntry) error {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(FormatTextLine(e))
		buf.WriteByte('\n')
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// AppendText appends entries to path, creating it when missing.
func AppendText(path string, entries []WordEntry) error {
	if len(entries) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		if _, err := w.WriteString(FormatTextLine(e) + "\n"); err != nil {
			return fmt.Errorf("append %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}
