package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Entry is one decoded slog JSON record.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]string
	// Raw holds the original line when it was not JSON.
	Raw string
}

// Read returns at most maxLines non-empty lines from the end of the file at
// path. A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, next := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		ring[next] = line
		next = (next + 1) % maxLines
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if count < maxLines {
		return ring[:count], nil
	}
	lines := make([]string, 0, maxLines)
	lines = append(lines, ring[next:]...)
	lines = append(lines, ring[:next]...)
	return lines, nil
}

// Parse decodes one log line. Lines that are not slog JSON come back with
// only Raw set.
func Parse(line string) Entry {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return Entry{Raw: line}
	}

	entry := Entry{Attrs: make(map[string]string)}
	for key, value := range record {
		switch key {
		case "time":
			if s, ok := value.(string); ok {
				entry.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case "level":
			entry.Level, _ = value.(string)
		case "msg":
			entry.Message, _ = value.(string)
		default:
			entry.Attrs[key] = fmt.Sprint(value)
		}
	}
	return entry
}

// Format renders an entry as a single plain line:
// "15:04:05 LEVEL message key=value ...", attributes sorted by key.
func Format(entry Entry) string {
	if entry.Raw != "" {
		return entry.Raw
	}
	var b strings.Builder
	if !entry.Time.IsZero() {
		b.WriteString(entry.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if entry.Level != "" {
		fmt.Fprintf(&b, "%-5s ", entry.Level)
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := entry.Attrs[k]
		if strings.ContainsAny(v, " \t") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}
