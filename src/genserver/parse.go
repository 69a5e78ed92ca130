package genserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Protocol-Lattice/promptly/src/workspace"
)

var (
	ErrNotJSON          = errors.New("generated response is not valid JSON")
	ErrInvalidStructure = errors.New("invalid generated code structure")
)

var (
	jsonFenceRe         = regexp.MustCompile("(?is)```(?:json[c5]?)?\\s*(\\{.*\\})\\s*```")
	trailingArrayComma  = regexp.MustCompile(`,\s*\]`)
	trailingObjectComma = regexp.MustCompile(`,\s*\}`)
	codeFenceRe         = regexp.MustCompile("(?s)```([a-zA-Z0-9_+.-]*)[ \\t]*\\n(.*?)\\n```")
	pathHeaderRe        = regexp.MustCompile(`(?i)^\s*(?:\/\/|#|--|;|<!--|/\*)\s*path:?\s*([^\s>*]+)`)
)

type rawFile struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

// ParseFiles turns a model reply into generated files. The reply is read as
// a JSON document of the form {"files":[{"path":..,"content":..}]}, either
// bare, fenced or embedded in prose. Replies with no JSON at all fall back to
// fenced code blocks whose first line names the path. Entries lacking a
// path or content are skipped; repeated paths keep the first entry.
func ParseFiles(reply string) ([]workspace.GeneratedFile, error) {
	obj, err := decodeObject(reply)
	if err != nil {
		if files := filesFromCodeBlocks(reply); len(files) > 0 {
			return files, nil
		}
		return nil, err
	}

	var entries []json.RawMessage
	raw, ok := obj["files"]
	if !ok || json.Unmarshal(raw, &entries) != nil || entries == nil {
		return nil, ErrInvalidStructure
	}

	seen := map[string]bool{}
	files := make([]workspace.GeneratedFile, 0, len(entries))
	for _, e := range entries {
		var f rawFile
		if json.Unmarshal(e, &f) != nil || f.Path == nil || f.Content == nil {
			continue
		}
		p := strings.TrimSpace(*f.Path)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		files = append(files, workspace.GeneratedFile{Path: p, Content: *f.Content, Index: len(files)})
	}
	return files, nil
}

func decodeObject(reply string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &obj); err == nil {
		return obj, nil
	}
	candidate, ok := extractObject(reply)
	if !ok {
		return nil, ErrNotJSON
	}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return obj, nil
}

// extractObject finds the outermost JSON object in s, preferring a fenced
// block, and strips trailing commas.
func extractObject(s string) (string, bool) {
	candidate := ""
	if m := jsonFenceRe.FindStringSubmatch(s); len(m) > 1 {
		candidate = m[1]
	} else {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end <= start {
			return "", false
		}
		candidate = s[start : end+1]
	}
	candidate = strings.TrimSpace(candidate)
	candidate = trailingArrayComma.ReplaceAllString(candidate, "]")
	candidate = trailingObjectComma.ReplaceAllString(candidate, "}")
	return candidate, candidate != ""
}

func filesFromCodeBlocks(reply string) []workspace.GeneratedFile {
	var files []workspace.GeneratedFile
	seen := map[string]bool{}
	for _, m := range codeFenceRe.FindAllStringSubmatch(reply, -1) {
		path, body := splitPathHeader(m[2])
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, workspace.GeneratedFile{Path: path, Content: body, Index: len(files)})
	}
	return files
}

func splitPathHeader(code string) (string, string) {
	first, rest, _ := strings.Cut(code, "\n")
	m := pathHeaderRe.FindStringSubmatch(first)
	if len(m) < 2 {
		return "", code
	}
	return strings.TrimSpace(m[1]), rest
}
