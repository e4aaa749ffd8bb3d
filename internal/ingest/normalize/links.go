package normalize

import (
	"net/url"
	"path"
	"strings"
)

// SplitLinks extracts the http(s) URLs from a cell holding several links
// separated by semicolons, commas or whitespace. Duplicates are dropped.
func SplitLinks(s *string) []string {
	if s == nil {
		return nil
	}
	parts := strings.FieldsFunc(*s, func(r rune) bool {
		return r == ';' || r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '|'
	})
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		lc := strings.ToLower(p)
		if !strings.HasPrefix(lc, "http://") && !strings.HasPrefix(lc, "https://") {
			continue
		}
		if _, err := url.Parse(p); err != nil || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// LinkKind labels a project link by where it points.
func LinkKind(u string) string {
	parsed, err := url.Parse(strings.ToLower(strings.TrimSpace(u)))
	if err != nil || parsed.Host == "" {
		return "web"
	}
	host := strings.TrimPrefix(parsed.Host, "www.")
	switch {
	case host == "docs.google.com":
		switch {
		case strings.HasPrefix(parsed.Path, "/spreadsheets"):
			return "sheet"
		case strings.HasPrefix(parsed.Path, "/presentation"):
			return "slides"
		}
		return "doc"
	case host == "drive.google.com":
		return "drive"
	case strings.HasSuffix(host, "sharepoint.com"):
		return "sharepoint"
	case strings.HasSuffix(host, "asana.com"):
		return "asana"
	case host == "github.com":
		return "repo"
	}

	switch strings.TrimPrefix(path.Ext(parsed.Path), ".") {
	case "pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "csv":
		return "document"
	case "jpg", "jpeg", "png", "gif", "webp", "svg":
		return "image"
	case "mp4", "webm", "mov":
		return "video"
	}
	return "web"
}
