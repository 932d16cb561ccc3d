package vault

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/inkwell/internal/models"
)

// Record kinds, one per vault sub-directory plus the novel file.
const (
	KindNovel     = "novel"
	KindChapter   = "chapter"
	KindCharacter = "character"
	KindSetting   = "setting"
	KindOutline   = "outline"
)

const novelFile = "novel.md"

var kindDirs = map[string]string{
	"chapters":   KindChapter,
	"characters": KindCharacter,
	"settings":   KindSetting,
	"outlines":   KindOutline,
}

// dirFor is the inverse of kindDirs.
func dirFor(kind string) string {
	for dir, k := range kindDirs {
		if k == kind {
			return dir
		}
	}
	return ""
}

// classify maps a vault path to its record kind and novel directory.
// ok is false for files outside the layout:
//
//	<novel>/novel.md
//	<novel>/{chapters,characters,settings,outlines}/<name>.md
func classify(p string) (kind, novelDir string, ok bool) {
	parts := strings.Split(p, "/")
	switch {
	case len(parts) == 2 && parts[1] == novelFile:
		return KindNovel, parts[0], true
	case len(parts) == 3 && strings.HasSuffix(parts[2], ".md"):
		if k, found := kindDirs[parts[1]]; found {
			return k, parts[0], true
		}
	}
	return "", "", false
}

// Frontmatter shapes. Long-form text lives in the Markdown body.
type (
	novelMeta struct {
		Title string `yaml:"title"`
	}
	chapterMeta struct {
		Number  int    `yaml:"number"`
		Title   string `yaml:"title"`
		Summary string `yaml:"summary,omitempty"`
	}
	characterMeta struct {
		Name          string `yaml:"name"`
		Personality   string `yaml:"personality,omitempty"`
		Background    string `yaml:"background,omitempty"`
		Relationships string `yaml:"relationships,omitempty"`
	}
	settingMeta struct {
		Name string `yaml:"name"`
		Type string `yaml:"type,omitempty"`
	}
	outlineMeta struct {
		Section int    `yaml:"section"`
		Title   string `yaml:"title"`
		Status  string `yaml:"status,omitempty"`
	}
)

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Without frontmatter the whole input is body.
func splitFrontmatter(data []byte) ([]byte, string) {
	const delim = "---"
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(data, "\n")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}
	block := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n")
	return block, body
}

// decode fills meta from the frontmatter and returns the trimmed body.
func decode(data []byte, meta any) (string, error) {
	block, body := splitFrontmatter(data)
	if len(block) > 0 {
		if err := yaml.Unmarshal(block, meta); err != nil {
			return "", fmt.Errorf("vault: frontmatter: %w", err)
		}
	}
	return strings.TrimSpace(body), nil
}

// encode renders meta as frontmatter followed by body.
func encode(meta any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("vault: encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("vault: encode frontmatter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(body))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// heading returns the first H1 heading of body, or "".
func heading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// stem returns the file name without directory or extension.
func stem(p string) string {
	return strings.TrimSuffix(path.Base(p), ".md")
}

// leadingNumber parses the digits a file name starts with, so
// "003-harbor.md" numbers itself 3.
func leadingNumber(name string) int {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(name[:end])
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func decodeNovel(p string, data []byte) (models.Novel, error) {
	var m novelMeta
	body, err := decode(data, &m)
	if err != nil {
		return models.Novel{}, err
	}
	return models.Novel{
		Title:       firstNonEmpty(m.Title, heading(body), path.Dir(p)),
		Description: body,
	}, nil
}

func decodeChapter(p string, data []byte) (models.Chapter, error) {
	var m chapterMeta
	body, err := decode(data, &m)
	if err != nil {
		return models.Chapter{}, err
	}
	if m.Number == 0 {
		m.Number = leadingNumber(stem(p))
	}
	return models.Chapter{
		Number:  m.Number,
		Title:   firstNonEmpty(m.Title, heading(body), stem(p)),
		Content: body,
		Summary: m.Summary,
	}, nil
}

func decodeCharacter(p string, data []byte) (models.Character, error) {
	var m characterMeta
	body, err := decode(data, &m)
	if err != nil {
		return models.Character{}, err
	}
	return models.Character{
		Name:          firstNonEmpty(m.Name, heading(body), stem(p)),
		Description:   body,
		Personality:   m.Personality,
		Background:    m.Background,
		Relationships: m.Relationships,
	}, nil
}

func decodeSetting(p string, data []byte) (models.Setting, error) {
	var m settingMeta
	body, err := decode(data, &m)
	if err != nil {
		return models.Setting{}, err
	}
	return models.Setting{
		Name:        firstNonEmpty(m.Name, heading(body), stem(p)),
		Type:        m.Type,
		Description: body,
	}, nil
}

func decodeOutline(p string, data []byte) (models.Outline, error) {
	var m outlineMeta
	body, err := decode(data, &m)
	if err != nil {
		return models.Outline{}, err
	}
	if m.Section == 0 {
		m.Section = leadingNumber(stem(p))
	}
	return models.Outline{
		Section: m.Section,
		Title:   firstNonEmpty(m.Title, heading(body), stem(p)),
		Content: body,
		Status:  models.OutlineStatus(m.Status),
	}, nil
}

func encodeNovel(n models.Novel) ([]byte, error) {
	return encode(novelMeta{Title: n.Title}, n.Description)
}

func encodeChapter(c models.Chapter) ([]byte, error) {
	return encode(chapterMeta{Number: c.Number, Title: c.Title, Summary: c.Summary}, c.Content)
}

func encodeCharacter(c models.Character) ([]byte, error) {
	return encode(characterMeta{
		Name:          c.Name,
		Personality:   c.Personality,
		Background:    c.Background,
		Relationships: c.Relationships,
	}, c.Description)
}

func encodeSetting(s models.Setting) ([]byte, error) {
	return encode(settingMeta{Name: s.Name, Type: s.Type}, s.Description)
}

func encodeOutline(o models.Outline) ([]byte, error) {
	return encode(outlineMeta{Section: o.Section, Title: o.Title, Status: string(o.Status)}, o.Content)
}
