package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Session is one server-side dream conversation: the submitted dream, its
// interpretation, an optional illustration and any follow-up exchanges.
// The backend is loose about field names (id/_id/sesion_id, followups/
// follow_ups, ...); the api package normalizes every known alias onto this
// canonical shape, so consumers never see the raw wire variants.
type Session struct {
	ID               string     `json:"id"`
	Title            string     `json:"title,omitempty"`
	DreamText        string     `json:"texto_sueno"`
	EmotionalContext string     `json:"contexto_emocional,omitempty"`
	Interpretation   string     `json:"interpretacion,omitempty"`
	Summary          string     `json:"interpretacion_resumen,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	ImageDescription string     `json:"descripcion,omitempty"`
	Followups        []Followup `json:"followups,omitempty"`
	CreatedAt        time.Time  `json:"created_at,omitempty"`
}

// Followup is one question/answer pair within a session. Appended
// server-side; the client only reads.
type Followup struct {
	Question  string    `json:"pregunta"`
	Answer    string    `json:"respuesta"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// HasInlineImage reports whether the session image is an inline base64
// payload rather than a fetchable URL.
func (s Session) HasInlineImage() bool {
	return s.ImageURL != "" && !strings.HasPrefix(s.ImageURL, "http")
}

const maxTitleLen = 40

// titlePatterns extract the dream's subject from an interpretation summary.
// The backend writes summaries in Spanish, so the markers are Spanish too.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sueño de (.*?)[.,\n]`),
	regexp.MustCompile(`sueño con (.*?)[.,\n]`),
	regexp.MustCompile(`soñar con (.*?)[.,\n]`),
	regexp.MustCompile(`soñaste (.*?)[.,\n]`),
	regexp.MustCompile(`imagen de (.*?)[.,\n]`),
	regexp.MustCompile(`acto de (.*?)[.,\n]`),
}

// DisplayTitle derives a short list title for the session. Best-effort
// display logic, not a contract: server-provided titles win, then a subject
// phrase scraped from the summary, then the first few significant words.
func (s Session) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return clampTitle(t)
	}
	if t := strings.TrimSpace(s.DreamText); t != "" {
		return clampTitle(t)
	}

	summary := strings.TrimSpace(s.Summary)
	if summary == "" {
		return "Sueño sin título"
	}

	lower := strings.ToLower(summary)
	for _, p := range titlePatterns {
		m := p.FindStringSubmatch(lower)
		if len(m) == 2 && strings.TrimSpace(m[1]) != "" {
			return clampTitle(capitalize(strings.TrimSpace(m[1])))
		}
	}

	// No marker matched: first five words longer than three runes.
	var words []string
	for _, w := range strings.Fields(summary) {
		if utf8.RuneCountInString(w) > 3 {
			words = append(words, w)
			if len(words) == 5 {
				break
			}
		}
	}
	if len(words) == 0 {
		return "Sueño sin título"
	}
	return clampTitle(strings.Join(words, " "))
}

func clampTitle(s string) string {
	if utf8.RuneCountInString(s) <= maxTitleLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxTitleLen]) + "..."
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
