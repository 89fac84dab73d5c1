package api

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/moonbound/moonbound/pkg/domain"
)

// NormalizeSessions maps the three wire shapes the sessions endpoint is known
// to produce onto one canonical slice: a bare array, an object with a
// "sessions" array, or a map of id to record. In the map case the key is
// synthesized onto each record that lacks its own id.
func NormalizeSessions(raw []byte) []domain.Session {
	g := gjson.ParseBytes(raw)

	collect := func(arr gjson.Result) []domain.Session {
		var out []domain.Session
		arr.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() {
				out = append(out, sessionFromJSON(item, ""))
			}
			return true
		})
		return out
	}

	switch {
	case g.IsArray():
		return collect(g)
	case g.Get("sessions").IsArray():
		return collect(g.Get("sessions"))
	case g.IsObject():
		var out []domain.Session
		g.ForEach(func(key, value gjson.Result) bool {
			if value.IsObject() {
				out = append(out, sessionFromJSON(value, key.String()))
			}
			return true
		})
		return out
	}
	return nil
}

// sessionFromJSON builds a canonical Session from one wire record, resolving
// every field alias the backend has been seen to use.
func sessionFromJSON(r gjson.Result, fallbackID string) domain.Session {
	s := domain.Session{
		ID:               firstString(r, "id", "_id", "sesion_id", "session_id"),
		Title:            firstString(r, "title", "titulo"),
		DreamText:        r.Get("texto_sueno").String(),
		EmotionalContext: r.Get("contexto_emocional").String(),
		Interpretation:   r.Get("interpretacion").String(),
		Summary:          firstString(r, "interpretacion_resumen", "resumen"),
		ImageURL:         r.Get("image_url").String(),
		ImageDescription: r.Get("descripcion").String(),
		CreatedAt:        parseWireTime(firstString(r, "created_at", "fecha", "timestamp", "date")),
	}
	if s.ID == "" {
		s.ID = fallbackID
	}
	if s.Summary == "" {
		s.Summary = s.DreamText
	}

	followups := r.Get("followups")
	if !followups.IsArray() {
		followups = r.Get("follow_ups")
	}
	followups.ForEach(func(_, f gjson.Result) bool {
		s.Followups = append(s.Followups, domain.Followup{
			Question:  firstString(f, "pregunta", "question"),
			Answer:    firstString(f, "respuesta", "answer", "response"),
			Timestamp: parseWireTime(f.Get("timestamp").String()),
		})
		return true
	})
	return s
}

func firstString(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k).String(); v != "" {
			return v
		}
	}
	return ""
}

// wireTimeLayouts are the timestamp formats the backend emits. All are UTC.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseWireTime parses a backend timestamp, returning the zero time when the
// value is missing or unrecognized. Callers treat zero as "no timestamp".
func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
