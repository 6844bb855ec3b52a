package extract

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"consentobs/internal/models"
	"consentobs/pkg/utils"
)

// Gatherer names as they appear as keys of a record's data block. The
// set is closed; adding a gatherer means adding one entry to the
// dispatch table, existing extractors stay untouched.
const (
	GathererCookie               = "CookieGatherer"
	GathererButton               = "ButtonGatherer"
	GathererNormalizedWordButton = "NormalizedWordButtonGatherer"
	GathererEventListener        = "EventListenerGatherer"
	GathererCheckbox             = "CheckboxGatherer"
	GathererWordBox              = "WordBoxGatherer"
	GathererCMP                  = "CMPGatherer"
	GathererIABJS                = "IABJSGatherer"
	GathererScreenshot           = "ScreenshotGatherer"
	GathererDOM                  = "DOMGatherer"
	GathererVisibility           = "VisibilityAnalyzer"
)

// MaxHTMLLength caps stored button HTML so DOM dumps cannot bloat the
// output tables.
const MaxHTMLLength = 500

// maxLabelLength filters word-box strings down to plausible UI labels.
const maxLabelLength = 60

// Entities is the typed output of running extractors over gatherer
// payloads.
type Entities struct {
	Cookies []models.Cookie
	Buttons []models.Button
	CMPs    []models.CmpDetection
	TCF     *models.TcfSignal
}

func (e *Entities) add(other Entities) {
	e.Cookies = append(e.Cookies, other.Cookies...)
	e.Buttons = append(e.Buttons, other.Buttons...)
	e.CMPs = append(e.CMPs, other.CMPs...)

	if e.TCF == nil {
		e.TCF = other.TCF
	} else if other.TCF != nil && other.TCF.APIDetected {
		e.TCF = other.TCF
	}
}

// Extractor runs the per-gatherer extraction functions. Every extractor
// is total over its input: a missing, empty, or malformed payload yields
// zero entities, never an error.
type Extractor struct {
	categorizer *Categorizer
}

// NewExtractor creates an extractor using the given button categorizer.
func NewExtractor(categorizer *Categorizer) *Extractor {
	return &Extractor{categorizer: categorizer}
}

// gathererTable dispatches by gatherer name. Screenshot, DOM, event
// listener, and visibility payloads carry no tabular entities of their
// own (visibility is folded into the button extractors), so they map to
// the empty extraction.
var gathererTable = map[string]func(*Extractor, json.RawMessage) Entities{
	GathererCookie:               (*Extractor).extractCookies,
	GathererButton:               (*Extractor).extractButtons,
	GathererNormalizedWordButton: (*Extractor).extractNormalizedButtons,
	GathererCheckbox:             (*Extractor).extractCheckboxes,
	GathererWordBox:              (*Extractor).extractWordBoxes,
	GathererCMP:                  (*Extractor).extractCMPs,
	GathererIABJS:                (*Extractor).extractTCF,
	GathererEventListener:        (*Extractor).extractNothing,
	GathererScreenshot:           (*Extractor).extractNothing,
	GathererDOM:                  (*Extractor).extractNothing,
	GathererVisibility:           (*Extractor).extractNothing,
}

// GathererNames returns the known gatherer names, sorted.
func GathererNames() []string {
	names := make([]string, 0, len(gathererTable))
	for name := range gathererTable {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Extract runs the extractor registered for name over its payload.
// Unknown gatherer names are preserved upstream but yield no entities.
func (x *Extractor) Extract(name string, raw json.RawMessage) Entities {
	fn, ok := gathererTable[name]
	if !ok {
		return Entities{}
	}

	return fn(x, raw)
}

// ExtractAll runs every applicable extractor over a record's gatherer
// map and merges the results.
func (x *Extractor) ExtractAll(data map[string]json.RawMessage) Entities {
	var out Entities

	// Stable iteration keeps extraction deterministic.
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		out.add(x.Extract(name, data[name]))
	}

	return out
}

func (x *Extractor) extractNothing(json.RawMessage) Entities {
	return Entities{}
}

func (x *Extractor) extractCookies(raw json.RawMessage) Entities {
	var out Entities

	for _, item := range gathererItems(raw, "cookies") {
		var c struct {
			Name     string   `json:"name"`
			Domain   string   `json:"domain"`
			Secure   bool     `json:"secure"`
			HTTPOnly bool     `json:"httpOnly"`
			SameSite string   `json:"sameSite"`
			Session  *bool    `json:"session"`
			Expires  *float64 `json:"expires"`
		}

		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}

		out.Cookies = append(out.Cookies, models.Cookie{
			Name:     c.Name,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: models.ParseSameSite(c.SameSite),
			Session:  cookieSession(c.Session, c.Expires),
		})
	}

	return out
}

// cookieSession resolves the session flag. Without an explicit flag a
// cookie is a session cookie unless it carries a real expiry.
func cookieSession(session *bool, expires *float64) bool {
	if session != nil {
		return *session
	}

	if expires != nil && *expires > 0 {
		return false
	}

	return true
}

func (x *Extractor) extractButtons(raw json.RawMessage) Entities {
	var out Entities

	for _, item := range gathererItems(raw, "detectionsArray") {
		var b struct {
			Text               string          `json:"text"`
			HTML               string          `json:"html"`
			Visible            *bool           `json:"visible"`
			VisibilityAnalysis json.RawMessage `json:"visibilityAnalysis"`
		}

		if err := json.Unmarshal(item, &b); err != nil {
			continue
		}

		text := utils.NormalizeWhitespace(b.Text)
		if text == "" {
			continue
		}

		out.Buttons = append(out.Buttons, models.Button{
			Text:      text,
			HTML:      utils.TruncateString(b.HTML, MaxHTMLLength),
			IsVisible: buttonVisible(b.Visible, b.VisibilityAnalysis),
			Category:  x.categorizer.Categorize(text, ""),
		})
	}

	return out
}

// buttonVisible resolves visibility: an explicit flag wins, otherwise a
// detection counts as visible when a visibility analysis was attached.
func buttonVisible(visible *bool, analysis json.RawMessage) bool {
	if visible != nil {
		return *visible
	}

	return len(analysis) > 0 && string(analysis) != "null"
}

func (x *Extractor) extractNormalizedButtons(raw json.RawMessage) Entities {
	var out Entities

	for _, item := range gathererItems(raw, "detectionsArray") {
		var b struct {
			Text               string          `json:"text"`
			Normalized         string          `json:"normalized"`
			Element            string          `json:"element"`
			Category           json.RawMessage `json:"category"`
			VisibilityAnalysis json.RawMessage `json:"visibilityAnalysis"`
		}

		if err := json.Unmarshal(item, &b); err != nil {
			continue
		}

		text := utils.NormalizeWhitespace(b.Text)
		if text == "" {
			text = utils.NormalizeWhitespace(b.Normalized)
		}

		if text == "" {
			continue
		}

		out.Buttons = append(out.Buttons, models.Button{
			Text:      text,
			HTML:      utils.TruncateString(b.Element, MaxHTMLLength),
			IsVisible: buttonVisible(nil, b.VisibilityAnalysis),
			Category:  x.categorizer.Categorize(text, rawScalarString(b.Category)),
		})
	}

	return out
}

func (x *Extractor) extractCheckboxes(raw json.RawMessage) Entities {
	var out Entities

	for _, item := range gathererItems(raw, "checkboxes") {
		var c struct {
			Label   string `json:"label"`
			Text    string `json:"text"`
			HTML    string `json:"html"`
			Visible *bool  `json:"visible"`
		}

		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}

		text := utils.NormalizeWhitespace(c.Label)
		if text == "" {
			text = utils.NormalizeWhitespace(c.Text)
		}

		if text == "" {
			continue
		}

		out.Buttons = append(out.Buttons, models.Button{
			Text:      text,
			HTML:      utils.TruncateString(c.HTML, MaxHTMLLength),
			IsVisible: c.Visible != nil && *c.Visible,
			Category:  x.categorizer.Categorize(text, ""),
		})
	}

	return out
}

func (x *Extractor) extractWordBoxes(raw json.RawMessage) Entities {
	var out Entities

	for _, item := range gathererItems(raw, "boxes") {
		var w struct {
			Text  string   `json:"text"`
			Words []string `json:"words"`
		}

		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}

		labels := w.Words
		if len(labels) == 0 && w.Text != "" {
			labels = []string{w.Text}
		}

		for _, label := range labels {
			text := utils.NormalizeWhitespace(label)
			if !isLabelLike(text) {
				continue
			}

			out.Buttons = append(out.Buttons, models.Button{
				Text:     text,
				Category: x.categorizer.Categorize(text, ""),
			})
		}
	}

	return out
}

func (x *Extractor) extractCMPs(raw json.RawMessage) Entities {
	var out Entities

	for _, item := range gathererItems(raw, "CMPs") {
		var c struct {
			CMPName string `json:"CMP_name"`
			Name    string `json:"name"`
		}

		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}

		name := c.CMPName
		if name == "" {
			name = c.Name
		}

		if name == "" {
			continue
		}

		out.CMPs = append(out.CMPs, models.CmpDetection{Name: name, Raw: item})
	}

	return out
}

func (x *Extractor) extractTCF(raw json.RawMessage) Entities {
	if len(raw) == 0 || string(raw) == "null" {
		return Entities{}
	}

	var t struct {
		APIDetected bool            `json:"apiDetected"`
		PingResult  json.RawMessage `json:"pingResult"`
	}

	if err := json.Unmarshal(raw, &t); err != nil {
		return Entities{}
	}

	return Entities{TCF: &models.TcfSignal{APIDetected: t.APIDetected, PingResult: t.PingResult}}
}

// gathererItems normalizes the two payload shapes the server emits: a
// bare array of items, or an object wrapping the array under key.
func gathererItems(raw json.RawMessage, key string) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}

		return items
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}

	inner, ok := wrapper[key]
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil
	}

	return items
}

// rawScalarString renders a scalar JSON value (string or number) as its
// plain string form, for the normalized category field.
func rawScalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

// isLabelLike filters word-box strings down to plausible button labels:
// short, containing letters, and not a URL or markup fragment.
func isLabelLike(text string) bool {
	if len(text) < 3 || len(text) > maxLabelLength {
		return false
	}

	if strings.Contains(text, "://") || strings.HasPrefix(text, "<") {
		return false
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}

	return false
}
