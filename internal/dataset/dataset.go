// Package dataset loads officials, promises and actions supplied by the
// collection layer and imports them into the store.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/politikcred/internal/model"
)

// ProvenanceSynthetic marks generated demo data
const ProvenanceSynthetic = "synthetic"

// Dataset is the import file format
type Dataset struct {
	Provenance string           `json:"provenance,omitempty"`
	Officials  []OfficialRecord `json:"officials"`
	Promises   []PromiseRecord  `json:"promises"`
	Actions    []ActionRecord   `json:"actions"`
}

// OfficialRecord is a raw official. ID is derived from the name when absent.
type OfficialRecord struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Party     string `json:"party,omitempty"`
	Position  string `json:"position"`
}

// PromiseRecord is a raw promise. Category, confidence and actionability are
// filled by the classifier when confidence is zero.
type PromiseRecord struct {
	ID         string       `json:"id,omitempty"`
	OfficialID string       `json:"official_id"`
	Text       string       `json:"text"`
	Category   string       `json:"category,omitempty"`
	StatedAt   string       `json:"stated_at,omitempty"`
	Source     model.Source `json:"source"`
	Confidence float64      `json:"confidence,omitempty"`
	Actionable bool         `json:"actionable,omitempty"`
}

// ActionRecord is a raw action. Position accepts any label the rule table
// knows ("pour", "Contre", "non votant").
type ActionRecord struct {
	ID          string       `json:"id,omitempty"`
	OfficialID  string       `json:"official_id"`
	OccurredAt  string       `json:"occurred_at"`
	Description string       `json:"description"`
	Position    string       `json:"position"`
	Category    string       `json:"category,omitempty"`
	Source      model.Source `json:"source"`
	ExternalRef string       `json:"external_ref,omitempty"`
}

// Load decodes a dataset
func Load(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// LoadFile decodes a dataset file; "-" reads stdin
func LoadFile(path string) (*Dataset, error) {
	if path == "-" {
		return Load(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Write encodes a dataset as indented JSON
func (ds *Dataset) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "02/01/2006"}

// ParseDate accepts RFC 3339, ISO dates and French dd/mm/yyyy dates
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ppiankov/politikcred"))

// StableID derives a deterministic id from the given parts so re-importing
// the same record yields the same id
func StableID(kind string, parts ...string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind+"\x00"+strings.Join(parts, "\x00"))).String()
}

// cleanOfficial trims fields and derives name, id and orientation. It
// returns false for records without a name or position.
func cleanOfficial(r OfficialRecord, baseline float64) (*model.Official, bool) {
	o := &model.Official{
		ID:               strings.TrimSpace(r.ID),
		Name:             strings.Join(strings.Fields(r.Name), " "),
		FirstName:        strings.TrimSpace(r.FirstName),
		LastName:         strings.TrimSpace(r.LastName),
		Party:            strings.TrimSpace(r.Party),
		Position:         strings.TrimSpace(r.Position),
		CredibilityScore: baseline,
	}
	if o.Name == "" {
		o.Name = strings.TrimSpace(o.FirstName + " " + o.LastName)
	}
	if o.Name == "" || o.Position == "" {
		return nil, false
	}
	if o.ID == "" {
		o.ID = StableID("official", dedupeKey(o))
	}
	o.Orientation = model.OrientationForParty(o.Party)
	return o, true
}

// dedupeKey is first_last when both are known, else the folded full name
func dedupeKey(o *model.Official) string {
	if o.FirstName != "" || o.LastName != "" {
		return o.DedupeKey()
	}
	return strings.ReplaceAll(strings.ToLower(o.Name), " ", "_")
}
