package repos

import (
	"encoding/json"
	"slices"

	"github.com/google/uuid"
)

// Repo is a catalogued repository.
//
// Title and URL are stored as the raw JSON the client sent; they are never
// validated. An absent value is omitted from responses, an explicit null is kept.
type Repo struct {
	ID    uuid.UUID         `json:"id"`
	Title json.RawMessage   `json:"title,omitempty"`
	URL   json.RawMessage   `json:"url,omitempty"`
	Techs []json.RawMessage `json:"techs"`
	Likes int64             `json:"likes"`
}

// clone returns a copy that shares no backing arrays with r.
func (r Repo) clone() Repo {
	out := r
	out.Title = slices.Clone(r.Title)
	out.URL = slices.Clone(r.URL)
	if r.Techs != nil {
		out.Techs = make([]json.RawMessage, len(r.Techs))
		for i, t := range r.Techs {
			out.Techs[i] = slices.Clone(t)
		}
	}
	return out
}
