package archive

import (
	"encoding/json"
	"fmt"

	"github.com/libris-match/engine/internal/domain/record"
)

// cardV1 is the json-schema-version=1 shape: one bibliographic card with a
// list of editions, each expanding to its own Query.
type cardV1 struct {
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	PublicationType string      `json:"publicationType"`
	Editions        []editionV1 `json:"editions"`
}

type editionV1 struct {
	Part               string `json:"part"`
	Format             string `json:"format"`
	PlaceOfPublication string `json:"placeOfPublication"`
	YearOfPublication  *int   `json:"yearOfPublication"`
}

func decodeCardV1(filename, content string) ([]record.Query, error) {
	card, err := unmarshalCard[cardV1](content)
	if err != nil {
		return invalidCardQueries(filename), nil
	}
	if len(card.Editions) == 0 {
		q, err := record.NewQuery("", "", "", nil, noEditionsEdition, filename, record.Diagnostic{})
		if err != nil {
			return nil, err
		}
		return []record.Query{q}, nil
	}

	queries := make([]record.Query, 0, len(card.Editions))
	for i, ed := range card.Editions {
		q, err := record.NewQuery(card.Title, card.Author, ed.PlaceOfPublication, ed.YearOfPublication, i, filename, record.Diagnostic{})
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// cardV2 is the json-schema-version=2 shape (spec §6.2, resolved against
// original_source/src/matcher.rs's JsonRecordLoaderV2): places are
// multi-valued and joined with a space; years are multi-valued and resolved
// to the lowest non-zero value.
type cardV2 struct {
	SchemaVersion   int         `json:"schemaVersion"`
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	PublicationType string      `json:"publicationType"`
	IsReferenceCard bool        `json:"isReferenceCard"`
	Editions        []editionV2 `json:"editions"`
}

type editionV2 struct {
	Part               string   `json:"part"`
	Format             string   `json:"format"`
	PlaceOfPublication []string `json:"placeOfPublication"`
	YearOfPublication  yearsV2  `json:"yearOfPublication"`
	EditionStatement   string   `json:"editionStatement"`
	VolumeDesignation  string   `json:"volumeDesignation"`
	SerialTitles       []string `json:"serialTitles"`
}

// yearsV2 accepts either a single year, an array of years, or the field's
// absence, per original_source's JsonRecordEditionLoaderYearV2.
type yearsV2 []int

func (y *yearsV2) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*y = yearsV2{single}
		return nil
	}
	var multi []int
	if err := json.Unmarshal(data, &multi); err == nil {
		*y = yearsV2(multi)
		return nil
	}
	*y = nil
	return nil
}

// lowestNonZero resolves the multi-valued year field to the single value
// the matching pipeline scores against: the lowest year greater than zero,
// or nil if there is none.
func (y yearsV2) lowestNonZero() *int {
	var best *int
	for _, year := range y {
		if year <= 0 {
			continue
		}
		if best == nil || year < *best {
			v := year
			best = &v
		}
	}
	return best
}

func decodeCardV2(filename, content string) ([]record.Query, error) {
	card, err := unmarshalCard[cardV2](content)
	if err != nil {
		return invalidCardQueries(filename), nil
	}

	if len(card.Editions) == 0 {
		q, err := record.NewQuery(card.Title, card.Author, "", nil, noEditionsEdition, filename, record.Diagnostic{})
		if err != nil {
			return nil, err
		}
		return []record.Query{q}, nil
	}

	queries := make([]record.Query, 0, len(card.Editions))
	for i, ed := range card.Editions {
		place := joinPlaces(ed.PlaceOfPublication)
		diag := record.Diagnostic{VolumeEnumeration: ed.VolumeDesignation, SerialTitles: ed.SerialTitles}
		q, err := record.NewQuery(card.Title, card.Author, place, ed.YearOfPublication.lowestNonZero(), i, filename, diag)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func joinPlaces(places []string) string {
	joined := ""
	for i, p := range places {
		if i > 0 {
			joined += " "
		}
		joined += p
	}
	return joined
}

// unmarshalCard parses content as a single card object, falling back to a
// one-element array — some exports wrap a lone card in brackets.
func unmarshalCard[T any](content string) (T, error) {
	var card T
	if err := json.Unmarshal([]byte(content), &card); err == nil {
		return card, nil
	}
	var arr []T
	if err := json.Unmarshal([]byte(content), &arr); err == nil && len(arr) == 1 {
		return arr[0], nil
	}
	return card, fmt.Errorf("not a single card object or one-element array")
}

// invalidCardQueries produces the sentinel query the matching pipeline will
// classify as NoMatch for a card that failed to parse at all, rather than
// aborting the whole batch over one bad file.
func invalidCardQueries(filename string) []record.Query {
	q, err := record.NewQuery("INVALID JSON", "INVALID JSON", "", nil, invalidJSONEdition, filename, record.Diagnostic{})
	if err != nil {
		return nil
	}
	return []record.Query{q}
}
