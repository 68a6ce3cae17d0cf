package veranstalter

import (
	"fmt"
	"regexp"

	"github.com/JaimeStill/veranstalter/pkg/validation"
)

var (
	telefonPattern = regexp.MustCompile(`^\+?[0-9\s/()-]{5,}$`)
	plzPattern     = regexp.MustCompile(`^\d{4,5}$`)
	ortPattern     = regexp.MustCompile(`^\w.*`)
)

// NewValidator returns a validator with the organizer pattern tags registered.
func NewValidator() *validation.Validator {
	v := validation.New()
	patterns := map[string]*regexp.Regexp{
		"telefon": telefonPattern,
		"plz":     plzPattern,
		"ort":     ortPattern,
	}
	for tag, re := range patterns {
		if err := v.RegisterPattern(tag, re); err != nil {
			panic(fmt.Sprintf("register %s pattern: %v", tag, err))
		}
	}
	v.RegisterType(fieldValue[string], Field[string]{})
	v.RegisterType(fieldValue[int], Field[int]{})
	v.RegisterType(fieldValue[bool], Field[bool]{})
	v.RegisterType(fieldValue[[]string], Field[[]string]{})
	return v
}

// VeranstalterDTO is the request body for creating an organizer.
type VeranstalterDTO struct {
	Name            string          `json:"name" validate:"required,max=64"`
	Email           *string         `json:"email" validate:"omitempty,email"`
	Telefon         *string         `json:"telefon" validate:"omitempty,telefon"`
	Homepage        *string         `json:"homepage" validate:"omitempty,url"`
	Gruendungsdatum *string         `json:"gruendungsdatum" validate:"omitempty,datetime=2006-01-02"`
	Bewertung       *int            `json:"bewertung" validate:"omitempty,gte=0,lte=5"`
	Aktiv           *bool           `json:"aktiv"`
	Art             *string         `json:"art" validate:"omitempty,oneof=ONLINE PRAESENZ HYBRID"`
	Kategorien      []string        `json:"kategorien" validate:"omitempty,unique"`
	Standort        *StandortDTO    `json:"standort" validate:"required"`
	Teilnehmer      []TeilnehmerDTO `json:"teilnehmer" validate:"omitempty,dive"`
	Dokumente       []DokumentDTO   `json:"dokumente" validate:"omitempty,dive"`
}

// VeranstalterUpdateDTO is the request body for updating an organizer.
// Keys left out of the body keep their stored value. An explicit null
// clears the column. Participants and documents are not changed.
type VeranstalterUpdateDTO struct {
	Name            string             `json:"name" validate:"required,max=64"`
	Email           Field[string]      `json:"email" validate:"omitempty,email"`
	Telefon         Field[string]      `json:"telefon" validate:"omitempty,telefon"`
	Homepage        Field[string]      `json:"homepage" validate:"omitempty,url"`
	Gruendungsdatum Field[string]      `json:"gruendungsdatum" validate:"omitempty,datetime=2006-01-02"`
	Bewertung       Field[int]         `json:"bewertung" validate:"omitempty,gte=0,lte=5"`
	Aktiv           Field[bool]        `json:"aktiv"`
	Art             Field[string]      `json:"art" validate:"omitempty,oneof=ONLINE PRAESENZ HYBRID"`
	Kategorien      Field[[]string]    `json:"kategorien" validate:"omitempty,unique"`
	Standort        *StandortUpdateDTO `json:"standort"`
}

// StandortUpdateDTO is the nested location of an update body.
type StandortUpdateDTO struct {
	Ort     string        `json:"ort" validate:"required,ort,max=40"`
	Plz     Field[string] `json:"plz" validate:"omitempty,plz"`
	Strasse Field[string] `json:"strasse" validate:"omitempty,max=64"`
	Land    Field[string] `json:"land" validate:"omitempty,max=64"`
	Details Field[string] `json:"details" validate:"omitempty,max=128"`
}

// StandortDTO is the nested location of an organizer.
type StandortDTO struct {
	Ort     string  `json:"ort" validate:"required,ort,max=40"`
	Plz     *string `json:"plz" validate:"omitempty,plz"`
	Strasse *string `json:"strasse" validate:"omitempty,max=64"`
	Land    *string `json:"land" validate:"omitempty,max=64"`
	Details *string `json:"details" validate:"omitempty,max=128"`
}

// TeilnehmerDTO is a participant submitted with a new organizer.
type TeilnehmerDTO struct {
	Vorname  string  `json:"vorname" validate:"required,max=64"`
	Nachname string  `json:"nachname" validate:"required,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// DokumentDTO is a document reference submitted with a new organizer.
type DokumentDTO struct {
	Titel        string  `json:"titel" validate:"required,max=128"`
	Beschreibung *string `json:"beschreibung" validate:"omitempty,max=512"`
	Dateiname    string  `json:"dateiname" validate:"required,max=255"`
}

// ToVeranstalter maps a validated create body to an entity.
// Aktiv defaults to true.
func (d VeranstalterDTO) ToVeranstalter() (Veranstalter, error) {
	datum, err := parseOptionalDate(d.Gruendungsdatum)
	if err != nil {
		return Veranstalter{}, err
	}

	v := Veranstalter{
		Name:            d.Name,
		Email:           d.Email,
		Telefon:         d.Telefon,
		Homepage:        d.Homepage,
		Gruendungsdatum: datum,
		Bewertung:       d.Bewertung,
		Aktiv:           true,
		Art:             toArt(d.Art),
		Kategorien:      d.Kategorien,
	}
	if d.Aktiv != nil {
		v.Aktiv = *d.Aktiv
	}
	if v.Kategorien == nil {
		v.Kategorien = []string{}
	}

	if d.Standort != nil {
		st := d.Standort.ToStandort()
		v.Standort = &st
	}

	for _, t := range d.Teilnehmer {
		v.Teilnehmer = append(v.Teilnehmer, Teilnehmer{
			Vorname:  t.Vorname,
			Nachname: t.Nachname,
			Email:    t.Email,
		})
	}

	for _, doc := range d.Dokumente {
		v.Dokumente = append(v.Dokumente, Dokument{
			Titel:        doc.Titel,
			Beschreibung: doc.Beschreibung,
			Dateiname:    doc.Dateiname,
		})
	}

	return v, nil
}

// ToStandort maps the nested location body to an entity.
func (d StandortDTO) ToStandort() Standort {
	return Standort{
		Ort:     d.Ort,
		Plz:     d.Plz,
		Strasse: d.Strasse,
		Land:    d.Land,
		Details: d.Details,
	}
}

// Patch maps a validated update body to the columns it names.
// A null aktiv resets the flag to false and a null kategorien to the
// empty list, since neither column holds NULL.
func (d VeranstalterUpdateDTO) Patch() (Patch, error) {
	datum, err := datePatch(d.Gruendungsdatum)
	if err != nil {
		return Patch{}, err
	}

	p := Patch{
		Name:            Value(d.Name),
		Email:           d.Email,
		Telefon:         d.Telefon,
		Homepage:        d.Homepage,
		Gruendungsdatum: datum,
		Bewertung:       d.Bewertung,
		Aktiv:           d.Aktiv,
		Kategorien:      d.Kategorien,
	}
	if p.Aktiv.Set && p.Aktiv.Value == nil {
		p.Aktiv = Value(false)
	}
	if p.Kategorien.Set && p.Kategorien.Value == nil {
		p.Kategorien = Value([]string{})
	}
	if d.Art.Set {
		p.Art = Field[Art]{Set: true, Value: toArt(d.Art.Value)}
	}

	if st := d.Standort; st != nil {
		p.Standort = &StandortPatch{
			Ort:     Value(st.Ort),
			Plz:     st.Plz,
			Strasse: st.Strasse,
			Land:    st.Land,
			Details: st.Details,
		}
	}

	return p, nil
}

func datePatch(f Field[string]) (Field[Date], error) {
	if !f.Set {
		return Field[Date]{}, nil
	}
	datum, err := parseOptionalDate(f.Value)
	if err != nil {
		return Field[Date]{}, err
	}
	return Field[Date]{Set: true, Value: datum}, nil
}

func parseOptionalDate(s *string) (*Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: gruendungsdatum: %v", ErrValidation, err)
	}
	return &d, nil
}

func toArt(s *string) *Art {
	if s == nil || *s == "" {
		return nil
	}
	a := Art(*s)
	return &a
}
