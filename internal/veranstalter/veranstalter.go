// Package veranstalter implements the event organizer domain.
// It provides the entity types, search predicates, version tokens,
// validated input DTOs, the read and write services, and the REST handler.
package veranstalter

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"
)

// Art classifies how an organizer runs its events.
type Art string

const (
	ArtOnline   Art = "ONLINE"
	ArtPraesenz Art = "PRAESENZ"
	ArtHybrid   Art = "HYBRID"
)

// Veranstalter is an event organizer with its owned Standort and,
// when loaded with FindOptions.Teilnehmer, its participants, documents
// and file metadata.
type Veranstalter struct {
	ID              int          `json:"id"`
	Version         int          `json:"version"`
	Name            string       `json:"name"`
	Email           *string      `json:"email"`
	Telefon         *string      `json:"telefon"`
	Homepage        *string      `json:"homepage"`
	Gruendungsdatum *Date        `json:"gruendungsdatum"`
	Bewertung       *int         `json:"bewertung"`
	Aktiv           bool         `json:"aktiv"`
	Art             *Art         `json:"art"`
	Kategorien      []string     `json:"kategorien"`
	Standort        *Standort    `json:"standort,omitempty"`
	Teilnehmer      []Teilnehmer `json:"teilnehmer,omitempty"`
	Dokumente       []Dokument   `json:"dokumente,omitempty"`
	File            *File        `json:"file,omitempty"`
	Erzeugt         time.Time    `json:"erzeugt"`
	Aktualisiert    time.Time    `json:"aktualisiert"`
}

// Standort is the location owned by exactly one organizer.
type Standort struct {
	ID      int     `json:"id"`
	Ort     string  `json:"ort"`
	Plz     *string `json:"plz"`
	Strasse *string `json:"strasse"`
	Land    *string `json:"land"`
	Details *string `json:"details"`
}

// Teilnehmer is a participant registered with an organizer.
type Teilnehmer struct {
	ID       int     `json:"id"`
	Vorname  string  `json:"vorname"`
	Nachname string  `json:"nachname"`
	Email    *string `json:"email"`
}

// Dokument references a document published by an organizer.
type Dokument struct {
	ID           int     `json:"id"`
	Titel        string  `json:"titel"`
	Beschreibung *string `json:"beschreibung"`
	Dateiname    string  `json:"dateiname"`
}

// File is the metadata of the single attachment an organizer may carry.
// The bytes live in blob storage under StorageKey.
type File struct {
	ID         int       `json:"id"`
	Filename   string    `json:"filename"`
	Mimetype   *string   `json:"mimetype"`
	SizeBytes  int64     `json:"size_bytes"`
	PageCount  *int      `json:"page_count,omitempty"`
	StorageKey string    `json:"-"`
	Erzeugt    time.Time `json:"erzeugt"`
}

// FileContent pairs file metadata with a stream of its bytes.
// The caller must close Body.
type FileContent struct {
	File
	Body io.ReadCloser
}

// FindOptions controls which relations FindByID loads besides the Standort.
type FindOptions struct {
	Teilnehmer bool
}

// CreateCommand carries a new organizer together with its owned rows.
type CreateCommand struct {
	Veranstalter Veranstalter
}

// UpdateCommand carries a patch guarded by the version token from If-Match.
type UpdateCommand struct {
	ID      int
	Version string
	Patch   Patch
}

// AddFileCommand carries an attachment for an existing organizer.
type AddFileCommand struct {
	ID       int
	Data     []byte
	Filename string
}

// Field is an optional patch value. An unset Field leaves the column
// untouched; a set Field with a nil Value writes NULL.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Value returns a set Field holding v.
func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a set Field that writes NULL.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// UnmarshalJSON marks the Field as set. A JSON null leaves Value nil.
// Keys absent from the document never reach UnmarshalJSON and stay unset.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	f.Value = nil
	if string(data) == "null" {
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// fieldValue unwraps a Field for validation. Unset and null Fields
// report nil so omitempty skips them.
func fieldValue[T any](v reflect.Value) any {
	f, ok := v.Interface().(Field[T])
	if !ok || f.Value == nil {
		return nil
	}
	return *f.Value
}

// StandortPatch updates the columns of the owned Standort row.
type StandortPatch struct {
	Ort     Field[string]
	Plz     Field[string]
	Strasse Field[string]
	Land    Field[string]
	Details Field[string]
}

// Patch lists the organizer columns an update may change.
type Patch struct {
	Name            Field[string]
	Email           Field[string]
	Telefon         Field[string]
	Homepage        Field[string]
	Gruendungsdatum Field[Date]
	Bewertung       Field[int]
	Aktiv           Field[bool]
	Art             Field[Art]
	Kategorien      Field[[]string]
	Standort        *StandortPatch
}

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day or zone.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses s in DateLayout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = Date{time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}
