package veranstalter_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/veranstalter/internal/veranstalter"
	"github.com/JaimeStill/veranstalter/pkg/validation"
)

func ptr[T any](v T) *T {
	return &v
}

func validDTO() veranstalter.VeranstalterDTO {
	return veranstalter.VeranstalterDTO{
		Name:            "Alpha Events",
		Email:           ptr("alpha@acme.com"),
		Telefon:         ptr("+49 (721) 123-456"),
		Homepage:        ptr("https://alpha.acme.com"),
		Gruendungsdatum: ptr("2001-02-01"),
		Bewertung:       ptr(4),
		Art:             ptr("PRAESENZ"),
		Kategorien:      []string{"MUSIK", "KULTUR"},
		Standort:        &veranstalter.StandortDTO{Ort: "Karlsruhe", Plz: ptr("76133")},
		Teilnehmer:      []veranstalter.TeilnehmerDTO{{Vorname: "Anna", Nachname: "Alpha"}},
		Dokumente:       []veranstalter.DokumentDTO{{Titel: "Plan", Dateiname: "plan.pdf"}},
	}
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr.Messages()
}

func TestVeranstalterDTOValid(t *testing.T) {
	assert.NoError(t, veranstalter.NewValidator().Struct(validDTO()))
}

func TestVeranstalterDTOViolations(t *testing.T) {
	v := veranstalter.NewValidator()

	tests := []struct {
		name   string
		mutate func(*veranstalter.VeranstalterDTO)
		want   string
	}{
		{"name required", func(d *veranstalter.VeranstalterDTO) { d.Name = "" }, "name: is required"},
		{"telefon pattern", func(d *veranstalter.VeranstalterDTO) { d.Telefon = ptr("12") }, `telefon: must match ^\+?[0-9\s/()-]{5,}$`},
		{"homepage url", func(d *veranstalter.VeranstalterDTO) { d.Homepage = ptr("nope") }, "homepage: must be a valid URL"},
		{"date format", func(d *veranstalter.VeranstalterDTO) { d.Gruendungsdatum = ptr("01.02.2001") }, "gruendungsdatum: must be a date in the form 2006-01-02"},
		{"bewertung range", func(d *veranstalter.VeranstalterDTO) { d.Bewertung = ptr(-1) }, "bewertung: must be greater than or equal to 0"},
		{"art enum", func(d *veranstalter.VeranstalterDTO) { d.Art = ptr("RADIO") }, "art: must be one of [ONLINE PRAESENZ HYBRID]"},
		{"kategorien unique", func(d *veranstalter.VeranstalterDTO) { d.Kategorien = []string{"A", "A"} }, "kategorien: must not contain duplicates"},
		{"standort required", func(d *veranstalter.VeranstalterDTO) { d.Standort = nil }, "standort: is required"},
		{"ort pattern", func(d *veranstalter.VeranstalterDTO) { d.Standort.Ort = " Berlin" }, `standort.ort: must match ^\w.*`},
		{"teilnehmer nested", func(d *veranstalter.VeranstalterDTO) { d.Teilnehmer[0].Nachname = "" }, "teilnehmer[0].nachname: is required"},
		{"dokument nested", func(d *veranstalter.VeranstalterDTO) { d.Dokumente[0].Dateiname = "" }, "dokumente[0].dateiname: is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := validDTO()
			tt.mutate(&dto)
			assert.Equal(t, []string{tt.want}, messages(t, v.Struct(dto)))
		})
	}
}

func TestToVeranstalter(t *testing.T) {
	dto := validDTO()

	v, err := dto.ToVeranstalter()
	require.NoError(t, err)

	assert.Equal(t, "Alpha Events", v.Name)
	assert.True(t, v.Aktiv)
	assert.Equal(t, veranstalter.ArtPraesenz, *v.Art)
	assert.Equal(t, "2001-02-01", v.Gruendungsdatum.String())
	assert.Equal(t, "Karlsruhe", v.Standort.Ort)
	assert.Len(t, v.Teilnehmer, 1)
	assert.Len(t, v.Dokumente, 1)

	dto.Aktiv = ptr(false)
	dto.Kategorien = nil
	v, err = dto.ToVeranstalter()
	require.NoError(t, err)
	assert.False(t, v.Aktiv)
	assert.Equal(t, []string{}, v.Kategorien)
}

func decodeUpdate(t *testing.T, body string) veranstalter.VeranstalterUpdateDTO {
	t.Helper()
	var dto veranstalter.VeranstalterUpdateDTO
	require.NoError(t, json.Unmarshal([]byte(body), &dto))
	return dto
}

func TestUpdateDTOPatch(t *testing.T) {
	t.Run("absent keys stay unset", func(t *testing.T) {
		p, err := decodeUpdate(t, `{"name": "Neu"}`).Patch()
		require.NoError(t, err)

		assert.Equal(t, "Neu", *p.Name.Value)
		assert.False(t, p.Email.Set)
		assert.False(t, p.Homepage.Set)
		assert.False(t, p.Bewertung.Set)
		assert.False(t, p.Aktiv.Set)
		assert.False(t, p.Art.Set)
		assert.False(t, p.Kategorien.Set)
		assert.Nil(t, p.Standort)

		sql, args := veranstalter.UpdateSQL(p, 2)
		assert.Equal(t,
			"UPDATE veranstalter SET name = $1, version = version + 1 WHERE id = $2 RETURNING version",
			sql,
		)
		assert.Equal(t, []any{"Neu", 2}, args)
	})

	t.Run("explicit null clears", func(t *testing.T) {
		p, err := decodeUpdate(t, `{
			"name": "Neu",
			"telefon": null,
			"gruendungsdatum": null,
			"art": null,
			"aktiv": null,
			"kategorien": null
		}`).Patch()
		require.NoError(t, err)

		assert.True(t, p.Telefon.Set)
		assert.Nil(t, p.Telefon.Value)
		assert.True(t, p.Gruendungsdatum.Set)
		assert.Nil(t, p.Gruendungsdatum.Value)
		assert.True(t, p.Art.Set)
		assert.Nil(t, p.Art.Value)
		assert.False(t, *p.Aktiv.Value)
		assert.Equal(t, []string{}, *p.Kategorien.Value)
	})

	t.Run("values", func(t *testing.T) {
		p, err := decodeUpdate(t, `{
			"name": "Neu",
			"telefon": "0721 1234",
			"gruendungsdatum": "2003-04-05",
			"bewertung": 3,
			"art": "ONLINE",
			"standort": {"ort": "Basel", "plz": null}
		}`).Patch()
		require.NoError(t, err)

		assert.Equal(t, "0721 1234", *p.Telefon.Value)
		assert.Equal(t, "2003-04-05", p.Gruendungsdatum.Value.String())
		assert.Equal(t, 3, *p.Bewertung.Value)
		assert.Equal(t, veranstalter.ArtOnline, *p.Art.Value)

		require.NotNil(t, p.Standort)
		assert.Equal(t, "Basel", *p.Standort.Ort.Value)
		assert.True(t, p.Standort.Plz.Set)
		assert.Nil(t, p.Standort.Plz.Value)
		assert.False(t, p.Standort.Strasse.Set)
	})
}

func TestUpdateDTOViolations(t *testing.T) {
	v := veranstalter.NewValidator()

	require.NoError(t, v.Struct(decodeUpdate(t, `{"name": "Neu", "email": null}`)))

	dto := decodeUpdate(t, `{
		"name": "Neu",
		"email": "kaputt",
		"bewertung": 9,
		"art": "RADIO",
		"kategorien": ["A", "A"],
		"standort": {"ort": "Basel", "plz": "1"}
	}`)

	assert.ElementsMatch(t, []string{
		"email: must be a valid email address",
		"bewertung: must be less than or equal to 5",
		"art: must be one of [ONLINE PRAESENZ HYBRID]",
		"kategorien: must not contain duplicates",
		"standort.plz: must match " + `^\d{4,5}$`,
	}, messages(t, v.Struct(dto)))
}
