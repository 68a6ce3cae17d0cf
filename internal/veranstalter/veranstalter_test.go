package veranstalter_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/veranstalter/internal/veranstalter"
	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/query"
	"github.com/JaimeStill/veranstalter/pkg/validation"
)

func TestBuildPredicates(t *testing.T) {
	preds, err := veranstalter.BuildPredicates(veranstalter.Suchparameter{
		"name":       "alp",
		"aktiv":      "TRUE",
		"id":         "20",
		"kategorien": "MUSIK",
		"ort":        "karls",
		"farbe":      "rot",
	}, discard())
	require.NoError(t, err)

	assert.Equal(t, veranstalter.Predicates{
		{Field: "Aktiv", Op: veranstalter.OpEquals, Value: true},
		{Field: "ID", Op: veranstalter.OpEquals, Value: 20},
		{Field: "Kategorien", Op: veranstalter.OpAnyOf, Value: "MUSIK"},
		{Field: "Name", Op: veranstalter.OpContains, Value: "alp"},
		{Field: "Ort", Op: veranstalter.OpContains, Value: "karls"},
	}, preds)
}

func TestBuildPredicatesAktiv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"True", true},
		{"false", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			preds, err := veranstalter.BuildPredicates(veranstalter.Suchparameter{"aktiv": tt.value}, discard())
			require.NoError(t, err)
			require.Len(t, preds, 1)
			assert.Equal(t, tt.want, preds[0].Value)
		})
	}
}

func TestBuildPredicatesInvalidID(t *testing.T) {
	_, err := veranstalter.BuildPredicates(veranstalter.Suchparameter{"id": "abc"}, discard())
	assert.ErrorIs(t, err, veranstalter.ErrInvalidSearch)
	assert.Equal(t, http.StatusNotFound, veranstalter.MapHTTPStatus(err))
}

func TestPredicatesApply(t *testing.T) {
	preds, err := veranstalter.BuildPredicates(veranstalter.Suchparameter{
		"name":       "alp",
		"email":      "a@acme.com",
		"kategorien": "MUSIK",
		"land":       "Deutschland",
	}, discard())
	require.NoError(t, err)

	qb := query.NewBuilder(veranstalter.Projection)
	sql, args := preds.Apply(qb).BuildCount()

	assert.Equal(t,
		"SELECT COUNT(*) FROM public.veranstalter v LEFT JOIN public.standort s ON s.veranstalter_id = v.id"+
			" WHERE v.email = $1 AND $2 = ANY(v.kategorien) AND s.land = $3 AND v.name ILIKE $4 ESCAPE '\\'",
		sql,
	)
	assert.Equal(t, []any{"a@acme.com", "MUSIK", "Deutschland", "%alp%"}, args)
}

func TestPredicatesApplyEscapesWildcards(t *testing.T) {
	preds, err := veranstalter.BuildPredicates(veranstalter.Suchparameter{"name": "a_c%"}, discard())
	require.NoError(t, err)

	_, args := preds.Apply(query.NewBuilder(veranstalter.Projection)).BuildCount()
	assert.Equal(t, []any{`%a\_c\%%`}, args)
}

func TestSuchparameterValidate(t *testing.T) {
	assert.NoError(t, veranstalter.Suchparameter{"name": "a", "plz": "76133"}.Validate())
	assert.ErrorIs(t, veranstalter.Suchparameter{"farbe": "rot"}.Validate(), veranstalter.ErrInvalidSearch)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		token string
		want  int
		err   bool
	}{
		{`"0"`, 0, false},
		{`"12"`, 12, false},
		{`"-1"`, 0, true},
		{`12`, 0, true},
		{`"1.5"`, 0, true},
		{`W/"1"`, 0, true},
		{`""`, 0, true},
		{`"1" `, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := veranstalter.ParseVersion(tt.token)
			if tt.err {
				assert.ErrorIs(t, err, veranstalter.ErrVersionInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, `"7"`, veranstalter.FormatVersion(7))

	v, err := veranstalter.ParseVersion(veranstalter.FormatVersion(7))
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, veranstalter.CheckVersion(3, 3))
	assert.NoError(t, veranstalter.CheckVersion(4, 3))
	assert.ErrorIs(t, veranstalter.CheckVersion(2, 3), veranstalter.ErrVersionOutdated)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{veranstalter.ErrNotFound, http.StatusNotFound},
		{veranstalter.ErrInvalidSearch, http.StatusNotFound},
		{&validation.Error{}, http.StatusBadRequest},
		{veranstalter.ErrInvalidMimeType, http.StatusBadRequest},
		{veranstalter.ErrVersionInvalid, http.StatusPreconditionFailed},
		{veranstalter.ErrVersionOutdated, http.StatusPreconditionFailed},
		{veranstalter.ErrPreconditionRequired, http.StatusPreconditionRequired},
		{veranstalter.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{veranstalter.ErrNotAcceptable, http.StatusNotAcceptable},
		{auth.ErrUnauthorized, http.StatusUnauthorized},
		{auth.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, veranstalter.MapHTTPStatus(tt.err))
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := veranstalter.NewDate(2001, time.February, 3)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2001-02-03"`, string(data))

	var back veranstalter.Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`"03.02.2001"`), &back))
}

func TestDateScan(t *testing.T) {
	var d veranstalter.Date
	require.NoError(t, d.Scan(time.Date(2001, 2, 3, 15, 4, 5, 0, time.Local)))
	assert.Equal(t, "2001-02-03", d.String())

	require.NoError(t, d.Scan("1998-11-30"))
	assert.Equal(t, "1998-11-30", d.String())

	assert.Error(t, d.Scan(42))
}

func TestUpdateSQL(t *testing.T) {
	p := veranstalter.Patch{
		Name:    veranstalter.Value("Neu"),
		Telefon: veranstalter.Null[string](),
		Art:     veranstalter.Value(veranstalter.ArtHybrid),
	}

	sql, args := veranstalter.UpdateSQL(p, 5)

	assert.Equal(t,
		"UPDATE veranstalter SET name = $1, telefon = $2, art = $3, version = version + 1 WHERE id = $4 RETURNING version",
		sql,
	)
	require.Len(t, args, 4)
	assert.Equal(t, "Neu", args[0])
	assert.Nil(t, args[1])
	assert.Equal(t, "HYBRID", *args[2].(*string))
	assert.Equal(t, 5, args[3])
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	assert.Equal(t,
		"veranstalter/3/550e8400-e29b-41d4-a716-446655440000/plan%20a.pdf",
		veranstalter.StorageKey(3, id, veranstalter.SanitizeFilename("../../plan a.pdf")),
	)
	assert.Equal(t, "file", veranstalter.SanitizeFilename(""))
}

func TestDetectMimeType(t *testing.T) {
	mt, ok := veranstalter.DetectMimeType(pngHeader)
	assert.True(t, ok)
	assert.Equal(t, "image/png", mt)

	mt, ok = veranstalter.DetectMimeType([]byte("%PDF-1.7\n"))
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", mt)

	_, ok = veranstalter.DetectMimeType([]byte("hello"))
	assert.False(t, ok)
}
