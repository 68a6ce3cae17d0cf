package veranstalter

import (
	"sync"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JaimeStill/veranstalter/pkg/query"
	"github.com/JaimeStill/veranstalter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "veranstalter", "v").
	Project("id", "ID").
	Project("version", "Version").
	Project("name", "Name").
	Project("email", "Email").
	Project("telefon", "Telefon").
	Project("homepage", "Homepage").
	Project("gruendungsdatum", "Gruendungsdatum").
	Project("bewertung", "Bewertung").
	Project("aktiv", "Aktiv").
	Project("art", "Art").
	Project("kategorien", "Kategorien").
	Project("erzeugt", "Erzeugt").
	Project("aktualisiert", "Aktualisiert").
	Join("public", "standort", "s", "LEFT JOIN", "s.veranstalter_id = v.id").
	Project("id", "StandortID").
	Project("ort", "Ort").
	Project("plz", "Plz").
	Project("strasse", "Strasse").
	Project("land", "Land").
	Project("details", "Details")

var defaultSort = query.SortField{Field: "ID"}

// typeMaps hands out pgtype maps for scanning text[] columns.
// A pgtype.Map is not safe for concurrent use.
var typeMaps = sync.Pool{
	New: func() any { return pgtype.NewMap() },
}

func scanVeranstalter(s repository.Scanner) (Veranstalter, error) {
	var (
		v          Veranstalter
		standortID *int
		ort        *string
		st         Standort
	)

	m := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(m)

	err := s.Scan(
		&v.ID,
		&v.Version,
		&v.Name,
		&v.Email,
		&v.Telefon,
		&v.Homepage,
		&v.Gruendungsdatum,
		&v.Bewertung,
		&v.Aktiv,
		&v.Art,
		m.SQLScanner(&v.Kategorien),
		&v.Erzeugt,
		&v.Aktualisiert,
		&standortID,
		&ort,
		&st.Plz,
		&st.Strasse,
		&st.Land,
		&st.Details,
	)
	if err != nil {
		return v, err
	}

	if v.Kategorien == nil {
		v.Kategorien = []string{}
	}

	if standortID != nil {
		st.ID = *standortID
		if ort != nil {
			st.Ort = *ort
		}
		v.Standort = &st
	}

	return v, nil
}

func scanTeilnehmer(s repository.Scanner) (Teilnehmer, error) {
	var t Teilnehmer
	err := s.Scan(&t.ID, &t.Vorname, &t.Nachname, &t.Email)
	return t, err
}

func scanDokument(s repository.Scanner) (Dokument, error) {
	var d Dokument
	err := s.Scan(&d.ID, &d.Titel, &d.Beschreibung, &d.Dateiname)
	return d, err
}

func scanFile(s repository.Scanner) (File, error) {
	var f File
	err := s.Scan(
		&f.ID,
		&f.Filename,
		&f.Mimetype,
		&f.SizeBytes,
		&f.PageCount,
		&f.StorageKey,
		&f.Erzeugt,
	)
	return f, err
}

const (
	selectTeilnehmer = `
		SELECT id, vorname, nachname, email
		FROM teilnehmer
		WHERE veranstalter_id = $1
		ORDER BY id`

	selectDokumente = `
		SELECT id, titel, beschreibung, dateiname
		FROM dokument
		WHERE veranstalter_id = $1
		ORDER BY id`

	selectFile = `
		SELECT id, filename, mimetype, size_bytes, page_count, storage_key, erzeugt
		FROM veranstalter_file
		WHERE veranstalter_id = $1`
)
