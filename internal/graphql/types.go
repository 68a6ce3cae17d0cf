package graphql

import (
	"strconv"

	"github.com/graph-gophers/graphql-go"

	"github.com/JaimeStill/veranstalter/internal/veranstalter"
)

type veranstalterResolver struct {
	v *veranstalter.Veranstalter
}

func (r *veranstalterResolver) ID() graphql.ID {
	return graphql.ID(strconv.Itoa(r.v.ID))
}

func (r *veranstalterResolver) Version() int32 {
	return int32(r.v.Version)
}

func (r *veranstalterResolver) Name() string {
	return r.v.Name
}

func (r *veranstalterResolver) Email() *string {
	return r.v.Email
}

func (r *veranstalterResolver) Telefon() *string {
	return r.v.Telefon
}

func (r *veranstalterResolver) Homepage() *string {
	return r.v.Homepage
}

func (r *veranstalterResolver) Gruendungsdatum() *string {
	if r.v.Gruendungsdatum == nil {
		return nil
	}
	s := r.v.Gruendungsdatum.String()
	return &s
}

func (r *veranstalterResolver) Bewertung() *int32 {
	if r.v.Bewertung == nil {
		return nil
	}
	b := int32(*r.v.Bewertung)
	return &b
}

func (r *veranstalterResolver) Aktiv() bool {
	return r.v.Aktiv
}

func (r *veranstalterResolver) Art() *string {
	if r.v.Art == nil {
		return nil
	}
	s := string(*r.v.Art)
	return &s
}

func (r *veranstalterResolver) Kategorien() []string {
	if r.v.Kategorien == nil {
		return []string{}
	}
	return r.v.Kategorien
}

func (r *veranstalterResolver) Standort() *standortResolver {
	if r.v.Standort == nil {
		return nil
	}
	return &standortResolver{r.v.Standort}
}

func (r *veranstalterResolver) Teilnehmer() []*teilnehmerResolver {
	out := make([]*teilnehmerResolver, len(r.v.Teilnehmer))
	for i := range r.v.Teilnehmer {
		out[i] = &teilnehmerResolver{&r.v.Teilnehmer[i]}
	}
	return out
}

func (r *veranstalterResolver) Dokumente() []*dokumentResolver {
	out := make([]*dokumentResolver, len(r.v.Dokumente))
	for i := range r.v.Dokumente {
		out[i] = &dokumentResolver{&r.v.Dokumente[i]}
	}
	return out
}

type standortResolver struct {
	s *veranstalter.Standort
}

func (r *standortResolver) Ort() string      { return r.s.Ort }
func (r *standortResolver) Plz() *string     { return r.s.Plz }
func (r *standortResolver) Strasse() *string { return r.s.Strasse }
func (r *standortResolver) Land() *string    { return r.s.Land }
func (r *standortResolver) Details() *string { return r.s.Details }

type teilnehmerResolver struct {
	t *veranstalter.Teilnehmer
}

func (r *teilnehmerResolver) Vorname() string  { return r.t.Vorname }
func (r *teilnehmerResolver) Nachname() string { return r.t.Nachname }
func (r *teilnehmerResolver) Email() *string   { return r.t.Email }

type dokumentResolver struct {
	d *veranstalter.Dokument
}

func (r *dokumentResolver) Titel() string         { return r.d.Titel }
func (r *dokumentResolver) Beschreibung() *string { return r.d.Beschreibung }
func (r *dokumentResolver) Dateiname() string     { return r.d.Dateiname }

type createPayload struct {
	id int
}

func (p *createPayload) ID() graphql.ID {
	return graphql.ID(strconv.Itoa(p.id))
}

type updatePayload struct {
	version int
}

func (p *updatePayload) Version() int32 {
	return int32(p.version)
}

type deletePayload struct{}

func (deletePayload) Success() bool {
	return true
}
