package graphql

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/graph-gophers/graphql-go"

	"github.com/JaimeStill/veranstalter/internal/veranstalter"
	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/pagination"
	"github.com/JaimeStill/veranstalter/pkg/validation"
)

// Resolver is the root resolver for queries and mutations.
type Resolver struct {
	sys        veranstalter.System
	logger     *slog.Logger
	pagination pagination.Config
	validator  *validation.Validator
}

// NewResolver creates a root resolver backed by sys.
func NewResolver(sys veranstalter.System, logger *slog.Logger, cfg pagination.Config) *Resolver {
	return &Resolver{
		sys:        sys,
		logger:     logger.With("handler", "graphql"),
		pagination: cfg,
		validator:  veranstalter.NewValidator(),
	}
}

// parseID accepts the non-negative integer ids the store issues.
func parseID(raw graphql.ID) (int, error) {
	id, err := strconv.Atoi(string(raw))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: invalid id %q", veranstalter.ErrNotFound, raw)
	}
	return id, nil
}

type suchparameterInput struct {
	ID         *graphql.ID
	Name       *string
	Email      *string
	Aktiv      *bool
	Art        *string
	Ort        *string
	Land       *string
	Plz        *string
	Telefon    *string
	Kategorien *string
}

func (in *suchparameterInput) toSuchparameter() veranstalter.Suchparameter {
	params := make(veranstalter.Suchparameter)
	if in == nil {
		return params
	}

	set := func(key string, v *string) {
		if v != nil && *v != "" {
			params[key] = *v
		}
	}
	if in.ID != nil {
		id := string(*in.ID)
		set("id", &id)
	}
	set("name", in.Name)
	set("email", in.Email)
	set("art", in.Art)
	set("ort", in.Ort)
	set("land", in.Land)
	set("plz", in.Plz)
	set("telefon", in.Telefon)
	set("kategorien", in.Kategorien)
	if in.Aktiv != nil {
		params["aktiv"] = strconv.FormatBool(*in.Aktiv)
	}
	return params
}

type standortInput struct {
	Ort     string
	Plz     *string
	Strasse *string
	Land    *string
	Details *string
}

type teilnehmerInput struct {
	Vorname  string
	Nachname string
	Email    *string
}

type dokumentInput struct {
	Titel        string
	Beschreibung *string
	Dateiname    string
}

type veranstalterInput struct {
	Name            string
	Email           *string
	Telefon         *string
	Homepage        *string
	Gruendungsdatum *string
	Bewertung       *int32
	Aktiv           *bool
	Art             *string
	Kategorien      *[]string
	Standort        standortInput
	Teilnehmer      *[]teilnehmerInput
	Dokumente       *[]dokumentInput
}

type veranstalterUpdateInput struct {
	ID              graphql.ID
	Version         int32
	Name            *string
	Email           *string
	Telefon         graphql.NullString
	Homepage        graphql.NullString
	Gruendungsdatum graphql.NullString
	Bewertung       graphql.NullInt
	Aktiv           *bool
	Art             nullArt
	Kategorien      *[]string
	Standort        *standortInput
}

// updateCheck validates the fields an update provides.
type updateCheck struct {
	ID              string                    `json:"id" validate:"required,numeric"`
	Version         int                       `json:"version" validate:"gte=0"`
	Name            *string                   `json:"name" validate:"omitnil,min=1,max=64"`
	Email           *string                   `json:"email" validate:"omitempty,email"`
	Telefon         *string                   `json:"telefon" validate:"omitempty,telefon"`
	Homepage        *string                   `json:"homepage" validate:"omitempty,url"`
	Gruendungsdatum *string                   `json:"gruendungsdatum" validate:"omitempty,datetime=2006-01-02"`
	Bewertung       *int                      `json:"bewertung" validate:"omitempty,gte=0,lte=5"`
	Art             *string                   `json:"art" validate:"omitempty,oneof=ONLINE PRAESENZ HYBRID"`
	Kategorien      []string                  `json:"kategorien" validate:"omitempty,unique"`
	Standort        *veranstalter.StandortDTO `json:"standort"`
}

// Veranstalter resolves a single organizer with its participants and documents.
func (r *Resolver) Veranstalter(ctx context.Context, args struct{ ID graphql.ID }) (*veranstalterResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, wrap(r.logger, err)
	}

	v, err := r.sys.FindByID(ctx, id, veranstalter.FindOptions{Teilnehmer: true})
	if err != nil {
		return nil, wrap(r.logger, err)
	}
	return &veranstalterResolver{v}, nil
}

// Veranstalters resolves the first page of organizers matching suchparameter.
func (r *Resolver) Veranstalters(
	ctx context.Context,
	args struct{ Suchparameter *suchparameterInput },
) ([]*veranstalterResolver, error) {
	page := pagination.PageRequest{}
	page.Normalize(r.pagination)

	slice, err := r.sys.Find(ctx, args.Suchparameter.toSuchparameter(), page)
	if err != nil {
		return nil, wrap(r.logger, err)
	}

	out := make([]*veranstalterResolver, len(slice.Content))
	for i := range slice.Content {
		out[i] = &veranstalterResolver{&slice.Content[i]}
	}
	return out, nil
}

// Create registers a new organizer. Requires the admin or user role.
func (r *Resolver) Create(ctx context.Context, args struct{ Input veranstalterInput }) (*createPayload, error) {
	if err := auth.Authorize(ctx, auth.RoleAdmin, auth.RoleUser); err != nil {
		return nil, wrap(r.logger, err)
	}

	dto := args.Input.toDTO()
	if err := r.validator.Struct(dto); err != nil {
		return nil, wrap(r.logger, err)
	}

	v, err := dto.ToVeranstalter()
	if err != nil {
		return nil, wrap(r.logger, err)
	}
	applyCreateDefaults(&v, args.Input)

	id, err := r.sys.Create(ctx, veranstalter.CreateCommand{Veranstalter: v})
	if err != nil {
		return nil, wrap(r.logger, err)
	}
	return &createPayload{id: id}, nil
}

// Update patches the provided fields of an organizer. Requires the admin or user role.
func (r *Resolver) Update(ctx context.Context, args struct{ Input veranstalterUpdateInput }) (*updatePayload, error) {
	if err := auth.Authorize(ctx, auth.RoleAdmin, auth.RoleUser); err != nil {
		return nil, wrap(r.logger, err)
	}

	in := args.Input
	if err := r.validator.Struct(in.check()); err != nil {
		return nil, wrap(r.logger, err)
	}

	id, err := parseID(in.ID)
	if err != nil {
		return nil, wrap(r.logger, err)
	}

	patch, err := in.patch()
	if err != nil {
		return nil, wrap(r.logger, err)
	}

	version, err := r.sys.Update(ctx, veranstalter.UpdateCommand{
		ID:      id,
		Version: veranstalter.FormatVersion(int(in.Version)),
		Patch:   patch,
	})
	if err != nil {
		return nil, wrap(r.logger, err)
	}
	return &updatePayload{version: version}, nil
}

// Delete removes an organizer. Requires the admin role.
func (r *Resolver) Delete(ctx context.Context, args struct{ ID graphql.ID }) (*deletePayload, error) {
	if err := auth.Authorize(ctx, auth.RoleAdmin); err != nil {
		return nil, wrap(r.logger, err)
	}

	id, err := parseID(args.ID)
	if err != nil {
		return nil, wrap(r.logger, err)
	}

	if err := r.sys.Delete(ctx, id); err != nil {
		return nil, wrap(r.logger, err)
	}
	return &deletePayload{}, nil
}

func (in veranstalterInput) toDTO() veranstalter.VeranstalterDTO {
	dto := veranstalter.VeranstalterDTO{
		Name:            in.Name,
		Email:           in.Email,
		Telefon:         in.Telefon,
		Homepage:        in.Homepage,
		Gruendungsdatum: in.Gruendungsdatum,
		Bewertung:       intPtr(in.Bewertung),
		Aktiv:           in.Aktiv,
		Art:             in.Art,
		Standort:        in.Standort.toDTO(),
	}
	if in.Kategorien != nil {
		dto.Kategorien = *in.Kategorien
	}
	if in.Teilnehmer != nil {
		for _, t := range *in.Teilnehmer {
			dto.Teilnehmer = append(dto.Teilnehmer, veranstalter.TeilnehmerDTO{
				Vorname:  t.Vorname,
				Nachname: t.Nachname,
				Email:    t.Email,
			})
		}
	}
	if in.Dokumente != nil {
		for _, d := range *in.Dokumente {
			dto.Dokumente = append(dto.Dokumente, veranstalter.DokumentDTO{
				Titel:        d.Titel,
				Beschreibung: d.Beschreibung,
				Dateiname:    d.Dateiname,
			})
		}
	}
	return dto
}

func (in standortInput) toDTO() *veranstalter.StandortDTO {
	return &veranstalter.StandortDTO{
		Ort:     in.Ort,
		Plz:     in.Plz,
		Strasse: in.Strasse,
		Land:    in.Land,
		Details: in.Details,
	}
}

// applyCreateDefaults fills the values GraphQL clients may leave out:
// empty email, inactive, and empty postal code and street.
func applyCreateDefaults(v *veranstalter.Veranstalter, in veranstalterInput) {
	empty := ""
	if v.Email == nil {
		v.Email = &empty
	}
	if in.Aktiv == nil {
		v.Aktiv = false
	}
	if v.Standort != nil {
		if v.Standort.Plz == nil {
			v.Standort.Plz = &empty
		}
		if v.Standort.Strasse == nil {
			v.Standort.Strasse = &empty
		}
	}
	for i := range v.Teilnehmer {
		if v.Teilnehmer[i].Email == nil {
			v.Teilnehmer[i].Email = &empty
		}
	}
}

func (in veranstalterUpdateInput) check() updateCheck {
	c := updateCheck{
		ID:              string(in.ID),
		Version:         int(in.Version),
		Name:            in.Name,
		Email:           in.Email,
		Telefon:         in.Telefon.Value,
		Homepage:        in.Homepage.Value,
		Gruendungsdatum: in.Gruendungsdatum.Value,
		Bewertung:       intPtr(in.Bewertung.Value),
		Art:             in.Art.Value,
	}
	if in.Kategorien != nil {
		c.Kategorien = *in.Kategorien
	}
	if in.Standort != nil {
		c.Standort = in.Standort.toDTO()
	}
	return c
}

func (in veranstalterUpdateInput) patch() (veranstalter.Patch, error) {
	var p veranstalter.Patch

	if in.Name != nil {
		p.Name = veranstalter.Value(*in.Name)
	}
	if in.Email != nil {
		p.Email = veranstalter.Value(*in.Email)
	}
	p.Telefon = nullable(in.Telefon)
	p.Homepage = nullable(in.Homepage)
	if in.Aktiv != nil {
		p.Aktiv = veranstalter.Value(*in.Aktiv)
	}
	if in.Kategorien != nil {
		p.Kategorien = veranstalter.Value(*in.Kategorien)
	}

	if in.Gruendungsdatum.Set {
		p.Gruendungsdatum = veranstalter.Null[veranstalter.Date]()
		if in.Gruendungsdatum.Value != nil && *in.Gruendungsdatum.Value != "" {
			d, err := veranstalter.ParseDate(*in.Gruendungsdatum.Value)
			if err != nil {
				return p, fmt.Errorf("%w: gruendungsdatum: %v", veranstalter.ErrValidation, err)
			}
			p.Gruendungsdatum = veranstalter.Value(d)
		}
	}

	if in.Bewertung.Set {
		p.Bewertung = veranstalter.Field[int]{Set: true, Value: intPtr(in.Bewertung.Value)}
	}

	if in.Art.Set {
		p.Art = veranstalter.Null[veranstalter.Art]()
		if in.Art.Value != nil {
			p.Art = veranstalter.Value(veranstalter.Art(*in.Art.Value))
		}
	}

	if st := in.Standort; st != nil {
		plz := ""
		if st.Plz != nil {
			plz = *st.Plz
		}
		p.Standort = &veranstalter.StandortPatch{
			Ort:     veranstalter.Value(st.Ort),
			Plz:     veranstalter.Value(plz),
			Strasse: veranstalter.Field[string]{Set: true, Value: st.Strasse},
			Land:    veranstalter.Field[string]{Set: st.Land != nil, Value: st.Land},
			Details: veranstalter.Field[string]{Set: st.Details != nil, Value: st.Details},
		}
	}

	return p, nil
}

// nullArt distinguishes an explicit null art from an absent one.
type nullArt struct {
	Value *string
	Set   bool
}

func (nullArt) ImplementsGraphQLType(name string) bool {
	return name == "Art"
}

func (n *nullArt) UnmarshalGraphQL(input any) error {
	n.Set = true
	if input == nil {
		return nil
	}
	s, ok := input.(string)
	if !ok {
		return fmt.Errorf("wrong type for Art: %T", input)
	}
	n.Value = &s
	return nil
}

func (n *nullArt) Nullable() {}

func nullable(n graphql.NullString) veranstalter.Field[string] {
	return veranstalter.Field[string]{Set: n.Set, Value: n.Value}
}

func intPtr(v *int32) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}
