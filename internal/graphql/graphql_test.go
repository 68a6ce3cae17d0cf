package graphql_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gql "github.com/JaimeStill/veranstalter/internal/graphql"
	"github.com/JaimeStill/veranstalter/internal/veranstalter"
	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/pagination"
)

var testPagination = pagination.Config{DefaultPageSize: 5, MaxPageSize: 100}

type mockSystem struct {
	findByIDFn func(ctx context.Context, id int, opts veranstalter.FindOptions) (*veranstalter.Veranstalter, error)
	findFn     func(ctx context.Context, params veranstalter.Suchparameter, page pagination.PageRequest) (*pagination.Slice[veranstalter.Veranstalter], error)
	createFn   func(ctx context.Context, cmd veranstalter.CreateCommand) (int, error)
	updateFn   func(ctx context.Context, cmd veranstalter.UpdateCommand) (int, error)
	deleteFn   func(ctx context.Context, id int) error
}

func (m *mockSystem) Handler(string, int64) *veranstalter.Handler { return nil }

func (m *mockSystem) FindByID(ctx context.Context, id int, opts veranstalter.FindOptions) (*veranstalter.Veranstalter, error) {
	return m.findByIDFn(ctx, id, opts)
}

func (m *mockSystem) Find(ctx context.Context, params veranstalter.Suchparameter, page pagination.PageRequest) (*pagination.Slice[veranstalter.Veranstalter], error) {
	return m.findFn(ctx, params, page)
}

func (m *mockSystem) FindFile(context.Context, int) (*veranstalter.FileContent, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSystem) Count(context.Context) (int, error) {
	return 0, errors.New("not implemented")
}

func (m *mockSystem) Create(ctx context.Context, cmd veranstalter.CreateCommand) (int, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) AddFile(context.Context, veranstalter.AddFileCommand) (*veranstalter.File, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSystem) Update(ctx context.Context, cmd veranstalter.UpdateCommand) (int, error) {
	return m.updateFn(ctx, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id int) error {
	return m.deleteFn(ctx, id)
}

type result struct {
	data   map[string]any
	errors []gqlError
}

type gqlError struct {
	message    string
	extensions map[string]any
}

func exec(t *testing.T, sys *mockSystem, ctx context.Context, query string, vars map[string]any) result {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	schema := gql.NewSchema(sys, logger, testPagination)

	resp := schema.Exec(ctx, query, "", vars)

	var out result
	if len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, &out.data))
	}
	for _, e := range resp.Errors {
		out.errors = append(out.errors, gqlError{message: e.Message, extensions: e.Extensions})
	}
	return out
}

func as(roles ...string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Subject: "1", Roles: roles})
}

func code(t *testing.T, res result) string {
	t.Helper()
	require.Len(t, res.errors, 1)
	c, _ := res.errors[0].extensions["code"].(string)
	return c
}

func sample() *veranstalter.Veranstalter {
	art := veranstalter.ArtHybrid
	plz := "10115"
	bewertung := 4
	return &veranstalter.Veranstalter{
		ID:         1,
		Version:    3,
		Name:       "Alpha Events",
		Bewertung:  &bewertung,
		Aktiv:      true,
		Art:        &art,
		Kategorien: []string{"MUSIK"},
		Standort:   &veranstalter.Standort{Ort: "Berlin", Plz: &plz},
		Teilnehmer: []veranstalter.Teilnehmer{{Vorname: "Max", Nachname: "Muster"}},
	}
}

func TestVeranstalterQuery(t *testing.T) {
	var opts veranstalter.FindOptions
	sys := &mockSystem{
		findByIDFn: func(_ context.Context, id int, o veranstalter.FindOptions) (*veranstalter.Veranstalter, error) {
			opts = o
			if id != 1 {
				return nil, fmt.Errorf("%w: id %d", veranstalter.ErrNotFound, id)
			}
			return sample(), nil
		},
	}

	const q = `query($id: ID!) {
		veranstalter(id: $id) {
			id version name bewertung art kategorien
			standort { ort plz }
			teilnehmer { nachname }
		}
	}`

	t.Run("found", func(t *testing.T) {
		res := exec(t, sys, context.Background(), q, map[string]any{"id": "1"})
		require.Empty(t, res.errors)
		assert.True(t, opts.Teilnehmer)

		v := res.data["veranstalter"].(map[string]any)
		assert.Equal(t, "1", v["id"])
		assert.Equal(t, float64(3), v["version"])
		assert.Equal(t, float64(4), v["bewertung"])
		assert.Equal(t, "HYBRID", v["art"])
		assert.Equal(t, []any{"MUSIK"}, v["kategorien"])
		assert.Equal(t, "Berlin", v["standort"].(map[string]any)["ort"])
		assert.Len(t, v["teilnehmer"], 1)
	})

	t.Run("not found", func(t *testing.T) {
		res := exec(t, sys, context.Background(), q, map[string]any{"id": "999"})
		assert.Equal(t, gql.CodeNotFound, code(t, res))
	})

	t.Run("non-numeric id", func(t *testing.T) {
		res := exec(t, sys, context.Background(), q, map[string]any{"id": "abc"})
		assert.Equal(t, gql.CodeNotFound, code(t, res))
	})
}

func TestVeranstaltersQuery(t *testing.T) {
	var gotParams veranstalter.Suchparameter
	var gotPage pagination.PageRequest
	sys := &mockSystem{
		findFn: func(_ context.Context, params veranstalter.Suchparameter, page pagination.PageRequest) (*pagination.Slice[veranstalter.Veranstalter], error) {
			gotParams, gotPage = params, page
			if params["name"] == "none" {
				return nil, fmt.Errorf("%w: no match on page 0", veranstalter.ErrNotFound)
			}
			return &pagination.Slice[veranstalter.Veranstalter]{
				Content:       []veranstalter.Veranstalter{*sample()},
				TotalElements: 1,
			}, nil
		},
	}

	t.Run("filters", func(t *testing.T) {
		res := exec(t, sys, context.Background(),
			`{ veranstalters(suchparameter: {name: "Alpha", aktiv: true, art: HYBRID}) { id name } }`, nil)
		require.Empty(t, res.errors)

		assert.Equal(t, veranstalter.Suchparameter{"name": "Alpha", "aktiv": "true", "art": "HYBRID"}, gotParams)
		assert.Equal(t, pagination.PageRequest{Number: 0, Size: 5}, gotPage)
		assert.Len(t, res.data["veranstalters"], 1)
	})

	t.Run("by id", func(t *testing.T) {
		res := exec(t, sys, context.Background(), `{ veranstalters(suchparameter: {id: "20"}) { id } }`, nil)
		require.Empty(t, res.errors)
		assert.Equal(t, veranstalter.Suchparameter{"id": "20"}, gotParams)
	})

	t.Run("no filter", func(t *testing.T) {
		res := exec(t, sys, context.Background(), `{ veranstalters { id } }`, nil)
		require.Empty(t, res.errors)
		assert.Empty(t, gotParams)
	})

	t.Run("no match", func(t *testing.T) {
		res := exec(t, sys, context.Background(), `{ veranstalters(suchparameter: {name: "none"}) { id } }`, nil)
		assert.Equal(t, gql.CodeNotFound, code(t, res))
	})
}

const createMutation = `mutation($input: VeranstalterInput!) { create(input: $input) { id } }`

func createInput() map[string]any {
	return map[string]any{
		"name":       "Epsilon Kultur",
		"kategorien": []any{"KUNST"},
		"standort":   map[string]any{"ort": "Hamburg"},
		"teilnehmer": []any{map[string]any{"vorname": "Erika", "nachname": "Muster"}},
	}
}

func TestCreateMutation(t *testing.T) {
	var got veranstalter.CreateCommand
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd veranstalter.CreateCommand) (int, error) {
			got = cmd
			return 41, nil
		},
	}

	t.Run("created with defaults", func(t *testing.T) {
		res := exec(t, sys, as(auth.RoleUser), createMutation, map[string]any{"input": createInput()})
		require.Empty(t, res.errors)
		assert.Equal(t, "41", res.data["create"].(map[string]any)["id"])

		v := got.Veranstalter
		assert.Equal(t, "Epsilon Kultur", v.Name)
		assert.False(t, v.Aktiv)
		require.NotNil(t, v.Email)
		assert.Equal(t, "", *v.Email)
		require.NotNil(t, v.Standort)
		assert.Equal(t, "", *v.Standort.Plz)
		assert.Equal(t, "", *v.Standort.Strasse)
		require.Len(t, v.Teilnehmer, 1)
		assert.Equal(t, "", *v.Teilnehmer[0].Email)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		res := exec(t, sys, context.Background(), createMutation, map[string]any{"input": createInput()})
		assert.Equal(t, gql.CodeUnauthenticated, code(t, res))
	})

	t.Run("forbidden", func(t *testing.T) {
		res := exec(t, sys, as("guest"), createMutation, map[string]any{"input": createInput()})
		assert.Equal(t, gql.CodeForbidden, code(t, res))
	})

	t.Run("invalid input", func(t *testing.T) {
		input := createInput()
		input["bewertung"] = float64(9)
		input["email"] = "kein-email"

		res := exec(t, sys, as(auth.RoleAdmin), createMutation, map[string]any{"input": input})
		assert.Equal(t, gql.CodeBadUserInput, code(t, res))

		messages, ok := res.errors[0].extensions["messages"].([]string)
		require.True(t, ok)
		assert.Len(t, messages, 2)
	})

	t.Run("internal error is masked", func(t *testing.T) {
		failing := &mockSystem{
			createFn: func(context.Context, veranstalter.CreateCommand) (int, error) {
				return 0, errors.New("connection reset")
			},
		}
		res := exec(t, failing, as(auth.RoleAdmin), createMutation, map[string]any{"input": createInput()})
		assert.Equal(t, gql.CodeInternal, code(t, res))
		assert.Equal(t, "internal server error", res.errors[0].message)
	})
}

const updateMutation = `mutation($input: VeranstalterUpdateInput!) { update(input: $input) { version } }`

func TestUpdateMutation(t *testing.T) {
	var got veranstalter.UpdateCommand
	sys := &mockSystem{
		updateFn: func(_ context.Context, cmd veranstalter.UpdateCommand) (int, error) {
			got = cmd
			if cmd.Version == `"0"` {
				return 0, fmt.Errorf("%w: 0 < 3", veranstalter.ErrVersionOutdated)
			}
			return 4, nil
		},
	}

	t.Run("patches provided fields", func(t *testing.T) {
		input := map[string]any{
			"id":       "1",
			"version":  float64(3),
			"name":     "Alpha Neu",
			"telefon":  nil,
			"art":      nil,
			"standort": map[string]any{"ort": "Bremen"},
		}

		res := exec(t, sys, as(auth.RoleUser), updateMutation, map[string]any{"input": input})
		require.Empty(t, res.errors)
		assert.Equal(t, float64(4), res.data["update"].(map[string]any)["version"])

		assert.Equal(t, 1, got.ID)
		assert.Equal(t, `"3"`, got.Version)

		p := got.Patch
		assert.True(t, p.Name.Set)
		assert.Equal(t, "Alpha Neu", *p.Name.Value)
		assert.True(t, p.Telefon.Set)
		assert.Nil(t, p.Telefon.Value)
		assert.True(t, p.Art.Set)
		assert.Nil(t, p.Art.Value)
		assert.False(t, p.Email.Set)
		assert.False(t, p.Homepage.Set)
		assert.False(t, p.Bewertung.Set)

		require.NotNil(t, p.Standort)
		assert.Equal(t, "Bremen", *p.Standort.Ort.Value)
		assert.Equal(t, "", *p.Standort.Plz.Value)
		assert.True(t, p.Standort.Strasse.Set)
		assert.Nil(t, p.Standort.Strasse.Value)
		assert.False(t, p.Standort.Land.Set)
	})

	t.Run("outdated version", func(t *testing.T) {
		input := map[string]any{"id": "1", "version": float64(0)}
		res := exec(t, sys, as(auth.RoleAdmin), updateMutation, map[string]any{"input": input})
		assert.Equal(t, gql.CodeVersionOutdated, code(t, res))
	})

	t.Run("malformed id", func(t *testing.T) {
		for _, id := range []string{"1.5", "-3"} {
			got = veranstalter.UpdateCommand{}
			input := map[string]any{"id": id, "version": float64(3), "name": "Alpha Neu"}

			res := exec(t, sys, as(auth.RoleAdmin), updateMutation, map[string]any{"input": input})
			assert.Equal(t, gql.CodeNotFound, code(t, res), id)
			assert.Zero(t, got.ID, id)
			assert.False(t, got.Patch.Name.Set, id)
		}
	})

	t.Run("negative version", func(t *testing.T) {
		input := map[string]any{"id": "1", "version": float64(-1)}
		res := exec(t, sys, as(auth.RoleAdmin), updateMutation, map[string]any{"input": input})
		assert.Equal(t, gql.CodeBadUserInput, code(t, res))
	})

	t.Run("invalid rating", func(t *testing.T) {
		input := map[string]any{"id": "1", "version": float64(3), "bewertung": float64(7)}
		res := exec(t, sys, as(auth.RoleAdmin), updateMutation, map[string]any{"input": input})
		assert.Equal(t, gql.CodeBadUserInput, code(t, res))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		input := map[string]any{"id": "1", "version": float64(3)}
		res := exec(t, sys, context.Background(), updateMutation, map[string]any{"input": input})
		assert.Equal(t, gql.CodeUnauthenticated, code(t, res))
	})
}

func TestDeleteMutation(t *testing.T) {
	var deleted int
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id int) error {
			deleted = id
			return nil
		},
	}

	const q = `mutation { delete(id: "30") { success } }`

	t.Run("admin", func(t *testing.T) {
		res := exec(t, sys, as(auth.RoleAdmin), q, nil)
		require.Empty(t, res.errors)
		assert.Equal(t, true, res.data["delete"].(map[string]any)["success"])
		assert.Equal(t, 30, deleted)
	})

	t.Run("user is forbidden", func(t *testing.T) {
		res := exec(t, sys, as(auth.RoleUser), q, nil)
		assert.Equal(t, gql.CodeForbidden, code(t, res))
	})
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{veranstalter.ErrNotFound, gql.CodeNotFound},
		{veranstalter.ErrInvalidSearch, gql.CodeNotFound},
		{veranstalter.ErrValidation, gql.CodeBadUserInput},
		{veranstalter.ErrVersionInvalid, gql.CodeVersionInvalid},
		{fmt.Errorf("wrapped: %w", veranstalter.ErrVersionOutdated), gql.CodeVersionOutdated},
		{auth.ErrUnauthorized, gql.CodeUnauthenticated},
		{auth.ErrForbidden, gql.CodeForbidden},
		{errors.New("boom"), gql.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, gql.Code(tt.err))
		})
	}
}
