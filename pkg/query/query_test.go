package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/veranstalter/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "veranstalter", "v").
		Project("id", "ID").
		Project("name", "Name").
		Project("kategorien", "Kategorien")
}

func joinedProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "veranstalter", "v").
		Project("id", "ID").
		Project("name", "Name").
		Join("public", "standort", "s", "JOIN", "s.veranstalter_id = v.id").
		Project("ort", "Ort")
}

func ptr(s string) *string { return &s }

func TestProjectionMapTable(t *testing.T) {
	p := testProjection()
	assert.Equal(t, "public.veranstalter v", p.Table())
	assert.Equal(t, "v", p.Alias())
}

func TestProjectionMapColumns(t *testing.T) {
	p := testProjection()
	assert.Equal(t, "v.id, v.name, v.kategorien", p.Columns())
	assert.Equal(t, []string{"v.id", "v.name", "v.kategorien"}, p.ColumnList())
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := joinedProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"base field", "Name", "v.name"},
		{"joined field", "Ort", "s.ort"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Column(tt.viewName))
		})
	}
}

func TestProjectionMapFrom(t *testing.T) {
	assert.Equal(t, "public.veranstalter v", testProjection().From())
	assert.Equal(
		t,
		"public.veranstalter v JOIN public.standort s ON s.veranstalter_id = v.id",
		joinedProjection().From(),
	)
}

func TestBuilderBuild(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).Build()

	assert.Equal(t, "SELECT v.id, v.name, v.kategorien FROM public.veranstalter v", sql)
	assert.Empty(t, args)
}

func TestBuilderBuildCount(t *testing.T) {
	sql, args := query.NewBuilder(joinedProjection()).BuildCount()

	assert.Equal(t, "SELECT COUNT(*) FROM public.veranstalter v JOIN public.standort s ON s.veranstalter_id = v.id", sql)
	assert.Empty(t, args)
}

func TestBuilderBuildPage(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "ID"})
	sql, args := b.BuildPage(10, 5)

	assert.Equal(t, "SELECT v.id, v.name, v.kategorien FROM public.veranstalter v ORDER BY v.id ASC LIMIT 5 OFFSET 10", sql)
	assert.Empty(t, args)
}

func TestBuilderBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(joinedProjection()).BuildSingle("ID", 42)

	assert.Equal(t, "SELECT v.id, v.name, s.ort FROM public.veranstalter v JOIN public.standort s ON s.veranstalter_id = v.id WHERE v.id = $1", sql)
	assert.Equal(t, []any{42}, args)
}

func TestBuilderWhereEquals(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		sql, args := query.NewBuilder(testProjection()).WhereEquals("Name", "ACME").Build()

		assert.Equal(t, "SELECT v.id, v.name, v.kategorien FROM public.veranstalter v WHERE v.name = $1", sql)
		assert.Equal(t, []any{"ACME"}, args)
	})

	t.Run("nil skipped", func(t *testing.T) {
		var name *string
		_, args := query.NewBuilder(testProjection()).WhereEquals("Name", name).Build()
		assert.Empty(t, args)
	})
}

func TestBuilderWhereContains(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		sql, args := query.NewBuilder(testProjection()).WhereContains("Name", ptr("acme")).Build()

		assert.Equal(t, "SELECT v.id, v.name, v.kategorien FROM public.veranstalter v WHERE v.name ILIKE $1 ESCAPE '\\'", sql)
		assert.Equal(t, []any{"%acme%"}, args)
	})

	t.Run("metacharacters match literally", func(t *testing.T) {
		_, args := query.NewBuilder(testProjection()).WhereContains("Name", ptr(`a_c%\`)).Build()
		assert.Equal(t, []any{`%a\_c\%\\%`}, args)
	})

	t.Run("nil skipped", func(t *testing.T) {
		_, args := query.NewBuilder(testProjection()).WhereContains("Name", nil).Build()
		assert.Empty(t, args)
	})

	t.Run("empty skipped", func(t *testing.T) {
		_, args := query.NewBuilder(testProjection()).WhereContains("Name", ptr("")).Build()
		assert.Empty(t, args)
	})
}

func TestBuilderWhereAnyOf(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).WhereAnyOf("Kategorien", "MESSE").Build()

	assert.Equal(t, "SELECT v.id, v.name, v.kategorien FROM public.veranstalter v WHERE $1 = ANY(v.kategorien)", sql)
	assert.Equal(t, []any{"MESSE"}, args)
}

func TestBuilderMultipleConditions(t *testing.T) {
	b := query.NewBuilder(joinedProjection(), query.SortField{Field: "ID"}).
		WhereContains("Name", ptr("acme")).
		WhereEquals("ID", 7).
		WhereContains("Ort", ptr("karls"))
	sql, args := b.BuildPage(0, 5)

	assert.Equal(
		t,
		"SELECT v.id, v.name, s.ort FROM public.veranstalter v JOIN public.standort s ON s.veranstalter_id = v.id "+
			"WHERE v.name ILIKE $1 ESCAPE '\\' AND v.id = $2 AND s.ort ILIKE $3 ESCAPE '\\' ORDER BY v.id ASC LIMIT 5 OFFSET 0",
		sql,
	)
	assert.Equal(t, []any{"%acme%", 7, "%karls%"}, args)
}

func TestBuilderBuildCountWithConditions(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).WhereEquals("Name", "ACME").BuildCount()

	assert.Equal(t, "SELECT COUNT(*) FROM public.veranstalter v WHERE v.name = $1", sql)
	assert.Equal(t, []any{"ACME"}, args)
}

func TestBuilderDescendingSort(t *testing.T) {
	sql, _ := query.NewBuilder(testProjection(), query.SortField{Field: "Name", Descending: true}).Build()

	assert.Equal(t, "SELECT v.id, v.name, v.kategorien FROM public.veranstalter v ORDER BY v.name DESC", sql)
}
