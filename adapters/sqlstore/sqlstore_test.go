package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxplot/domain/chart"
	"boxplot/domain/core"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleChart() *chart.Chart {
	return &chart.Chart{
		Name:        "Sales by region",
		Description: "Quarterly *sales*",
		SourceKind:  chart.SourceSQL,
		Source:      "sales",
		FormData: chart.FormData{
			Groupby: []string{"region"},
			Metrics: []chart.MetricSpec{{Name: "amount"}, {Label: "Avg", Column: "amount", Aggregate: "AVG"}},
		},
	}
}

func TestChartRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewChartRepository(openTestDB(t))

	c := sampleChart()
	require.NoError(t, repo.Create(ctx, c))
	assert.False(t, c.ID.IsEmpty())
	assert.Equal(t, chart.VizTypeBoxPlot, c.VizType)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, c.FormData, got.FormData)
	assert.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Millisecond)

	got.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, core.ErrChartNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), core.ErrNotFound)
}

func TestChartRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewChartRepository(openTestDB(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		c := sampleChart()
		c.Name = name
		c.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(ctx, c))
	}

	charts, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, charts, 2)
	assert.Equal(t, "third", charts[0].Name)
	assert.Equal(t, "second", charts[1].Name)

	charts, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, "first", charts[0].Name)
}

func TestQuerySourceFetchRecords(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	db.MustExec(`CREATE TABLE sales (region TEXT, amount REAL, note TEXT)`)
	db.MustExec(`INSERT INTO sales VALUES ('west', 1.5, 'a'), ('east', 2, NULL), (NULL, 3, 'c')`)

	src := NewQuerySource(db, 0)
	records, err := src.FetchRecords(ctx, "sales", []string{"region", "amount"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "west", records[0]["region"])
	assert.Equal(t, 1.5, records[0]["amount"])
	assert.Nil(t, records[2]["region"])
	assert.NotContains(t, records[0], "note")

	limited, err := NewQuerySource(db, 2).FetchRecords(ctx, "sales", nil)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Contains(t, limited[0], "note")
}

func TestQuerySourceRejectsUnsafeNames(t *testing.T) {
	src := NewQuerySource(openTestDB(t), 0)
	ctx := context.Background()

	_, err := src.FetchRecords(ctx, "sales; DROP TABLE charts", nil)
	assert.ErrorIs(t, err, core.ErrInvalidPayload)

	_, err = src.FetchRecords(ctx, "sales", []string{`region" --`})
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestSelectStatement(t *testing.T) {
	src := &QuerySource{limit: 100}
	q, err := src.selectStatement("public.sales", []string{"region", "amount"})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "region", "amount" FROM "public"."sales" LIMIT 100`, q)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	assert.Error(t, err)
}
