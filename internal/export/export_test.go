package export

import (
	"context"
	"database/sql"
	"iter"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dplace2cldf/internal/cldf"
	"dplace2cldf/internal/errs"
	_ "dplace2cldf/internal/storage/all"
)

func writtenDataset(t *testing.T) *cldf.StructureDataset {
	t.Helper()
	ds := cldf.NewStructureDataset(filepath.Join(t.TempDir(), "EA"))
	require.NoError(t, ds.AddTable(
		cldf.Table{URL: "societies.csv", ConformsTo: cldf.LanguageTable, PrimaryKey: []string{"id"}},
		cldf.Column{Name: "id", PropertyURL: cldf.TermID, Required: true, Datatype: cldf.Base("string")},
		cldf.Column{Name: "alt", Datatype: cldf.Base("string"), Separator: ", "},
		cldf.Column{Name: "Lat", Datatype: cldf.Bounded("decimal", -90, 90)},
	))
	require.NoError(t, ds.AddTable(
		cldf.Table{URL: "data.csv", ConformsTo: cldf.ValueTable, PrimaryKey: []string{"id"},
			ForeignKeys: []cldf.ForeignKey{{Column: "soc_id", Resource: "societies.csv", ResourceColumn: "id"}}},
		cldf.Column{Name: "id", PropertyURL: cldf.TermID, Required: true, Datatype: cldf.Base("integer")},
		cldf.Column{Name: "soc_id", Required: true, Datatype: cldf.Base("string")},
	))
	_, err := ds.Write(map[string]iter.Seq[cldf.Row]{
		cldf.LanguageTable: slices.Values([]cldf.Row{
			{"id": "Ab1", "alt": []string{"A", "B"}, "Lat": 10.5},
			{"id": "Ab2"},
		}),
		cldf.ValueTable: slices.Values([]cldf.Row{
			{"id": 1, "soc_id": "Ab1"},
			{"id": 2, "soc_id": "Ab2"},
			{"id": 3, "soc_id": "Ab2"},
		}),
	})
	require.NoError(t, err)
	return ds
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "EA_societies", TableName("", "EA", "societies.csv"))
	assert.Equal(t, "dplace_EA_data", TableName("dplace_", "EA", "data.csv"))
	assert.Equal(t, "x_Bin_Ford_2001_codes", TableName("x_", "Bin-Ford 2001", "sub/codes.csv"))
	assert.Equal(t, "Caf__data", TableName("", "Café", "data.csv"))
}

func TestExportSQLite(t *testing.T) {
	ds := writtenDataset(t)
	dsn := filepath.Join(t.TempDir(), "out.sqlite")
	cfg := Config{Kind: "sqlite", DSN: dsn, TablePrefix: "dp_", BatchSize: 2}

	// Twice: the second run must replace, not duplicate, rows.
	for i := 0; i < 2; i++ {
		res, err := Export(context.Background(), ds, "EA", cfg)
		require.NoError(t, err)
		require.Len(t, res.Tables, 2)
		assert.Equal(t, "dp_EA_societies", res.Tables[0].Name)
		assert.Equal(t, int64(2), res.Tables[0].Rows)
		assert.Equal(t, int64(3), res.Tables[1].Rows)
		assert.Equal(t, int64(5), res.Rows())
	}

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "dp_EA_data"`).Scan(&count))
	assert.Equal(t, 3, count)

	var alt sql.NullString
	var lat sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT "alt", "Lat" FROM "dp_EA_societies" WHERE "id" = 'Ab1'`).Scan(&alt, &lat))
	assert.Equal(t, "A, B", alt.String)
	assert.InDelta(t, 10.5, lat.Float64, 1e-9)

	require.NoError(t, db.QueryRow(`SELECT "alt", "Lat" FROM "dp_EA_societies" WHERE "id" = 'Ab2'`).Scan(&alt, &lat))
	assert.False(t, alt.Valid)
	assert.False(t, lat.Valid)
}

func TestExportRejectsUnknownKind(t *testing.T) {
	ds := writtenDataset(t)

	_, err := Export(context.Background(), ds, "EA", Config{Kind: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConfig))

	_, err = Export(context.Background(), ds, "EA", Config{})
	assert.True(t, errs.IsKind(err, errs.KindConfig))
}

func TestExportStopsOnCanceledContext(t *testing.T) {
	ds := writtenDataset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Export(ctx, ds, "EA", Config{Kind: "sqlite", DSN: filepath.Join(t.TempDir(), "x.sqlite")})
	assert.ErrorIs(t, err, context.Canceled)
}
