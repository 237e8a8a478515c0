package dplace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dplace2cldf/internal/errs"
)

const societiesCSV = "\uFEFFid,xd_id,pref_name_for_society,glottocode,ORIG_name_and_ID_in_this_dataset,alt_names_by_society,main_focal_year,HRAF_name_ID,HRAF_link,origLat,origLong,Lat,Long,Comment,extra\n" +
	"soc1,xd1,Ainu,ainu1240,Ainu (Ea1),\"Aino, Ainu Hokkaido\",1880,Ainu (FX8),http://ehrafworldcultures.yale.edu/collection?owc=FX8,43.5,143,43.5,143,,ignored\n" +
	"soc2,xd2,Cafe\u0301,abcd1234,Cafe (Ea2),,NA,,,-10.25,-190,-10.25,170,note,\n"

func writeDataset(t *testing.T, root, id string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, "datasets", id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestFieldsOf(t *testing.T) {
	fields := FieldsOf[Society]()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{
		"id", "xd_id", "pref_name_for_society", "glottocode", "ORIG_name_and_ID_in_this_dataset",
		"alt_names_by_society", "main_focal_year", "HRAF_name_ID", "HRAF_link",
		"origLat", "origLong", "Lat", "Long", "Comment",
	}, names)
	assert.Equal(t, KindString, fields[0].Kind)
	assert.Equal(t, KindFloat, fields[9].Kind)

	vars := FieldsOf[Variable]()
	last := vars[len(vars)-1]
	assert.Equal(t, "codes", last.Name)
	assert.Equal(t, KindNested, last.Kind)

	s := Society{ID: "soc1", Lat: 12.5}
	assert.Equal(t, "soc1", fields[0].Value(s))
	assert.Equal(t, 12.5, fields[11].Value(&s))
}

func TestRepositoryLoadsDataset(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root, "EA", map[string]string{
		SocietiesFile: societiesCSV,
		VariablesFile: "category,id,title,definition,type,source,changes,notes\n" +
			"\"Economy, Subsistence\",EA001,Gathering,Dependence on gathering,Ordinal,Murdock 1967,,\n" +
			"Kinship,EA002,Marriage,Mode of marriage,Categorical,Murdock 1967,,\n",
		CodesFile: "var_id,code,description,name\n" +
			"EA001,0,0 - 5% dependence,0-5%\n" +
			"EA002,1,Bride-price,Bride-price\n" +
			"EA001,1,6 - 15% dependence,6-15%\n",
		DataFile: "soc_id,sub_case,year,var_id,code,comment,references,source_coded_data,admin_comment\n" +
			"soc1,,1880,EA001,1,,Murdock1967; Ember2001,,\n",
	})

	repo, err := Open(root)
	require.NoError(t, err)

	var got []*Dataset
	for ds, err := range repo.Datasets() {
		require.NoError(t, err)
		got = append(got, ds)
	}
	require.Len(t, got, 1)
	ds := got[0]

	assert.Equal(t, "EA", ds.ID())
	require.Len(t, ds.Societies(), 2)
	assert.Equal(t, "Aino, Ainu Hokkaido", ds.Societies()[0].AltNames)
	assert.Equal(t, 143.0, ds.Societies()[0].Long)
	assert.Equal(t, -190.0, ds.Societies()[1].OrigLong)
	assert.Equal(t, "Caf\u00e9", ds.Societies()[1].PrefName, "cells are NFC-normalised")

	assert.Empty(t, ds.SocietyRelations(), "missing societies_mapping.csv means no relations")

	require.Len(t, ds.Variables(), 2)
	require.Len(t, ds.Variables()[0].Codes, 2)
	assert.Equal(t, "1", ds.Variables()[0].Codes[1].Code)
	assert.Len(t, ds.Codes(), 3)

	require.Len(t, ds.Data(), 1)
	assert.Equal(t, "Murdock1967; Ember2001", ds.Data()[0].References)
}

func TestRepositoryDatasetOrder(t *testing.T) {
	root := t.TempDir()
	for _, id := range []string{"WNAI", "EA", "Binford"} {
		writeDataset(t, root, id, map[string]string{})
	}
	repo, err := Open(root)
	require.NoError(t, err)

	ids, err := repo.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"Binford", "EA", "WNAI"}, ids)
}

func TestFloatCellsIgnoreSurroundingBlanks(t *testing.T) {
	root := t.TempDir()
	padded := strings.Replace(societiesCSV, ",43.5,143,43.5,143,", ", 43.5,143 ,\t43.5, 143 ,", 1)
	writeDataset(t, root, "EA", map[string]string{SocietiesFile: padded})
	repo, err := Open(root)
	require.NoError(t, err)

	ds, err := repo.Dataset("EA")
	require.NoError(t, err)
	soc := ds.Societies()[0]
	assert.Equal(t, 43.5, soc.OrigLat)
	assert.Equal(t, 143.0, soc.OrigLong)
	assert.Equal(t, 43.5, soc.Lat)
	assert.Equal(t, 143.0, soc.Long)
}

func TestRepositoryErrors(t *testing.T) {
	t.Run("no datasets directory", func(t *testing.T) {
		_, err := Open(t.TempDir())
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindIO))
	})

	t.Run("missing column", func(t *testing.T) {
		root := t.TempDir()
		writeDataset(t, root, "EA", map[string]string{
			DataFile: "soc_id,var_id,code\nsoc1,EA001,1\n",
		})
		repo, err := Open(root)
		require.NoError(t, err)
		_, err = repo.Dataset("EA")
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindDataShape))
		assert.Contains(t, err.Error(), "sub_case")
		assert.Contains(t, err.Error(), "data.csv")
	})

	t.Run("bad float", func(t *testing.T) {
		root := t.TempDir()
		bad := strings.Replace(societiesCSV, ",43.5,143,", ",north,143,", 1)
		writeDataset(t, root, "EA", map[string]string{SocietiesFile: bad})
		repo, err := Open(root)
		require.NoError(t, err)
		_, err = repo.Dataset("EA")
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindDataShape))
		assert.Contains(t, err.Error(), "origLat")
	})

	t.Run("code for unknown variable", func(t *testing.T) {
		root := t.TempDir()
		writeDataset(t, root, "EA", map[string]string{
			CodesFile: "var_id,code,description,name\nEA999,1,x,y\n",
		})
		repo, err := Open(root)
		require.NoError(t, err)
		_, err = repo.Dataset("EA")
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindDataShape))
	})

	t.Run("iteration stops at unreadable dataset", func(t *testing.T) {
		root := t.TempDir()
		writeDataset(t, root, "AA", map[string]string{DataFile: "soc_id\nsoc1\n"})
		writeDataset(t, root, "EA", nil)
		repo, err := Open(root)
		require.NoError(t, err)

		var loaded []string
		var iterErr error
		for ds, err := range repo.Datasets() {
			if err != nil {
				iterErr = err
				continue
			}
			loaded = append(loaded, ds.ID())
		}
		require.Error(t, iterErr)
		assert.True(t, errs.IsKind(iterErr, errs.KindDataShape))
		assert.True(t, strings.HasPrefix(iterErr.Error(), "dataset AA: "))
		assert.Empty(t, loaded)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		root := t.TempDir()
		writeDataset(t, root, "EA", nil)
		repo, err := Open(root)
		require.NoError(t, err)
		_, err = repo.Dataset("nope")
		assert.Error(t, err)
	})
}
