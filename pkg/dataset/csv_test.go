package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRoundTrip(t *testing.T) {
	rows := makeRows(5)
	path := filepath.Join(t.TempDir(), "encounters.csv")

	require.NoError(t, WriteCSV(path, rows))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteCSV_EmptyPath(t *testing.T) {
	assert.Error(t, WriteCSV("", makeRows(1)))
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestReadCSV_InvalidRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "encounter_id,age,gender,race,diagnosis_code,procedure_code,length_of_stay,treatment_type,insurance_type,total_charges\n" +
		"enc-1,45,Robot,White,I10,0U5B7ZZ,3,Surgery,Medicare,1000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := ReadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gender")
}
