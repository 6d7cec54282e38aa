package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender_QuotesOnlyWhenNeeded(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Columns: []Column{{Key: "id"}, {Key: "username"}, {Key: "courseTitle"}},
		Rows: []map[string]string{
			{"id": "1", "username": "Jane, Doe", "courseTitle": `Intro "Basics"`},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(payload), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,username,courseTitle", lines[0])
	assert.Equal(t, `1,"Jane, Doe","Intro ""Basics"""`, lines[1])
}

func TestCSVExporterRender_RoundTrip(t *testing.T) {
	exporter := NewCSVExporter()
	rows := []map[string]string{
		{"id": "1", "username": "a,b", "courseTitle": "line\nbreak"},
		{"id": "2", "username": `say "hi"`, "courseTitle": ""},
		{"id": "3", "username": "plain", "courseTitle": "also plain"},
	}
	payload, err := exporter.Render(Dataset{
		Columns: []Column{{Key: "id"}, {Key: "username"}, {Key: "courseTitle"}},
		Rows:    rows,
	})
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(payload))
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)
	for i, row := range rows {
		assert.Equal(t, row["id"], records[i+1][0])
		assert.Equal(t, row["username"], records[i+1][1])
		assert.Equal(t, row["courseTitle"], records[i+1][2])
	}
}

func TestCSVExporterRender_UsesCRLF(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Columns: []Column{{Key: "id"}},
		Rows:    []map[string]string{{"id": "1"}, {"id": "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(payload), "\r\n"))
}

func TestCSVExporterRender_RefusesEmptyRowSet(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{Columns: []Column{{Key: "id"}}})
	assert.Error(t, err)
}

func TestCSVExporterRender_MissingValuesRenderEmpty(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Columns: []Column{{Key: "id"}, {Key: "completedAt"}},
		Rows:    []map[string]string{{"id": "1"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), "1,\r\n")
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Intro \"Basics\"":      "intro-basics",
		"  Advanced --- Go!  ":  "advanced-go",
		"ALL CAPS":              "all-caps",
		"---":                   "",
		"Übung: Straße & Co":    "bung-stra-e-co",
		strings.Repeat("a", 80): strings.Repeat("a", 60),
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "report-intro-basics.csv", Filename("report", "Intro \"Basics\"", "csv"))
	assert.Equal(t, "report-export.pdf", Filename("report", "???", "pdf"))
}
