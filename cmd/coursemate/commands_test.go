package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coursemate/internal/orderedjson"
	"github.com/jonathan/coursemate/internal/prereq"
	"github.com/jonathan/coursemate/internal/types"
)

// graphOutput is the part of the graph command's JSON the tests inspect.
type graphOutput struct {
	SubmissionID string                   `json:"submission_id"`
	Program      string                   `json:"program"`
	Nodes        []types.GraphNode        `json:"nodes"`
	Edges        []types.PrerequisiteEdge `json:"edges"`
}

// writeTinyCatalog creates a one-program catalog plus a prerequisite fixture
// and a YAML config pointing at both. It returns the config path.
func writeTinyCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"catalog/programs.json": `[{"name": "Tiny", "file": "tiny.json"}]`,
		"catalog/tiny.json":     `{"Major": {"Core": {"list": ["CMPUT 204"], "units": 3}}}`,
		"prereqs.json":          `{"CMPUT 204": {"and": ["CMPUT 201"]}}`,
		"config.yaml": "catalog_dir: " + filepath.Join(dir, "catalog") + "\n" +
			"prereq_fixture: " + filepath.Join(dir, "prereqs.json") + "\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return filepath.Join(dir, "config.yaml")
}

func TestProgramsCommand(t *testing.T) {
	out, err := execute(t, "programs")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"Bachelor of Science General",
		"Bachelor of Science Honors",
		"Bachelor of Science Specialization",
	}, lines)
}

func TestProgramsCommand_ConfigCatalog(t *testing.T) {
	out, err := execute(t, "programs", "--config", writeTinyCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, "Tiny\n", out)
}

func TestResolveCommand_JSON(t *testing.T) {
	out, err := execute(t, "resolve",
		"--program", "Bachelor of Science General",
		"--courses", "cmput 174, CMPUT 175",
		"--json")
	require.NoError(t, err)

	var got struct {
		Completed   []types.CourseCode `json:"completed"`
		Outstanding json.RawMessage    `json:"outstanding"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []types.CourseCode{"CMPUT 174", "CMPUT 175"}, got.Completed)

	members, err := orderedjson.Members(got.Outstanding)
	require.NoError(t, err)
	require.NotEmpty(t, members)
	assert.Equal(t, "Discrete Mathematics: 3 units", members[0].Key)
	for _, m := range members {
		assert.NotContains(t, m.Key, "Introductory Computing Science")
	}
}

func TestResolveCommand_Boxes(t *testing.T) {
	out, err := execute(t, "resolve", "-p", "Bachelor of Science General", "-c", "CMPUT 174")
	require.NoError(t, err)

	assert.Contains(t, out, "SUBMISSION")
	assert.Contains(t, out, "OUTSTANDING REQUIREMENTS")
	assert.Contains(t, out, "Introductory Computing Science: 3 units")
	assert.Contains(t, out, "• CMPUT 175")
}

func TestResolveCommand_Errors(t *testing.T) {
	_, err := execute(t, "resolve", "--courses", "CMPUT 174")
	assert.ErrorContains(t, err, "--program is required")

	_, err = execute(t, "resolve", "--program", "Bachelor of Arts")
	assert.ErrorContains(t, err, "unknown program")
}

func TestGraphCommand_StaticSource(t *testing.T) {
	out, err := execute(t, "graph", "--config", writeTinyCatalog(t), "--program", "Tiny", "--courses", "cmput 201")
	require.NoError(t, err)

	var got graphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, []types.GraphNode{
		{Key: "CMPUT 204", Status: types.StatusNotCompleted},
		{Key: "CMPUT 201", Status: types.StatusNotCompleted},
		{Key: "CMPUT 201", Status: types.StatusCompleted},
	}, got.Nodes)
	assert.Equal(t, []types.PrerequisiteEdge{{Key: 0, From: "CMPUT 201", To: "CMPUT 204"}}, got.Edges)
	assert.NotEmpty(t, got.SubmissionID)
}

func TestGraphCommand_Dedupe(t *testing.T) {
	out, err := execute(t, "graph", "--config", writeTinyCatalog(t), "-p", "Tiny", "-c", "CMPUT 201", "--dedupe")
	require.NoError(t, err)

	var got graphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []types.GraphNode{
		{Key: "CMPUT 204", Status: types.StatusNotCompleted},
		{Key: "CMPUT 201", Status: types.StatusCompleted},
	}, got.Nodes)
}

func TestGraphCommand_API(t *testing.T) {
	var paths []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/CMPUT 204" {
			_, _ = w.Write([]byte(`{"courses": {"and": ["CMPUT 201"], "one of": ["MATH 125"]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"courses": []}`))
	}))
	defer api.Close()

	out, err := execute(t, "graph", "--config", writeTinyCatalog(t), "-p", "Tiny", "--api", api.URL)
	require.NoError(t, err)

	var got graphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"/api/CMPUT 204"}, paths)
	require.Len(t, got.Edges, 2)
	assert.Equal(t, types.CourseCode("MATH 125"), got.Edges[1].From)
}

func TestGraphCommand_OutFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "graph.json")

	out, err := execute(t, "graph", "--config", writeTinyCatalog(t), "-p", "Tiny", "-c", "CMPUT 201", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 nodes and 1 edges")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var got graphOutput
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Tiny", got.Program)
}

func TestGraphCommand_UnknownProgram(t *testing.T) {
	_, err := execute(t, "graph", "--config", writeTinyCatalog(t), "-p", "Huge")
	assert.ErrorContains(t, err, "unknown program")
}

func TestValidateCatalogCommand(t *testing.T) {
	configPath := writeTinyCatalog(t)
	catalogDir := filepath.Join(filepath.Dir(configPath), "catalog")

	out, err := execute(t, "validate-catalog", "--dir", catalogDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed: 1 programs")
	assert.Contains(t, out, "Tiny (1 categories)")
}

func TestValidateCatalogCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "programs.json"), []byte(`[{"name": ""}]`), 0644))

	out, err := execute(t, "validate-catalog", "--dir", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "Validation failed")
}

func TestImportPrereqsCommand_UnknownTarget(t *testing.T) {
	_, err := execute(t, "import-prereqs", "--target", "sqlite")
	assert.ErrorContains(t, err, "unknown target")
}

func TestImportFixture(t *testing.T) {
	fixture, err := prereq.ParseFixture([]byte(`{
		"CMPUT 175": {"and": ["CMPUT 174"]},
		"CMPUT 204": {"and": ["CMPUT 201"], "one of": ["MATH 125", "MATH 127"]}
	}`))
	require.NoError(t, err)

	written := map[types.CourseCode]types.PrerequisiteGroups{}
	var order []types.CourseCode
	n, err := importFixture(context.Background(), fixture, func(_ context.Context, course types.CourseCode, groups types.PrerequisiteGroups) error {
		written[course] = groups
		order = append(order, course)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []types.CourseCode{"CMPUT 175", "CMPUT 204"}, order)
	assert.Len(t, written["CMPUT 204"], 2)
}

func TestImportFixture_WriteError(t *testing.T) {
	fixture, err := prereq.ParseFixture([]byte(`{"CMPUT 175": {"and": ["CMPUT 174"]}, "CMPUT 201": {"and": ["CMPUT 175"]}}`))
	require.NoError(t, err)

	calls := 0
	n, err := importFixture(context.Background(), fixture, func(context.Context, types.CourseCode, types.PrerequisiteGroups) error {
		calls++
		if calls == 2 {
			return errors.New("connection reset")
		}
		return nil
	})

	assert.ErrorContains(t, err, "failed to import CMPUT 201")
	assert.Equal(t, 1, n)
}
