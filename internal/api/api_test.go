package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benchboard/benchboard/internal/configs"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/iocache"
	"github.com/benchboard/benchboard/schema"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const glueConfig = `{
  "name": "GLUE",
  "metrics": [{"name": "accuracy"}],
  "datasets": [{"dataset_name": "sst2", "dataset_split": "test"}, {"dataset_name": "cola", "dataset_split": "test"}],
  "views": [{"name": "mean", "operations": [{"op": "mean"}]}]
}`

type testEnv struct {
	App   *fiber.App
	Store *iocache.SystemStoreImpl
	seq   int
}

// setupTestEnv creates a server over a temp config dir and a temp SQLite store.
func setupTestEnv(t *testing.T, configFiles map[string]string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	for name, content := range configFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	store, err := iocache.NewSystemStore(schema.SQLiteBackend, filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &contract.Config{
		Env:          "test",
		StoreBackend: schema.SQLiteBackend,
		PageSize:     contract.DefaultPageSize,
		ReadTimeout:  contract.DefaultReadTimeout,
		WriteTimeout: contract.DefaultWriteTimeout,
	}
	srv := NewServer(cfg, configs.NewFileLoader(dir, configs.WithTTL(0)), store)
	return &testEnv{App: srv.App(), Store: store}
}

// do sends a request and returns the status and body.
func (e *testEnv) do(t *testing.T, method, path string, body any, user string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// seedSystem stores a system directly in the store.
func (e *testEnv) seedSystem(t *testing.T, name, dataset string, accuracy float64, creator string, private bool, outputs int) schema.System {
	t.Helper()
	outs := make([]schema.SystemOutput, outputs)
	for i := range outs {
		outs[i] = schema.SystemOutput{Data: "label"}
	}
	e.seq++
	sys, err := e.Store.CreateSystem(context.Background(), schema.System{
		Creator:   creator,
		IsPrivate: private,
		CreatedAt: time.Date(2024, 1, 1, 0, e.seq, 0, 0, time.UTC),
		SystemInfo: schema.SystemInfo{
			SystemName:   name,
			TaskName:     "text-classification",
			DatasetName:  dataset,
			DatasetSplit: "test",
			Results:      schema.SystemResults{Overall: map[string]schema.MetricValue{"accuracy": {Value: accuracy}}},
		},
	}, outs)
	require.NoError(t, err)
	return sys
}

func createBody(metadata map[string]any, data string, fileType string) map[string]any {
	return map[string]any{
		"metadata":      metadata,
		"system_output": map[string]any{"data": data, "file_type": fileType},
	}
}

func validMetadata() map[string]any {
	return map[string]any{
		"system_name":   "bert",
		"task_name":     "text-classification",
		"dataset_name":  "sst2",
		"dataset_split": "test",
		"results":       map[string]any{"overall": map[string]any{"accuracy": map[string]any{"value": 0.9}}},
	}
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestGetInfo(t *testing.T) {
	env := setupTestEnv(t, nil)
	status, body := env.do(t, http.MethodGet, "/api/info", nil, "")
	require.Equal(t, http.StatusOK, status)

	var info schema.AppInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, schema.AppInfo{Env: "test", APIVersion: contract.APIVersion, Backend: "sqlite"}, info)
}

func TestListBenchmarkConfigs(t *testing.T) {
	env := setupTestEnv(t, map[string]string{"config_glue.json": glueConfig})
	status, body := env.do(t, http.MethodGet, "/api/benchmarkconfigs", nil, "")
	require.Equal(t, http.StatusOK, status)

	var list []schema.BenchmarkConfig
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "glue", list[0].ID)
}

func TestGetBenchmark(t *testing.T) {
	env := setupTestEnv(t, map[string]string{"config_glue.json": glueConfig})
	env.seedSystem(t, "bert", "sst2", 0.9, "alice@example.com", false, 0)
	env.seedSystem(t, "bert", "cola", 0.5, "alice@example.com", false, 0)
	env.seedSystem(t, "t5", "xquad", 0.7, "alice@example.com", false, 0)

	t.Run("all views", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, "/api/benchmark/glue", nil, "")
		require.Equal(t, http.StatusOK, status)

		var bm schema.Benchmark
		require.NoError(t, json.Unmarshal(body, &bm))
		assert.Len(t, bm.Leaderboard, 2, "only systems on listed datasets contribute")
		require.Contains(t, bm.Views, schema.OrigView)
		require.Contains(t, bm.Views, "mean")
		assert.Equal(t, []string{"bert"}, bm.Views["mean"].SystemNames)
		require.Len(t, bm.Views["mean"].Scores, 1)
		assert.InDelta(t, 0.7, bm.Views["mean"].Scores[0][0], 1e-9)
	})

	t.Run("single view", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, "/api/benchmark/glue?view=mean", nil, "")
		require.Equal(t, http.StatusOK, status)
		var bm schema.Benchmark
		require.NoError(t, json.Unmarshal(body, &bm))
		assert.Len(t, bm.Views, 1)
	})

	t.Run("unknown view", func(t *testing.T) {
		status, _ := env.do(t, http.MethodGet, "/api/benchmark/glue?view=weighted", nil, "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("unknown benchmark", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, "/api/benchmark/gleu", nil, "")
		require.Equal(t, http.StatusNotFound, status)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "glue", resp["suggestion"])
		assert.Contains(t, resp["error"], "not found")
	})
}

func TestGetBenchmarkInvalidConfig(t *testing.T) {
	broken := `{"metrics":[{"name":"f1"}],"datasets":[{"dataset_name":"a"},{"dataset_name":"a"}]}`
	env := setupTestEnv(t, map[string]string{"config_broken.json": broken, "config_glue.json": glueConfig})

	status, _ := env.do(t, http.MethodGet, "/api/benchmark/broken", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// A broken file leaves the other benchmarks available
	status, _ = env.do(t, http.MethodGet, "/api/benchmark/glue", nil, "")
	assert.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/benchmarkconfigs", nil, "")
	require.Equal(t, http.StatusOK, status)
	var list []schema.BenchmarkConfig
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "glue", list[0].ID)
}

func TestGetBenchmarkEmptyStore(t *testing.T) {
	weighted := strings.Replace(glueConfig, `"views": [`,
		`"views": [{"name": "weighted", "operations": [{"op": "multiply", "other": "metric_weight"}, {"op": "sum"}]}, `, 1)
	env := setupTestEnv(t, map[string]string{"config_glue.json": weighted})

	status, body := env.do(t, http.MethodGet, "/api/benchmark/glue", nil, "")
	require.Equal(t, http.StatusOK, status, string(body))

	var bm schema.Benchmark
	require.NoError(t, json.Unmarshal(body, &bm))
	assert.Empty(t, bm.Leaderboard)
	require.Len(t, bm.Views, 3)
	for name, table := range bm.Views {
		assert.Empty(t, table.SystemNames, "view %s", name)
		assert.Empty(t, table.Scores, "view %s", name)
	}
}

func TestCreateSystem(t *testing.T) {
	env := setupTestEnv(t, nil)

	t.Run("valid submission", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/systems", createBody(validMetadata(), b64("pos\nneg\n\nneg\n"), "text"), "alice@example.com")
		require.Equal(t, http.StatusOK, status, string(body))

		var sys schema.System
		require.NoError(t, json.Unmarshal(body, &sys))
		assert.NotEmpty(t, sys.SystemID)
		assert.Equal(t, "alice@example.com", sys.Creator)
		assert.Equal(t, "bert", sys.SystemInfo.SystemName)

		outputs, err := env.Store.GetSystemOutputs(context.Background(), sys.SystemID, nil, 0)
		require.NoError(t, err)
		require.Len(t, outputs, 3)
		assert.Equal(t, "neg", outputs[2].Data)
	})

	noSplit := validMetadata()
	delete(noSplit, "dataset_split")
	noName := validMetadata()
	delete(noName, "system_name")
	badShared := validMetadata()
	badShared["shared_users"] = []string{"not-an-email"}
	withCustom := createBody(validMetadata(), b64("x"), "text")
	withCustom["custom_dataset"] = map[string]any{"data": b64("y"), "file_type": "tsv"}

	tests := []struct {
		name       string
		body       any
		user       string
		wantStatus int
		wantError  string
	}{
		{"anonymous", createBody(validMetadata(), b64("x"), "text"), "", http.StatusUnauthorized, "login required"},
		{"malformed body", "not an object", "alice@example.com", http.StatusBadRequest, "Invalid request body"},
		{"missing split", createBody(noSplit, b64("x"), "text"), "alice@example.com", http.StatusBadRequest, "dataset split is required"},
		{"dataset and custom dataset", withCustom, "alice@example.com", http.StatusBadRequest, "please only select one"},
		{"missing system name", createBody(noName, b64("x"), "text"), "alice@example.com", http.StatusBadRequest, "invalid system"},
		{"invalid shared user", createBody(badShared, b64("x"), "text"), "alice@example.com", http.StatusBadRequest, "invalid system"},
		{"unsupported file type", createBody(validMetadata(), b64("x"), "xlsx"), "alice@example.com", http.StatusBadRequest, "invalid system"},
		{"bad base64", createBody(validMetadata(), "%%%", "text"), "alice@example.com", http.StatusBadRequest, "plain text base64"},
		{"json not an array", createBody(validMetadata(), b64(`{"a":1}`), "json"), "alice@example.com", http.StatusBadRequest, "must be an array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/systems", tt.body, tt.user)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, string(body), tt.wantError)
		})
	}
}

func TestListSystems(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seedSystem(t, "bert", "sst2", 0.9, "alice@example.com", false, 0)
	env.seedSystem(t, "roberta", "sst2", 0.95, "alice@example.com", false, 0)
	env.seedSystem(t, "secret", "cola", 0.5, "alice@example.com", true, 0)

	names := func(body []byte) ([]string, int) {
		var page schema.SystemsPage
		require.NoError(t, json.Unmarshal(body, &page))
		out := []string{}
		for _, s := range page.Systems {
			out = append(out, s.SystemInfo.SystemName)
		}
		return out, page.Total
	}

	tests := []struct {
		name  string
		path  string
		user  string
		want  []string
		total int
	}{
		{"anonymous sees public only", "/api/systems", "", []string{"roberta", "bert"}, 2},
		{"creator sees private", "/api/systems", "alice@example.com", []string{"secret", "roberta", "bert"}, 3},
		{"sort by metric", "/api/systems?sort_field=accuracy&sort_direction=asc", "", []string{"bert", "roberta"}, 2},
		{"paged", "/api/systems?page=1&page_size=1", "", []string{"bert"}, 2},
		{"dataset filter", "/api/systems?dataset=cola&split=test", "alice@example.com", []string{"secret"}, 1},
		{"name filter", "/api/systems?system_name=rob", "", []string{"roberta"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, tt.path, nil, tt.user)
			require.Equal(t, http.StatusOK, status, string(body))
			got, total := names(body)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.total, total)
		})
	}

	t.Run("invalid sort direction", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, "/api/systems?sort_direction=up", nil, "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(body), "asc or desc")
	})

	t.Run("invalid page size", func(t *testing.T) {
		status, _ := env.do(t, http.MethodGet, "/api/systems?page_size=0", nil, "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("negative page", func(t *testing.T) {
		status, _ := env.do(t, http.MethodGet, "/api/systems?page=-1", nil, "")
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestGetSystem(t *testing.T) {
	env := setupTestEnv(t, nil)
	public := env.seedSystem(t, "bert", "sst2", 0.9, "alice@example.com", false, 0)
	private := env.seedSystem(t, "secret", "sst2", 0.9, "alice@example.com", true, 0)

	status, body := env.do(t, http.MethodGet, "/api/systems/"+public.SystemID, nil, "")
	require.Equal(t, http.StatusOK, status)
	var sys schema.System
	require.NoError(t, json.Unmarshal(body, &sys))
	assert.Equal(t, public.SystemID, sys.SystemID)

	status, _ = env.do(t, http.MethodGet, "/api/systems/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/systems/"+private.SystemID, nil, "bob@example.com")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodGet, "/api/systems/"+private.SystemID, nil, "alice@example.com")
	assert.Equal(t, http.StatusOK, status)
}

func TestGetSystemOutputs(t *testing.T) {
	env := setupTestEnv(t, nil)
	sys := env.seedSystem(t, "bert", "sst2", 0.9, "alice@example.com", false, 12)
	private := env.seedSystem(t, "secret", "sst2", 0.9, "alice@example.com", true, 2)

	decode := func(body []byte) systemOutputsResponse {
		var resp systemOutputsResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		return resp
	}

	status, body := env.do(t, http.MethodGet, "/api/systems/"+sys.SystemID+"/outputs", nil, "")
	require.Equal(t, http.StatusOK, status)
	resp := decode(body)
	assert.Equal(t, contract.MaxOutputsPerRequest, resp.Total, "outputs are capped per request")
	assert.Len(t, resp.SystemOutputs, contract.MaxOutputsPerRequest)

	status, body = env.do(t, http.MethodGet, "/api/systems/"+sys.SystemID+"/outputs?output_ids=11,2", nil, "")
	require.Equal(t, http.StatusOK, status)
	resp = decode(body)
	require.Len(t, resp.SystemOutputs, 2)
	assert.Equal(t, "2", resp.SystemOutputs[0].OutputID)
	assert.Equal(t, "11", resp.SystemOutputs[1].OutputID)

	status, body = env.do(t, http.MethodGet, "/api/systems/"+private.SystemID+"/outputs", nil, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(body), "system access denied")

	status, _ = env.do(t, http.MethodGet, "/api/systems/missing/outputs", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteSystem(t *testing.T) {
	env := setupTestEnv(t, nil)
	sys := env.seedSystem(t, "bert", "sst2", 0.9, "alice@example.com", false, 1)

	status, _ := env.do(t, http.MethodDelete, "/api/systems/"+sys.SystemID, nil, "bob@example.com")
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.do(t, http.MethodDelete, "/api/systems/"+sys.SystemID, nil, "alice@example.com")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"Success"`, string(body))

	status, body = env.do(t, http.MethodDelete, "/api/systems/"+sys.SystemID, nil, "alice@example.com")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "cannot find system_id")
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.do(t, http.MethodGet, "/api/info", nil, "")
	env.do(t, http.MethodGet, "/api/systems/missing", nil, "")

	status, body := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, status)
	text := string(body)
	assert.Contains(t, text, `benchboard_http_requests_total{method="GET",route="/api/info",status="200"} 1`)
	assert.Contains(t, text, `benchboard_http_requests_total{method="GET",route="/api/systems/:id",status="404"} 1`)
	assert.True(t, strings.Contains(text, "benchboard_http_request_duration_seconds_bucket"))
}

func TestParseOutputs(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		fileType string
		want     []string
		wantErr  bool
	}{
		{"text lines", "a\r\nb\n\n  \nc", FileTypeText, []string{"a", "b", "c"}, false},
		{"default is text", "a\nb", "", []string{"a", "b"}, false},
		{"tsv", "x\t1\ny\t0\n", FileTypeTSV, []string{"x\t1", "y\t0"}, false},
		{"json array", `[{"label": "pos"}, "neg", 3]`, FileTypeJSON, []string{`{"label":"pos"}`, `"neg"`, "3"}, false},
		{"json object", `{"label": "pos"}`, FileTypeJSON, nil, true},
		{"jsonl", "{\"a\":1}\n{\"a\":2}\n", FileTypeJSONL, []string{`{"a":1}`, `{"a":2}`}, false},
		{"invalid jsonl", "{\"a\":1}\nnope\n", FileTypeJSONL, nil, true},
		{"unknown type", "a", "xlsx", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := ParseOutputs([]byte(tt.data), tt.fileType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := make([]string, len(outputs))
			for i, o := range outputs {
				got[i] = o.Data
				assert.Equal(t, strings.TrimSpace(o.OutputID), o.OutputID)
			}
			assert.Equal(t, tt.want, got)
			if len(outputs) > 0 {
				assert.Equal(t, "0", outputs[0].OutputID)
			}
		})
	}
}
