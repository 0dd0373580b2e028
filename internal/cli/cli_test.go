package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/koustreak/myschema/internal/config"
	"github.com/koustreak/myschema/internal/database"
	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/filestore"
	"github.com/koustreak/myschema/internal/schema"
	"github.com/koustreak/myschema/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogDB answers the information_schema queries for a single table
// "users" by looking at which catalog table a query reads.
type catalogDB struct {
	schemas []any
}

func (c *catalogDB) Ping(ctx context.Context) error { return nil }
func (c *catalogDB) Close()                         {}

func (c *catalogDB) QueryRow(ctx context.Context, q string, args ...any) (database.Row, error) {
	rows, err := c.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	r := rows.(*catalogRows)
	if len(r.data) == 0 {
		return nil, errs.Wrap(errs.ErrKindNotFound, "query failed", sql.ErrNoRows)
	}
	r.pos = 1
	return r, nil
}

func (c *catalogDB) Query(ctx context.Context, q string, args ...any) (database.Rows, error) {
	c.schemas = append(c.schemas, args[0])
	null := (*string)(nil)
	noPart := (*int64)(nil)

	var data [][]any
	switch {
	case strings.Contains(q, "information_schema.TABLES"):
		data = [][]any{{ptr("InnoDB"), ptr("utf8mb4_general_ci"), "users"}}
	case strings.Contains(q, "information_schema.COLUMNS"):
		data = [][]any{
			{null, null, null, "PRI", "id", "int(11)", "auto_increment", "NO"},
			{ptr("utf8mb4"), ptr("utf8mb4_bin"), null, "", "name", "varchar(40)", "", "NO"},
		}
	case strings.Contains(q, "information_schema.STATISTICS"):
		data = [][]any{{"id", "PRIMARY", "BTREE", int64(0), 1, noPart}}
	}

	// single-object lookups filter on the last argument
	if len(args) == 3 {
		var kept [][]any
		for _, row := range data {
			for _, v := range row {
				if v == args[2] {
					kept = append(kept, row)
					break
				}
			}
		}
		data = kept
	}
	if len(args) == 2 && strings.Contains(q, "information_schema.TABLES") && args[1] != "users" {
		data = nil
	}
	return &catalogRows{data: data}, nil
}

func ptr(s string) *string { return &s }

type catalogRows struct {
	data [][]any
	pos  int
}

func (r *catalogRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *catalogRows) Scan(dest ...any) error {
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.data[r.pos-1][i]))
	}
	return nil
}

func (r *catalogRows) Close()     {}
func (r *catalogRows) Err() error { return nil }

// memStore is an in-memory filestore.Store.
type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Ping(ctx context.Context) error { return nil }
func (m *memStore) Close() error                   { return nil }

func (m *memStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*filestore.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[bucket+"/"+key] = data
	return &filestore.ObjectInfo{Key: key, Size: size, ContentType: contentType}, nil
}

func (m *memStore) ListObjects(ctx context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	var out []filestore.ObjectInfo
	for k := range m.objects {
		key := strings.TrimPrefix(k, bucket+"/")
		if key != k && strings.HasPrefix(key, opts.Prefix) {
			out = append(out, filestore.ObjectInfo{Key: key})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStore) GetObject(ctx context.Context, bucket, key string) (filestore.Object, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key")
	}
	return &memObject{Reader: bytes.NewReader(data)}, nil
}

func (m *memStore) StatObject(ctx context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	return nil, errs.New(errs.ErrKindNotFound, "not used")
}

func (m *memStore) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return "http://minio/" + bucket + "/" + key + "?ttl=" + ttl.String(), nil
}

type memObject struct{ *bytes.Reader }

func (o *memObject) Close() error                { return nil }
func (o *memObject) Info() *filestore.ObjectInfo { return &filestore.ObjectInfo{} }

type harness struct {
	db    *catalogDB
	store *memStore
	deps  *deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range []string{config.EnvDSN, config.EnvLogLevel, config.EnvExportAccessKey, config.EnvExportSecretKey} {
		t.Setenv(k, "")
	}

	h := &harness{db: &catalogDB{}, store: &memStore{objects: map[string][]byte{}}}
	h.deps = &deps{
		openDB: func(ctx context.Context, cfg *database.Config) (database.DB, error) {
			return h.db, nil
		},
		openStore: func(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
			return h.store, nil
		},
		now:    func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
		logOut: io.Discard,
	}
	return h
}

func (h *harness) run(args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd := newRootCmd(h.deps)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect_Tables(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("inspect")
	require.NoError(t, err)

	var tables []*schema.Table
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	require.Len(t, tables, 1)
	assert.Equal(t, "users", tables[0].Name)
	assert.Len(t, tables[0].Columns, 2)
	assert.Equal(t, schema.IndexPrimary, tables[0].Indexes[0].Type)
}

func TestInspect_TableNormalized(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("inspect", "--table", "users", "--normalize", "--database", "shop")
	require.NoError(t, err)

	var table schema.Table
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	assert.Equal(t, int64(20), *table.Column("id").Type.Length)
	assert.Equal(t, int64(255), *table.Column("name").Type.Length)
	assert.Equal(t, "utf8mb4_bin", table.Column("name").Type.Collate)

	for _, s := range h.db.schemas {
		assert.Equal(t, "shop", s)
	}
}

func TestInspect_ColumnAndIndex(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("inspect", "--table", "users", "--column", "name")
	require.NoError(t, err)
	var column schema.Column
	require.NoError(t, json.Unmarshal([]byte(out), &column))
	assert.Equal(t, "name", column.Name)
	assert.Equal(t, ptr(""), column.Default)

	out, err = h.run("inspect", "--table", "users", "--index", "PRIMARY")
	require.NoError(t, err)
	var index schema.Index
	require.NoError(t, json.Unmarshal([]byte(out), &index))
	assert.Equal(t, []schema.KeyPart{{Column: "id"}}, index.Keys)
}

func TestInspect_Names(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("inspect", "--names")
	require.NoError(t, err)
	assert.JSONEq(t, `["users"]`, out)
}

func TestInspect_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("inspect", "--table", "ghost")
	assert.True(t, errs.IsNotFound(err))
}

func TestInspect_FlagValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("inspect", "--column", "id")
	assert.True(t, errs.IsInvalidInput(err))

	_, err = h.run("inspect", "--table", "users", "--column", "id", "--index", "PRIMARY")
	assert.True(t, errs.IsInvalidInput(err))

	_, err = h.run("inspect", "--log-level", "loud")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestInspect_ConnectError(t *testing.T) {
	h := newHarness(t)
	h.deps.openDB = func(ctx context.Context, cfg *database.Config) (database.DB, error) {
		return nil, errs.New(errs.ErrKindConnectionFailed, "refused")
	}

	_, err := h.run("inspect")
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestExportAndSnapshots(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("export", "--database", "shop", "--presign", "1h")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "snapshots/shop/20240301T120000Z.json", lines[0])
	assert.Equal(t, "http://minio/schemas/snapshots/shop/20240301T120000Z.json?ttl=1h0m0s", lines[1])

	out, err = h.run("snapshots", "list", "--database", "shop")
	require.NoError(t, err)
	assert.Equal(t, "snapshots/shop/20240301T120000Z.json\n", out)

	out, err = h.run("snapshots", "show", "--database", "shop")
	require.NoError(t, err)
	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "shop", snap.Database)
	assert.False(t, snap.Normalized)
	require.Len(t, snap.Tables, 1)
	assert.Equal(t, "users", snap.Tables[0].Name)

	_, err = h.run("snapshots", "show", "snapshots/shop/missing.json")
	assert.True(t, errs.IsNotFound(err))
}

func TestExport_ExplicitKeyNormalized(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("export", "--key", "manual.json", "--normalize")
	require.NoError(t, err)
	assert.Equal(t, "manual.json\n", out)

	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal(h.store.objects["schemas/manual.json"], &snap))
	assert.True(t, snap.Normalized)
	assert.Equal(t, int64(20), *snap.Tables[0].Column("id").Type.Length)
}
