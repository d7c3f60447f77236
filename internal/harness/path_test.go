package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
	}{
		{"", Path{}},
		{"$", Path{}},
		{"id", Path{Field("id")}},
		{"$.id", Path{Field("id")}},
		{"records[0].id", Path{Field("records"), Index(0), Field("id")}},
		{"records[*].id", Path{Field("records"), Every(), Field("id")}},
		{"records[].id", Path{Field("records"), Every(), Field("id")}},
		{"records.*.id", Path{Field("records"), Every(), Field("id")}},
		{"[2]", Path{Index(2)}},
		{"a[1][2]", Path{Field("a"), Index(1), Index(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, in := range []string{"records[0", "records[-1]", "records[x]", "records.", "a..b", "records[0]id", ".id", "records]", "a]b", "]", "records[0]]", "records[0].id]"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePath(in)
			assert.Error(t, err)
		})
	}
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "$", Path{}.String())
	assert.Equal(t, "records[*].id", Path{Field("records"), Every(), Field("id")}.String())
	assert.Equal(t, "records[0].name", MustPath("$.records[0].name").String())
}

func TestMustPathPanics(t *testing.T) {
	assert.Panics(t, func() { MustPath("records[") })
}

func TestPathEval(t *testing.T) {
	root := mustValue(t, `{"records":[{"id":"2","name":"a"},{"id":"3","name":null}],"n":1}`)

	tests := []struct {
		name     string
		path     string
		pred     Predicate
		wantLoc  string
		wantFail bool
	}{
		{name: "root", path: "$", pred: Exists()},
		{name: "field", path: "n", pred: Equal(1)},
		{name: "index", path: "records[1].id", pred: Equal("3")},
		{name: "every passes", path: "records[*].id", pred: NotNull()},
		{name: "every reports element", path: "records[*].name", pred: NotNull(), wantFail: true, wantLoc: "records[1].name"},
		{name: "index out of range", path: "records[5].id", pred: NotNull(), wantFail: true, wantLoc: "records[5].id"},
		{name: "missing field", path: "nope", pred: Exists(), wantFail: true, wantLoc: "nope"},
		{name: "field on array", path: "records.id", pred: Exists(), wantFail: true, wantLoc: "records.id"},
		{name: "index on object", path: "n[0]", pred: Exists(), wantFail: true, wantLoc: "n[0]"},
		{name: "every on missing", path: "nope[*]", pred: Exists(), wantFail: true, wantLoc: "nope[*]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := MustPath(tt.path).Eval(root, tt.pred)
			if !tt.wantFail {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, CheckField, f.Check)
			assert.Equal(t, tt.wantLoc, f.Location)
		})
	}
}

func TestPathEvalEveryOnEmptyArray(t *testing.T) {
	root := mustValue(t, `{"records":[]}`)
	assert.Nil(t, MustPath("records[*].id").Eval(root, NotNull()))
}

func TestPathEvalFailureDetail(t *testing.T) {
	root := mustValue(t, `{"records":[{"id":"29"}]}`)
	f := MustPath("records[0].id").Eval(root, NumericEqual(30))
	require.NotNil(t, f)
	assert.Equal(t, "== 30 (numeric)", f.Expected)
	assert.Equal(t, `"29"`, f.Actual)

	f = MustPath("records.id").Eval(root, Exists())
	require.NotNil(t, f)
	assert.Equal(t, "object", f.Expected)
	assert.Equal(t, "array", f.Actual)
}

func mustValue(t *testing.T, s string) Value {
	t.Helper()
	v, err := ParseValue([]byte(s))
	require.NoError(t, err)
	return v
}
