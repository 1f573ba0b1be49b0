package market

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Segment
	}{
		{"shanghai", Shanghai},
		{"SH", Shanghai},
		{"2", Shenzhen},
		{"cyb", ChiNext},
		{" STAR ", STAR},
	}
	for _, tt := range tests {
		got, err := ParseSegment(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "0", "5", "nasdaq"} {
		_, err := ParseSegment(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseActionKindRejectsUnknown(t *testing.T) {
	t.Parallel()

	a, err := ParseActionKind("reduce")
	require.NoError(t, err)
	assert.Equal(t, Reduce, a)

	a, err = ParseActionKind("2")
	require.NoError(t, err)
	assert.Equal(t, Close, a)

	_, err = ParseActionKind("9")
	assert.Error(t, err)
	_, err = ParseActionKind("short")
	assert.Error(t, err)
}

func TestActionKindIsSell(t *testing.T) {
	t.Parallel()

	assert.False(t, Open.IsSell())
	assert.False(t, Add.IsSell())
	assert.True(t, Reduce.IsSell())
	assert.True(t, Close.IsSell())
}

func TestEnumScan(t *testing.T) {
	t.Parallel()

	var s Segment
	require.NoError(t, s.Scan(int64(3)))
	assert.Equal(t, ChiNext, s)
	assert.Error(t, s.Scan(int64(7)))

	var a ActionKind
	require.NoError(t, a.Scan([]byte("4")))
	assert.Equal(t, Reduce, a)
	assert.Error(t, a.Scan(int64(0)))

	var st Status
	require.NoError(t, st.Scan(int64(2)))
	assert.Equal(t, StatusClosed, st)
	assert.Error(t, st.Scan(3.5))
}

func TestEnumJSON(t *testing.T) {
	t.Parallel()

	type row struct {
		Segment Segment    `json:"segment"`
		Action  ActionKind `json:"action"`
		Status  Status     `json:"status"`
	}

	b, err := json.Marshal(row{Shenzhen, Add, StatusOpen})
	require.NoError(t, err)
	assert.JSONEq(t, `{"segment":"shenzhen","action":"add","status":"open"}`, string(b))

	var r row
	assert.Error(t, json.Unmarshal([]byte(`{"segment":"moon","action":"add","status":"open"}`), &r))
}
