package metaxml

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaws/metaws/internal/files/filesystem"
	"github.com/metaws/metaws/internal/files/scanner"
	"github.com/metaws/metaws/internal/files/textio"
	"github.com/metaws/metaws/pkg/metaws"
)

const vehiclesMeta = `<?xml version="1.0" encoding="UTF-8"?>
<!-- generated -->
<CVehicleModelInfo__InitDataList>
  <residentTxd>vehshare</residentTxd>
  <InitDatas>
    <Item>
      <modelName>sultan</modelName>
      <lodDistances content="float_array">15.0 30.0 60.0</lodDistances>
      <flags />
    </Item>
  </InitDatas>
</CVehicleModelInfo__InitDataList>
`

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, metaws.ErrInvalidXML))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	return verr
}

func TestValidate_WellFormed(t *testing.T) {
	assert.NoError(t, Validate(vehiclesMeta, "vehicles.meta"))
	assert.NoError(t, Validate("<root/>", "a.xml"))
	assert.NoError(t, Validate("\uFEFF<root>a &amp; b</root>\n", "bom.xml"))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantLine    int
		wantMessage string
		wantHint    string
	}{
		{
			name:        "empty document",
			content:     "  \n",
			wantLine:    1,
			wantMessage: "document has no root element",
		},
		{
			name:        "mismatched closing tag",
			content:     "<InitDatas>\n  <Item>\n  </Items>\n</InitDatas>\n",
			wantLine:    3,
			wantMessage: "element <Item> closed by </Items>",
			wantHint:    "Closing tags must match",
		},
		{
			name:        "unclosed tag",
			content:     "<InitDatas>\n  <Item>\n  </Item>\n",
			wantLine:    1,
			wantMessage: "unclosed tag <InitDatas>",
			wantHint:    "</InitDatas>",
		},
		{
			name:        "unescaped ampersand",
			content:     "<root>\n  <name>Fast & Furious</name>\n</root>\n",
			wantLine:    2,
			wantMessage: "entity",
			wantHint:    "&amp;",
		},
		{
			name:        "multiple roots",
			content:     "<a/>\n<b/>\n",
			wantLine:    2,
			wantMessage: "multiple root elements",
		},
		{
			name:        "stray text",
			content:     "<a/>\ntrailing words\n",
			wantMessage: "stray text outside of any XML element",
		},
		{
			name:        "unquoted attribute",
			content:     "<root>\n  <value value=1.0 />\n</root>\n",
			wantLine:    2,
			wantMessage: "attribute value",
			wantHint:    "Quote every attribute value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := requireValidationError(t, Validate(tt.content, "/ws/test.meta"))
			assert.Equal(t, "/ws/test.meta", verr.FilePath)
			assert.Contains(t, verr.Message, tt.wantMessage)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, verr.Line)
			}
			if tt.wantHint != "" {
				assert.Contains(t, verr.Hint, tt.wantHint)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "line and column",
			err:  &ValidationError{FilePath: "a.meta", Line: 3, Column: 7, Message: "boom", Hint: "fix it"},
			want: "xml error in a.meta (line 3, col 7): boom\n\nHint: fix it",
		},
		{
			name: "line only",
			err:  &ValidationError{FilePath: "a.meta", Line: 3, Message: "boom"},
			want: "xml error in a.meta (line 3): boom",
		},
		{
			name: "no location",
			err:  &ValidationError{FilePath: "a.meta", Message: "boom"},
			want: "xml error in a.meta: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestValidateWorkspace(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/ws")
	mfs.AddFile("/ws/vehicles.meta", vehiclesMeta)
	mfs.AddFile("/ws/broken/handling.meta", "<CHandlingDataMgr>\n<HandlingData>\n</CHandlingDataMgr>\n")
	mfs.AddFile("/ws/notes.txt", "not xml at all")

	reports, err := ValidateWorkspace(scanner.NewScannerWithFS(mfs), textio.NewStoreWithFS(mfs), "/ws")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "/ws/broken/handling.meta", reports[0].Path)
	assert.False(t, reports[0].Valid())
	assert.Equal(t, 3, reports[0].Err.Line)

	assert.Equal(t, "/ws/vehicles.meta", reports[1].Path)
	assert.True(t, reports[1].Valid())

	assert.Equal(t, 1, CountInvalid(reports))
}

func TestValidateWorkspace_Aborts(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/ws")
	mfs.AddFile("/ws/binary.meta", string([]byte{0xff, 0xfe}))

	st := textio.NewStoreWithFS(mfs)
	sc := scanner.NewScannerWithFS(mfs)

	_, err := ValidateWorkspace(sc, st, "/missing")
	assert.True(t, errors.Is(err, metaws.ErrPathNotFound))

	_, err = ValidateWorkspace(sc, st, "/ws")
	assert.True(t, errors.Is(err, metaws.ErrReadFailed))
}

func TestFileReport_MarshalJSON(t *testing.T) {
	reports := []FileReport{
		{Path: "/ws/a.meta"},
		{Path: "/ws/b.xml", Err: &ValidationError{FilePath: "/ws/b.xml", Line: 2, Message: "unclosed tag <a>", Hint: "Add </a>"}},
	}

	data, err := json.Marshal(reports)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"path":"/ws/a.meta","valid":true},
		{"path":"/ws/b.xml","valid":false,"issue":{"line":2,"message":"unclosed tag <a>","hint":"Add </a>"}}
	]`, string(data))
	assert.False(t, strings.Contains(string(data), "FilePath"))
}
