package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func zipBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func docxBytes(t *testing.T, documentXML string) []byte {
	t.Helper()
	return zipBytes(t, map[string][]byte{
		"[Content_Types].xml": []byte(`<?xml version="1.0"?><Types/>`),
		"word/document.xml":   []byte(documentXML),
	})
}

func TestExtract_PlainTextFallback(t *testing.T) {
	e := NewExtractor()

	text, ok := e.Extract([]byte("hello world"), "notes.txt")
	assert.True(t, ok)
	assert.Equal(t, "hello world", text)
}

func TestExtract_UnknownSuffixPermissiveDecode(t *testing.T) {
	e := NewExtractor()

	// invalid UTF-8 byte and NUL must be dropped, not fail
	text, ok := e.Extract([]byte("he\xffllo\x00!"), "blob.bin")
	assert.True(t, ok)
	assert.Equal(t, "hello!", text)
}

func TestExtract_DOCX(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	e := NewExtractor()

	text, ok := e.Extract(docxBytes(t, doc), "Report.DOCX")
	require.True(t, ok)
	assert.Contains(t, text, "First paragraph.\n")
	assert.Contains(t, text, "Second paragraph.\n")
}

func TestExtract_DOCXMissingDocumentPart(t *testing.T) {
	e := NewExtractor()

	text, ok := e.Extract(zipBytes(t, map[string][]byte{"other.xml": []byte("<x/>")}), "broken.docx")
	assert.False(t, ok)
	assert.Contains(t, text, "error extracting broken.docx")
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "amount"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "widget"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 42))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	e := NewExtractor()
	text, ok := e.Extract(buf.Bytes(), "ledger.xlsx")
	require.True(t, ok)
	assert.Contains(t, text, "Sheet: Sheet1")
	assert.Contains(t, text, "Row 1: name: widget | amount: 42")
}

func TestExtract_ZipArchive(t *testing.T) {
	archive := zipBytes(t, map[string][]byte{
		"a.txt": []byte("alpha"),
		"b.txt": []byte("beta"),
	})
	e := NewExtractor()

	text, ok := e.Extract(archive, "bundle.zip")
	require.True(t, ok)
	assert.Contains(t, text, "alpha")
	assert.Contains(t, text, "beta")
}

func TestExtract_ZipInnerFailureIsBestEffort(t *testing.T) {
	archive := zipBytes(t, map[string][]byte{
		"good.txt": []byte("kept content"),
		"bad.pdf":  []byte("this is not a pdf"),
	})
	e := NewExtractor()

	text, ok := e.Extract(archive, "mixed.zip")
	require.True(t, ok, "inner entry failure must not fail the enclosing archive")
	assert.Contains(t, text, "kept content")
	assert.NotContains(t, text, "error extracting")
}

func TestExtract_NestedZip(t *testing.T) {
	inner := zipBytes(t, map[string][]byte{"deep.txt": []byte("buried treasure")})
	outer := zipBytes(t, map[string][]byte{"inner.zip": inner})
	e := NewExtractor()

	text, ok := e.Extract(outer, "outer.zip")
	require.True(t, ok)
	assert.Contains(t, text, "buried treasure")
}

func TestExtract_ZipDepthBounded(t *testing.T) {
	payload := zipBytes(t, map[string][]byte{"leaf.txt": []byte("too deep")})
	for i := 0; i < 6; i++ {
		payload = zipBytes(t, map[string][]byte{"nested.zip": payload})
	}
	e := NewExtractor(WithMaxArchiveDepth(2))

	text, ok := e.Extract(payload, "bomb.zip")
	assert.True(t, ok, "depth overflow inside entries is absorbed per entry")
	assert.NotContains(t, text, "too deep")
}

func TestExtract_CorruptPDF(t *testing.T) {
	e := NewExtractor()

	text, ok := e.Extract([]byte("definitely not a pdf"), "report.pdf")
	assert.False(t, ok)
	assert.Contains(t, text, "error extracting report.pdf")
}

func TestExtract_CaseInsensitiveDispatch(t *testing.T) {
	e := NewExtractor()

	_, ok := e.Extract([]byte("garbage"), "UPPER.PDF")
	assert.False(t, ok, "uppercase suffix must still dispatch to the pdf decoder")
}
