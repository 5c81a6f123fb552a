package docgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tfml/tender-console/internal/models"
)

const maxTitleLen = 60

// Writer пишет сгенерированные документы в заданный каталог.
type Writer struct {
	Dir string
}

// NewWriter создаёт Writer и каталог для документов, если его ещё нет.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create docs dir: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// FileName собирает имя файла документа: укороченное название тендера
// с подчёркиваниями вместо пробелов, тип документа и номер версии.
func FileName(title string, kind models.DocKind, version int) string {
	if title == "" {
		title = "Untitled"
	}
	runes := []rune(title)
	if len(runes) > maxTitleLen {
		runes = runes[:maxTitleLen]
	}
	safeTitle := strings.ReplaceAll(string(runes), " ", "_")
	return fmt.Sprintf("%s_%s_v%d.docx", safeTitle, kind, version)
}

// Write генерирует документ с заголовком "<kind> Draft (v<version>)" и
// телом body, и возвращает путь к нему. Файл появляется под финальным
// именем только целиком записанным: сборка идёт во временный файл с
// последующим переименованием.
func (w *Writer) Write(title string, kind models.DocKind, version int, body string) (string, error) {
	heading := fmt.Sprintf("%s Draft (v%d)", kind, version)

	content, err := buildPackage(heading, body)
	if err != nil {
		return "", fmt.Errorf("failed to build document: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, ".docgen-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close document: %w", err)
	}

	path := filepath.Join(w.Dir, FileName(title, kind, version))
	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move document: %w", err)
	}
	return path, nil
}

// Минимальный OPC-пакет WordprocessingML: трёх частей достаточно,
// чтобы файл открывался текстовыми процессорами.
const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
)

func buildPackage(heading, body string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(heading, body)},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err = f.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentXML(heading, body string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	sb.WriteString(`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">`)
	sb.WriteString(escapeXML(heading))
	sb.WriteString(`</w:t></w:r></w:p>`)
	for _, line := range strings.Split(body, "\n") {
		sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		sb.WriteString(escapeXML(line))
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}
