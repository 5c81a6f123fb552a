package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tfml/tender-console/internal/models"
)

// Шаблон EOI по умолчанию: используется, когда каталог шаблонов пуст
// или для типа документа нет своего файла.
const defaultBody = `Dear {recipient},

Total Facilities Management Limited (TFML) is pleased to express interest in the opportunity titled "{title}". With a strong track record delivering {sector_desc}, our team is positioned to meet your outcomes on quality, compliance and timelines.

Scope alignment (summary):
{summary}

TFML offers certified personnel, SLAs, HSE compliance and proven delivery for public and private estates nationwide. We welcome the opportunity to submit full technical and financial proposals upon request.

Sincerely,
TFML Bid Office
`

// Letter - шаблон сопроводительного письма для одного типа документа.
// В subject и body подставляются {recipient}, {title}, {sector_desc} и {summary}.
type Letter struct {
	Kind    string `yaml:"kind"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// RenderData - данные подстановки для шаблона письма.
type RenderData struct {
	Recipient string
	Title     string
	Sector    string
	Summary   string
}

// Render подставляет данные тендера в текст шаблона.
func (l *Letter) Render(text string, data RenderData) string {
	title := data.Title
	if title == "" {
		title = "Untitled"
	}
	sector := data.Sector
	if sector == "" {
		sector = string(models.FacilitiesManagement)
	}
	summary := data.Summary
	if summary == "" {
		summary = "—"
	}
	return strings.NewReplacer(
		"{recipient}", data.Recipient,
		"{title}", title,
		"{sector_desc}", strings.ToLower(sector),
		"{summary}", summary,
	).Replace(text)
}

// RenderSubject рендерит тему письма.
func (l *Letter) RenderSubject(data RenderData) string {
	return l.Render(l.Subject, data)
}

// RenderBody рендерит тело письма.
func (l *Letter) RenderBody(data RenderData) string {
	return l.Render(l.Body, data)
}

// Loader загружает и кэширует шаблоны писем из YAML-файлов.
type Loader struct {
	mu      sync.RWMutex
	letters map[string]*Letter
}

// NewLoader создаёт загрузчик с встроенным шаблоном EOI.
func NewLoader() *Loader {
	return &Loader{
		letters: map[string]*Letter{
			string(models.EOIKind): {
				Kind:    string(models.EOIKind),
				Subject: "EOI: {title}",
				Body:    defaultBody,
			},
		},
	}
}

// LoadFromDir загружает все YAML-шаблоны из каталога. Нечитаемый файл
// пропускается, каталог без единого шаблона - не ошибка.
func (l *Loader) LoadFromDir(dir string) error {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			continue
		}
	}
	return nil
}

// LoadFromFile загружает один шаблон из YAML-файла.
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var letter Letter
	if err := yaml.Unmarshal(data, &letter); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if letter.Kind == "" {
		return fmt.Errorf("letter kind is required")
	}
	if letter.Body == "" {
		return fmt.Errorf("letter body is required")
	}
	if letter.Subject == "" {
		letter.Subject = letter.Kind + ": {title}"
	}

	l.mu.Lock()
	l.letters[letter.Kind] = &letter
	l.mu.Unlock()
	return nil
}

// Get возвращает шаблон для типа документа. Для неизвестного типа
// собирается шаблон на базе встроенного текста EOI.
func (l *Loader) Get(kind models.DocKind) *Letter {
	l.mu.RLock()
	letter, ok := l.letters[string(kind)]
	l.mu.RUnlock()
	if ok {
		return letter
	}
	return &Letter{
		Kind:    string(kind),
		Subject: string(kind) + ": {title}",
		Body:    defaultBody,
	}
}

// List возвращает все загруженные шаблоны.
func (l *Loader) List() []*Letter {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Letter, 0, len(l.letters))
	for _, letter := range l.letters {
		result = append(result, letter)
	}
	return result
}
