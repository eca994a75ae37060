// Package gemini is an oracle backend that asks a Gemini model to
// categorize transactions and interpret report questions.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"dompet/internal/core"
	"dompet/internal/oracle"
)

const DefaultModel = "gemini-2.0-flash"

var errEmptyResponse = errors.New("empty response from model")

// generator is the single model call this backend needs.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type modelGenerator struct {
	models *genai.Models
	model  string
}

func (g modelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

type Backend struct {
	gen      generator
	now      func() time.Time
	timezone *time.Location
}

var _ oracle.Backend = (*Backend)(nil)

type Options struct {
	APIKey string
	Model  string
	// Now and Location anchor relative periods such as "minggu ini".
	Now      func() time.Time
	Location *time.Location
}

func New(ctx context.Context, opts Options) (*Backend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return newBackend(modelGenerator{models: client.Models, model: model}, opts.Now, opts.Location), nil
}

func newBackend(gen generator, now func() time.Time, loc *time.Location) *Backend {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Backend{gen: gen, now: now, timezone: loc}
}

func (b *Backend) Categorize(ctx context.Context, description string, typ core.TxType) (string, error) {
	answer, err := b.gen.Generate(ctx, categorizePrompt(description, typ))
	if err != nil {
		return "", err
	}
	// first line only; models sometimes append an explanation
	if i := strings.IndexByte(answer, '\n'); i >= 0 {
		answer = answer[:i]
	}
	return oracle.Canonical(answer, typ), nil
}

func (b *Backend) InterpretQuery(ctx context.Context, text string) (*core.QueryIntent, error) {
	answer, err := b.gen.Generate(ctx, interpretPrompt(text, b.now().In(b.timezone)))
	if err != nil {
		return nil, err
	}
	clean := cleanModelJSON(answer)
	if clean == "" || clean == "null" {
		return nil, nil
	}
	var intent core.QueryIntent
	if err := json.Unmarshal([]byte(clean), &intent); err != nil {
		// unparseable answers count as "no intent"
		return nil, nil
	}
	if intent.StartDate == "" || intent.EndDate == "" {
		return nil, nil
	}
	return &intent, nil
}

func categorizePrompt(description string, typ core.TxType) string {
	var b strings.Builder
	b.WriteString("Kategorikan transaksi berikut dalam bahasa Indonesia:\n\n")
	fmt.Fprintf(&b, "Jenis: %s\nDeskripsi: %s\n\n", typ, description)
	b.WriteString("Untuk PEMASUKAN, pilih salah satu kategori berikut:\n")
	for _, c := range oracle.IncomeCategories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nUntuk PENGELUARAN, pilih salah satu kategori berikut:\n")
	for _, c := range oracle.ExpenseCategories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nJawab hanya dengan nama kategori saja, tanpa penjelasan tambahan.")
	return b.String()
}

var dayNames = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

func interpretPrompt(query string, today time.Time) string {
	return fmt.Sprintf(`Analisis query berikut dan tentukan periode waktu yang diminta:

Query: %q

Berdasarkan query tersebut, tentukan:
1. Periode waktu (hari ini, kemarin, minggu ini, bulan ini, tahun ini, dll)
2. Tanggal mulai (format DD/MM/YYYY)
3. Tanggal akhir (format DD/MM/YYYY)
4. Jenis data yang diminta (pengeluaran, pemasukan, atau keduanya)

Tanggal hari ini: %s
Hari: %s
Minggu dimulai hari Senin.

Jawab hanya dengan JSON seperti ini:
{"period": "minggu ini", "startDate": "DD/MM/YYYY", "endDate": "DD/MM/YYYY", "type": "expense|income|both", "intent": "summary|total|balance"}

Jika query tidak jelas atau tidak berkaitan dengan data keuangan, jawab null.`,
		query, today.Format(core.DateLayout), dayNames[today.Weekday()])
}

// cleanModelJSON strips markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.Trim(s, "`")
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
