package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"graphgen/internal/generation"
)

const (
	labelGenerate   = "Generate Graph"
	labelGenerating = "Generating Graph..."
	successMessage  = "Graph generated successfully!"
	errorEnvelope   = "Error: %s. Please ensure the backend is running and accessible (if not mocking)."
	boundSummary    = "Up to %d vertices"
)

var indonesian = map[string]string{
	labelGenerate:                       "Buat Graf",
	labelGenerating:                     "Sedang Membuat Graf...",
	successMessage:                      "Graf berhasil dibuat!",
	errorEnvelope:                       "Kesalahan: %s. Pastikan backend berjalan dan dapat diakses (jika tidak dalam mode tiruan).",
	boundSummary:                        "Hingga %d simpul",
	generation.GenericFailureMessage:    "Gagal membuat graf karena kesalahan server.",
	generation.InvalidBoundMessage:      "Masukkan angka positif yang valid untuk jumlah maksimum simpul.",
	generation.NotConfiguredMessage:     "Atur URL backend pembuat graf sebelum membuat graf.",
	generation.RequestInProgressMessage: "Graf sedang dibuat. Harap tunggu hingga selesai.",
}

var messages = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, translation := range indonesian {
		_ = b.SetString(language.Indonesian, key, translation)
	}
	return b
}

// printer returns a printer for a locale code such as "en" or "id".
func printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag, message.Catalog(messages))
}

// translate localizes controller messages we own and passes service-provided
// text through untouched. Service text is never used as a format string.
func translate(p *message.Printer, msg string) string {
	if _, ok := indonesian[msg]; ok {
		return p.Sprintf(msg)
	}
	return msg
}
