package planglist

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PrLang describes a programming language supported by the pipeline
// and how it maps onto the remote execution engine.
type PrLang struct {
	ID       string `toml:"id"`        // short lang id, e.g. "python3.11"
	FullName string `toml:"full_name"` // user-friendly display name
	EngineID int    `toml:"engine_id"` // language id used by the execution engine
	Enabled  bool   `toml:"enabled"`
}

// defaultLangs is the built-in language table. A deployment can
// replace it with a TOML file via LoadFromTomlFile.
var defaultLangs = []PrLang{
	{ID: "python3.11", FullName: "Python 3.11", EngineID: 71, Enabled: true},
	{ID: "nodejs20", FullName: "JavaScript (Node.js 20)", EngineID: 63, Enabled: true},
	{ID: "go1.22", FullName: "Go 1.22", EngineID: 60, Enabled: true},
	{ID: "gcc13-c", FullName: "C (GCC 13)", EngineID: 50, Enabled: true},
	{ID: "gcc13-cpp", FullName: "C++ (GCC 13)", EngineID: 54, Enabled: true},
	{ID: "jdk21", FullName: "Java (JDK 21)", EngineID: 62, Enabled: true},
}

var langs = defaultLangs

// ListProgrammingLanguages returns enabled languages in table order.
func ListProgrammingLanguages() []PrLang {
	res := make([]PrLang, 0, len(langs))
	for _, l := range langs {
		if l.Enabled {
			res = append(res, l)
		}
	}
	return res
}

// GetProgrammingLanguageById looks up an enabled language by its
// short id. Unknown and disabled languages both yield
// ErrInvalidProgLang so callers cannot probe the table.
func GetProgrammingLanguageById(id string) (PrLang, error) {
	for _, l := range langs {
		if l.ID == id && l.Enabled {
			return l, nil
		}
	}
	return PrLang{}, ErrInvalidProgLang()
}

type langTomlFile struct {
	Languages []PrLang `toml:"languages"`
}

// LoadFromTomlFile replaces the built-in language table with the
// contents of a TOML file. Intended to be called once at startup.
func LoadFromTomlFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read language table: %w", err)
	}
	var parsed langTomlFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse language table: %w", err)
	}
	if len(parsed.Languages) == 0 {
		return fmt.Errorf("language table %s defines no languages", path)
	}
	langs = parsed.Languages
	return nil
}
