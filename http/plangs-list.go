package http

import (
	"net/http"

	"github.com/execpipe/backend/httpjson"
	"github.com/execpipe/backend/planglist"
)

// ProgrammingLang is the public shape of an execution language.
type ProgrammingLang struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Enabled  bool   `json:"enabled"`
}

func (httpserver *HttpServer) listProgrammingLangs(w http.ResponseWriter, r *http.Request) {
	langs := planglist.ListProgrammingLanguages()

	response := make([]ProgrammingLang, len(langs))
	for i, lang := range langs {
		response[i] = ProgrammingLang{
			ID:       lang.ID,
			FullName: lang.FullName,
			Enabled:  lang.Enabled,
		}
	}

	httpjson.WriteSuccessJson(w, response)
}
