package response

import (
	"encoding/json"
	"net/http"

	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/messages"
)

// WebSay is one line of speech for the browser client.
type WebSay struct {
	Text string `json:"text"`
}

// WebGather tells the client to collect input and post it to Action.
type WebGather struct {
	Action flow.State `json:"action"`
	flow.GatherOptions
}

// WebRecord tells the client to record and post the result to Action.
type WebRecord struct {
	Action flow.State `json:"action"`
	flow.RecordOptions
}

// WebDocument is the JSON body returned to the browser client.
type WebDocument struct {
	Say      []WebSay   `json:"say"`
	Gather   *WebGather `json:"gather,omitempty"`
	Redirect flow.State `json:"redirect,omitempty"`
	Record   *WebRecord `json:"record,omitempty"`
}

// Web accumulates a WebDocument. Pauses are dropped; the client paces itself.
type Web struct {
	catalog *messages.Catalog
	doc     WebDocument
}

var _ flow.Responder = (*Web)(nil)

func NewWeb(catalog *messages.Catalog) *Web {
	return &Web{catalog: catalog, doc: WebDocument{Say: []WebSay{}}}
}

func (w *Web) Say(slug string, values messages.Values) error {
	text, err := w.catalog.Get(slug, values)
	if err != nil {
		return err
	}
	w.SayLiteral(text)
	return nil
}

func (w *Web) SayLiteral(text string) {
	w.doc.Say = append(w.doc.Say, WebSay{Text: text})
}

func (w *Web) Gather(target flow.State, opts flow.GatherOptions, slug string, values messages.Values) error {
	w.doc.Gather = &WebGather{Action: target, GatherOptions: opts}
	if slug == "" {
		return nil
	}
	return w.Say(slug, values)
}

func (w *Web) Pause(int) {}

func (w *Web) Redirect(target flow.State) {
	w.doc.Redirect = target
}

func (w *Web) Record(target flow.State, opts flow.RecordOptions) {
	w.doc.Record = &WebRecord{Action: target, RecordOptions: opts}
}

// Document returns the accumulated response.
func (w *Web) Document() WebDocument {
	return w.doc
}

// Render writes the document as JSON.
func (w *Web) Render(rw http.ResponseWriter, status int) error {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	return json.NewEncoder(rw).Encode(w.doc)
}
