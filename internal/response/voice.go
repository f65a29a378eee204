// Package response renders call-flow instructions for a transport: TwiML for
// the telephony provider and JSON for the browser client.
package response

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/messages"
)

// Record defaults applied when RecordOptions leaves a field zero.
const (
	DefaultRecordTimeout     = 5
	DefaultRecordFinishOnKey = "#*"
)

// VoiceOptions configure the TwiML builder.
type VoiceOptions struct {
	// Voice and Language are set on every <Say>.
	Voice    string
	Language string
	// BasePath prefixes every action URL. Defaults to "/voice/".
	BasePath string
}

// Voice accumulates TwiML verbs.
type Voice struct {
	catalog *messages.Catalog
	opts    VoiceOptions
	doc     twiml
}

var _ flow.Responder = (*Voice)(nil)

// NewVoice returns an empty TwiML response.
func NewVoice(catalog *messages.Catalog, opts VoiceOptions) *Voice {
	if opts.BasePath == "" {
		opts.BasePath = "/voice/"
	}
	if !strings.HasSuffix(opts.BasePath, "/") {
		opts.BasePath += "/"
	}
	return &Voice{catalog: catalog, opts: opts}
}

func (v *Voice) Say(slug string, values messages.Values) error {
	text, err := v.catalog.Get(slug, values)
	if err != nil {
		return err
	}
	v.SayLiteral(text)
	return nil
}

func (v *Voice) SayLiteral(text string) {
	v.doc.verbs = append(v.doc.verbs, v.say(text))
}

func (v *Voice) Gather(target flow.State, opts flow.GatherOptions, slug string, values messages.Values) error {
	g := &twimlGather{
		Action:              v.url(target),
		Method:              http.MethodPost,
		Input:               strings.Join(opts.Input, " "),
		NumDigits:           opts.NumDigits,
		Timeout:             opts.Timeout,
		SpeechTimeout:       opts.SpeechTimeout,
		SpeechModel:         opts.SpeechModel,
		Hints:               opts.Hints,
		ActionOnEmptyResult: opts.ActionOnEmptyResult,
	}
	if slug != "" {
		text, err := v.catalog.Get(slug, values)
		if err != nil {
			return err
		}
		g.Say = v.say(text)
	}
	v.doc.verbs = append(v.doc.verbs, g)
	return nil
}

func (v *Voice) Pause(seconds int) {
	v.doc.verbs = append(v.doc.verbs, &twimlPause{Length: seconds})
}

func (v *Voice) Redirect(target flow.State) {
	v.doc.verbs = append(v.doc.verbs, &twimlRedirect{Method: http.MethodPost, URL: v.url(target)})
}

func (v *Voice) Record(target flow.State, opts flow.RecordOptions) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultRecordTimeout
	}
	if opts.FinishOnKey == "" {
		opts.FinishOnKey = DefaultRecordFinishOnKey
	}
	v.doc.verbs = append(v.doc.verbs, &twimlRecord{
		Action:                  v.url(target),
		Method:                  http.MethodPost,
		Timeout:                 opts.Timeout,
		FinishOnKey:             opts.FinishOnKey,
		MaxLength:               opts.MaxLength,
		PlayBeep:                opts.PlayBeep,
		RecordingStatusCallback: v.url(flow.SaveRecording),
	})
}

// Bytes returns the XML document, declaration included.
func (v *Voice) Bytes() ([]byte, error) {
	body, err := xml.Marshal(&v.doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Render writes the document with an application/xml content type.
func (v *Voice) Render(w http.ResponseWriter, status int) error {
	body, err := v.Bytes()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

func (v *Voice) say(text string) *twimlSay {
	return &twimlSay{Voice: v.opts.Voice, Language: v.opts.Language, Text: text}
}

func (v *Voice) url(target flow.State) string {
	return v.opts.BasePath + string(target)
}

// twiml is the <Response> root. Verbs keep their insertion order.
type twiml struct {
	verbs []any
}

func (t *twiml) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "Response"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, verb := range t.verbs {
		if err := e.Encode(verb); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName             xml.Name  `xml:"Gather"`
	Action              string    `xml:"action,attr"`
	Method              string    `xml:"method,attr,omitempty"`
	Input               string    `xml:"input,attr,omitempty"`
	NumDigits           int       `xml:"numDigits,attr,omitempty"`
	Timeout             int       `xml:"timeout,attr,omitempty"`
	SpeechTimeout       string    `xml:"speechTimeout,attr,omitempty"`
	SpeechModel         string    `xml:"speechModel,attr,omitempty"`
	Hints               string    `xml:"hints,attr,omitempty"`
	ActionOnEmptyResult bool      `xml:"actionOnEmptyResult,attr,omitempty"`
	Say                 *twimlSay `xml:"Say,omitempty"`
}

type twimlRecord struct {
	XMLName                 xml.Name `xml:"Record"`
	Action                  string   `xml:"action,attr"`
	Method                  string   `xml:"method,attr,omitempty"`
	Timeout                 int      `xml:"timeout,attr"`
	FinishOnKey             string   `xml:"finishOnKey,attr"`
	MaxLength               int      `xml:"maxLength,attr,omitempty"`
	PlayBeep                bool     `xml:"playBeep,attr"`
	RecordingStatusCallback string   `xml:"recordingStatusCallback,attr,omitempty"`
}
