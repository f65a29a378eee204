package hotline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-viper/mapstructure/v2"

	"github.com/roboyoz/hotline/internal/flow"
)

// maxBody caps webhook payloads.
const maxBody = 1 << 20

// DecodeInput reads the request payload: JSON from the browser client, form
// fields from the telephony provider. Numbers may arrive as strings.
func DecodeInput(r *http.Request) (flow.Input, error) {
	raw, err := payload(r)
	if err != nil {
		return flow.Input{}, err
	}

	var in flow.Input
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &in,
	})
	if err != nil {
		return flow.Input{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return flow.Input{}, fmt.Errorf("decoding request parameters: %w", err)
	}
	return in, nil
}

func payload(r *http.Request) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		raw := map[string]any{}
		if r.Body == nil {
			return raw, nil
		}
		err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody)).Decode(&raw)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding JSON body: %w", err)
		}
		return raw, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}
	raw := make(map[string]any, len(r.Form))
	for k, v := range r.Form {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	return raw, nil
}
