package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mis/api/internal/infrastructure/crypto"
)

// FieldText accepts a JSON string or number and keeps its textual form.
// Numbers are coerced with crypto.Text, so 254712345678 and "254712345678"
// protect to the same plaintext.
type FieldText string

func (f *FieldText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FieldText(s)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}

	if i, err := n.Int64(); err == nil {
		*f = FieldText(crypto.Text(i))
		return nil
	}
	v, err := n.Float64()
	if err != nil {
		return fmt.Errorf("number %s out of range", n)
	}
	*f = FieldText(crypto.Text(v))
	return nil
}

// RefID accepts a JSON integer or a decimal integer string.
type RefID int

func (id *RefID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expected integer id, got %s", data)
	}
	*id = RefID(n)
	return nil
}
