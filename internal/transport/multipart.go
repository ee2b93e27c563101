// SPDX-License-Identifier: MIT

package transport

import (
	"bytes"
	"io"
	"mime/multipart"
)

// Multipart is a form-data request body. Passing one to Do suppresses the
// JSON content type so the encoder's boundary header is used instead.
type Multipart struct {
	fields []field
	files  []file
}

type field struct{ name, value string }

type file struct {
	field, name string
	content     io.Reader
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field adds a plain form value.
func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, field{name: name, value: value})
	return m
}

// File attaches an upload under the given form field.
func (m *Multipart) File(fieldName, fileName string, content io.Reader) *Multipart {
	m.files = append(m.files, file{field: fieldName, name: fileName, content: content})
	return m
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
