// Copyright 2026 Paideia DAO
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plutus

import (
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
)

// maxCompactAlternative is the highest constructor alternative with a
// single-tag CBOR encoding (tags 121-127). Every datum in this protocol
// uses alternative 0, so the compact range is all RawDatum supports.
const maxCompactAlternative = 6

const (
	cborTagPrefix       = 0xd8
	cborTagAlternative0 = 0x79
	cborEmptyArray      = 0x80
	cborIndefArrayStart = 0x9f
	cborIndefArrayBreak = 0xff
)

// RawDatum is a constructor datum split into its constructor alternative
// and the original CBOR bytes of each field. Validators enforce "all
// fields except X unchanged" by equality on the re-locked datum, so a
// rebuild must carry every untouched field verbatim rather than
// re-encoding it from decoded values.
type RawDatum struct {
	alternative uint
	fields      []cbor.RawMessage
}

// ParseRawDatum splits a constructor datum into per-field raw CBOR.
func ParseRawDatum(b []byte) (*RawDatum, error) {
	if len(b) < 3 {
		return nil, fmt.Errorf(
			"%w: datum too short: %d bytes",
			ErrMalformed,
			len(b),
		)
	}
	if b[0] != cborTagPrefix ||
		b[1] < cborTagAlternative0 ||
		b[1] > cborTagAlternative0+maxCompactAlternative {
		return nil, fmt.Errorf(
			"%w: not a compact constructor tag: %02x%02x",
			ErrWrongShape,
			b[0],
			b[1],
		)
	}
	var fields []cbor.RawMessage
	if _, err := cbor.Decode(b[2:], &fields); err != nil {
		return nil, fmt.Errorf(
			"%w: constructor fields: %w",
			ErrMalformed,
			err,
		)
	}
	return &RawDatum{
		alternative: uint(b[1] - cborTagAlternative0),
		fields:      fields,
	}, nil
}

// Alternative returns the constructor alternative.
func (d *RawDatum) Alternative() uint {
	return d.alternative
}

// NumFields returns the number of constructor fields.
func (d *RawDatum) NumFields() int {
	return len(d.fields)
}

// Field returns the original CBOR bytes of field i.
func (d *RawDatum) Field(i int) []byte {
	return []byte(d.fields[i])
}

// WithField returns a copy of the datum with field i replaced by the
// given encoding. All other fields keep their original bytes.
func (d *RawDatum) WithField(i int, enc []byte) (*RawDatum, error) {
	if i < 0 || i >= len(d.fields) {
		return nil, fmt.Errorf(
			"field index %d out of range (%d fields)",
			i,
			len(d.fields),
		)
	}
	fields := make([]cbor.RawMessage, len(d.fields))
	copy(fields, d.fields)
	fields[i] = cbor.RawMessage(enc)
	return &RawDatum{
		alternative: d.alternative,
		fields:      fields,
	}, nil
}

// Bytes re-frames the constructor around the field encodings. The field
// list uses indefinite-length encoding when non-empty, matching the
// serialization the on-chain encoders produce, so a parse/Bytes round
// trip of an untouched datum is byte-identical.
func (d *RawDatum) Bytes() []byte {
	size := 3
	for _, field := range d.fields {
		size += len(field)
	}
	out := make([]byte, 0, size+1)
	out = append(out, cborTagPrefix, cborTagAlternative0+byte(d.alternative))
	if len(d.fields) == 0 {
		return append(out, cborEmptyArray)
	}
	out = append(out, cborIndefArrayStart)
	for _, field := range d.fields {
		out = append(out, field...)
	}
	return append(out, cborIndefArrayBreak)
}
