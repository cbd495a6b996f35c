package storage

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"pubapi/internal/publicapi"
	"pubapi/internal/tokens"
)

// payloadSchema is bumped whenever listingPayload changes shape.
const payloadSchema uint16 = 1

// listingPayload is the msgpack form of a stored listing. Token tags are
// stored as their numeric rank.
type listingPayload struct {
	Schema uint16
	Items  []itemRecord
}

type itemRecord struct {
	Path   []string
	Tokens []tokenRecord
}

type tokenRecord struct {
	Tag  uint8
	Text string
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

func encodeListing(items []publicapi.PublicItem) ([]byte, error) {
	p := listingPayload{Schema: payloadSchema, Items: make([]itemRecord, len(items))}
	for i, item := range items {
		rec := itemRecord{Path: item.Path, Tokens: make([]tokenRecord, len(item.Tokens))}
		for j, t := range item.Tokens {
			rec.Tokens[j] = tokenRecord{Tag: uint8(t.Tag), Text: t.Text}
		}
		p.Items[i] = rec
	}

	raw, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("encode listing: %w", err)
	}
	enc, _, err := codecs()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func decodeListing(blob []byte) ([]publicapi.PublicItem, error) {
	_, dec, err := codecs()
	if err != nil {
		return nil, err
	}
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress listing: %w", err)
	}

	var p listingPayload
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if p.Schema != payloadSchema {
		return nil, fmt.Errorf("unsupported listing schema %d", p.Schema)
	}

	items := make([]publicapi.PublicItem, len(p.Items))
	for i, rec := range p.Items {
		toks := make([]tokens.Token, len(rec.Tokens))
		for j, t := range rec.Tokens {
			if t.Tag > uint8(tokens.TagWhitespace) {
				return nil, fmt.Errorf("decode listing: unknown token tag %d", t.Tag)
			}
			toks[j] = tokens.Token{Tag: tokens.Tag(t.Tag), Text: t.Text}
		}
		path := rec.Path
		if path == nil {
			path = []string{}
		}
		items[i] = publicapi.PublicItem{Path: path, Tokens: toks}
	}
	return items, nil
}
